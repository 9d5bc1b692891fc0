package transfer

type RejectRequest struct {
	Reason string `json:"reason"`
}

type ApprovalSettingsUpdate struct {
	AutoThreshold    float64 `json:"auto_threshold"`
	DelayedThreshold float64 `json:"delayed_threshold"`
	ManualThreshold  float64 `json:"manual_threshold"`
	DelayedWaitMins  int     `json:"delayed_wait_mins"`
}

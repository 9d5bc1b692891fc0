package models

import "time"

type ApprovalSettings struct {
	ID               int64     `db:"id" json:"id"`
	AutoThreshold    float64   `db:"auto_threshold" json:"auto_threshold"`
	DelayedThreshold float64   `db:"delayed_threshold" json:"delayed_threshold"`
	ManualThreshold  float64   `db:"manual_threshold" json:"manual_threshold"`
	DelayedWaitMins  int       `db:"delayed_wait_mins" json:"delayed_wait_mins"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

const (
	DefaultAutoThreshold    = 85
	DefaultDelayedThreshold = 70
	DefaultManualThreshold  = 60
	DefaultDelayedWaitMins  = 30
)

const (
	ActionAutoApprove    = "auto_approve"
	ActionDelayedApprove = "delayed_approve"
	ActionOptionalReview = "optional_review"
	ActionManualReview   = "manual_review"
)

// RatingRejected is the sentinel user rating recorded when a post is
// rejected rather than scored.
const RatingRejected = -1

type ApprovalHistory struct {
	ID               int64     `db:"id" json:"id"`
	PostID           int64     `db:"post_id" json:"post_id"`
	UserRating       int       `db:"user_rating" json:"user_rating"`
	PredictedScore   float64   `db:"predicted_score" json:"predicted_score"`
	ActualEngagement *float64  `db:"actual_engagement" json:"actual_engagement"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

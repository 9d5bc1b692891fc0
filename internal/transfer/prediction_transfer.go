package transfer

type Prediction struct {
	Score          float64            `json:"score"`
	Factors        map[string]float64 `json:"factors"`
	Recommendation string             `json:"recommendation"`
}

type Decision struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

type AccuracyReport struct {
	Samples       int     `json:"samples"`
	Measured      int     `json:"measured"`
	Rejected      int     `json:"rejected"`
	AvgPredicted  float64 `json:"avg_predicted"`
	AvgEngagement float64 `json:"avg_engagement"`
}

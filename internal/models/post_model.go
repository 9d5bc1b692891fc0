package models

import "time"

type Post struct {
	ID              int64      `db:"id" json:"id"`
	Topic           string     `db:"topic" json:"topic"`
	Content         string     `db:"content" json:"content"`
	Hashtags        string     `db:"hashtags" json:"hashtags"`
	ImageURL        *string    `db:"image_url" json:"image_url"`
	Status          string     `db:"status" json:"status"`
	ApprovalMethod  string     `db:"approval_method" json:"approval_method"`
	ConfidenceScore *float64   `db:"confidence_score" json:"confidence_score"`
	RetryCount      int        `db:"retry_count" json:"retry_count"`
	LastError       *string    `db:"last_error" json:"last_error"`
	ExternalPostID  *string    `db:"external_post_id" json:"external_post_id"`
	Likes           int        `db:"likes" json:"likes"`
	Comments        int        `db:"comments" json:"comments"`
	Shares          int        `db:"shares" json:"shares"`
	EngagementRate  float64    `db:"engagement_rate" json:"engagement_rate"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
	PostedAt        *time.Time `db:"posted_at" json:"posted_at"`
}

const (
	PostStatusGenerating = "generating"
	PostStatusScheduled  = "scheduled"
	PostStatusPosting    = "posting"
	PostStatusPosted     = "posted"
	PostStatusFailed     = "failed"
	PostStatusRejected   = "rejected"
)

const (
	ApprovalMethodNone    = ""
	ApprovalMethodAuto    = "auto"
	ApprovalMethodManual  = "manual_approve"
	ApprovalMethodReject  = "manual_reject"
	ApprovalMethodDelayed = "delayed"
)

// IsTerminal reports whether a status can never transition again.
func IsTerminal(status string) bool {
	return status == PostStatusPosted || status == PostStatusFailed || status == PostStatusRejected
}

// EngagementRate weights interactions (likes 1x, comments 2x, shares 3x)
// and normalizes by post age in hours.
func EngagementRate(likes, comments, shares int, postedAt time.Time, now time.Time) float64 {
	ageHours := now.Sub(postedAt).Hours()
	if ageHours < 1 {
		ageHours = 1
	}
	weighted := float64(likes) + 2*float64(comments) + 3*float64(shares)
	return weighted / ageHours
}

package models

import "time"

type TopicWeight struct {
	Topic            string    `db:"topic" json:"topic"`
	PerformanceScore float64   `db:"performance_score" json:"performance_score"`
	AvgEngagement    float64   `db:"avg_engagement" json:"avg_engagement"`
	PostCount        int       `db:"post_count" json:"post_count"`
	TotalLikes       int       `db:"total_likes" json:"total_likes"`
	TotalComments    int       `db:"total_comments" json:"total_comments"`
	TotalShares      int       `db:"total_shares" json:"total_shares"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

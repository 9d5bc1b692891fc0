package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/marcusfern/postpilot/internal/models"
)

type TopicWeightRepository interface {
	List(ctx context.Context) ([]*models.TopicWeight, error)
	GetByTopic(ctx context.Context, topic string) (*models.TopicWeight, error)
	Upsert(ctx context.Context, tw *models.TopicWeight) error
}

type topicWeightRepository struct {
	db *sql.DB
}

func NewTopicWeightRepository(db *sql.DB) TopicWeightRepository {
	return &topicWeightRepository{db: db}
}

func (r *topicWeightRepository) List(ctx context.Context) ([]*models.TopicWeight, error) {
	query := `SELECT topic, performance_score, avg_engagement, post_count, total_likes, total_comments, total_shares, updated_at FROM topic_weights ORDER BY topic`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var weights []*models.TopicWeight
	for rows.Next() {
		var tw models.TopicWeight
		err := rows.Scan(&tw.Topic, &tw.PerformanceScore, &tw.AvgEngagement, &tw.PostCount, &tw.TotalLikes, &tw.TotalComments, &tw.TotalShares, &tw.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		weights = append(weights, &tw)
	}
	return weights, nil
}

func (r *topicWeightRepository) GetByTopic(ctx context.Context, topic string) (*models.TopicWeight, error) {
	query := `SELECT topic, performance_score, avg_engagement, post_count, total_likes, total_comments, total_shares, updated_at FROM topic_weights WHERE topic = $1`
	row := r.db.QueryRowContext(ctx, query, topic)

	var tw models.TopicWeight
	err := row.Scan(&tw.Topic, &tw.PerformanceScore, &tw.AvgEngagement, &tw.PostCount, &tw.TotalLikes, &tw.TotalComments, &tw.TotalShares, &tw.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &tw, nil
}

func (r *topicWeightRepository) Upsert(ctx context.Context, tw *models.TopicWeight) error {
	query := `
		INSERT INTO topic_weights (topic, performance_score, avg_engagement, post_count, total_likes, total_comments, total_shares, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (topic) DO UPDATE
		SET performance_score = EXCLUDED.performance_score,
			avg_engagement = EXCLUDED.avg_engagement,
			post_count = EXCLUDED.post_count,
			total_likes = EXCLUDED.total_likes,
			total_comments = EXCLUDED.total_comments,
			total_shares = EXCLUDED.total_shares,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, tw.Topic, tw.PerformanceScore, tw.AvgEngagement, tw.PostCount, tw.TotalLikes, tw.TotalComments, tw.TotalShares, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

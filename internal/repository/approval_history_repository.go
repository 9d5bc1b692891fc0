package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/marcusfern/postpilot/internal/models"
)

type ApprovalHistoryRepository interface {
	Create(ctx context.Context, h *models.ApprovalHistory) (int64, error)
	List(ctx context.Context, limit int) ([]*models.ApprovalHistory, error)
	SetActualEngagement(ctx context.Context, postID int64, rate float64) error
}

type approvalHistoryRepository struct {
	db *sql.DB
}

func NewApprovalHistoryRepository(db *sql.DB) ApprovalHistoryRepository {
	return &approvalHistoryRepository{db: db}
}

func (r *approvalHistoryRepository) Create(ctx context.Context, h *models.ApprovalHistory) (int64, error) {
	query := `
		INSERT INTO approval_history (post_id, user_rating, predicted_score)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, h.PostID, h.UserRating, h.PredictedScore).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *approvalHistoryRepository) List(ctx context.Context, limit int) ([]*models.ApprovalHistory, error) {
	query := `SELECT id, post_id, user_rating, predicted_score, actual_engagement, created_at FROM approval_history ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var history []*models.ApprovalHistory
	for rows.Next() {
		var h models.ApprovalHistory
		err := rows.Scan(&h.ID, &h.PostID, &h.UserRating, &h.PredictedScore, &h.ActualEngagement, &h.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		history = append(history, &h)
	}
	return history, nil
}

// SetActualEngagement backfills the observed engagement once it has been
// measured. History rows are otherwise never mutated.
func (r *approvalHistoryRepository) SetActualEngagement(ctx context.Context, postID int64, rate float64) error {
	query := `UPDATE approval_history SET actual_engagement = $1 WHERE post_id = $2 AND actual_engagement IS NULL`
	_, err := r.db.ExecContext(ctx, query, rate, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

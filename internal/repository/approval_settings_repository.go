package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/marcusfern/postpilot/internal/models"
)

type ApprovalSettingsRepository interface {
	Get(ctx context.Context) (*models.ApprovalSettings, error)
	Create(ctx context.Context, s *models.ApprovalSettings) (int64, error)
	Update(ctx context.Context, s *models.ApprovalSettings) error
}

type approvalSettingsRepository struct {
	db *sql.DB
}

func NewApprovalSettingsRepository(db *sql.DB) ApprovalSettingsRepository {
	return &approvalSettingsRepository{db: db}
}

func (r *approvalSettingsRepository) Get(ctx context.Context) (*models.ApprovalSettings, error) {
	query := `SELECT id, auto_threshold, delayed_threshold, manual_threshold, delayed_wait_mins, created_at, updated_at FROM approval_settings ORDER BY id LIMIT 1`
	row := r.db.QueryRowContext(ctx, query)

	var s models.ApprovalSettings
	err := row.Scan(&s.ID, &s.AutoThreshold, &s.DelayedThreshold, &s.ManualThreshold, &s.DelayedWaitMins, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &s, nil
}

func (r *approvalSettingsRepository) Create(ctx context.Context, s *models.ApprovalSettings) (int64, error) {
	query := `
		INSERT INTO approval_settings (auto_threshold, delayed_threshold, manual_threshold, delayed_wait_mins)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, s.AutoThreshold, s.DelayedThreshold, s.ManualThreshold, s.DelayedWaitMins).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *approvalSettingsRepository) Update(ctx context.Context, s *models.ApprovalSettings) error {
	query := `
		UPDATE approval_settings
		SET auto_threshold = $1,
			delayed_threshold = $2,
			manual_threshold = $3,
			delayed_wait_mins = $4,
			updated_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query, s.AutoThreshold, s.DelayedThreshold, s.ManualThreshold, s.DelayedWaitMins, time.Now(), s.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/marcusfern/postpilot/internal/models"
)

type CredentialRepository interface {
	GetByAccountID(ctx context.Context, accountID string) (*models.PlatformCredential, error)
	Upsert(ctx context.Context, c *models.PlatformCredential) error
	ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]*models.PlatformCredential, error)
}

type credentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) GetByAccountID(ctx context.Context, accountID string) (*models.PlatformCredential, error) {
	query := `SELECT id, account_id, access_token, refresh_token, token_expires_at, created_at, updated_at FROM platform_credentials WHERE account_id = $1`
	row := r.db.QueryRowContext(ctx, query, accountID)

	var c models.PlatformCredential
	err := row.Scan(&c.ID, &c.AccountID, &c.AccessToken, &c.RefreshToken, &c.TokenExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &c, nil
}

func (r *credentialRepository) Upsert(ctx context.Context, c *models.PlatformCredential) error {
	query := `
		INSERT INTO platform_credentials (account_id, access_token, refresh_token, token_expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, c.AccountID, c.AccessToken, c.RefreshToken, c.TokenExpiresAt, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *credentialRepository) ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]*models.PlatformCredential, error) {
	query := `SELECT id, account_id, access_token, refresh_token, token_expires_at, created_at, updated_at FROM platform_credentials WHERE token_expires_at <= $1`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var creds []*models.PlatformCredential
	for rows.Next() {
		var c models.PlatformCredential
		err := rows.Scan(&c.ID, &c.AccountID, &c.AccessToken, &c.RefreshToken, &c.TokenExpiresAt, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		creds = append(creds, &c)
	}
	return creds, nil
}

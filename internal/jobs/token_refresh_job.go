package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/marcusfern/postpilot/internal/repository"
	"github.com/marcusfern/postpilot/internal/service"
)

// TokenRefreshJob renews platform credentials before they expire. A
// credential that lapses anyway surfaces later as a non-retryable auth
// error in the publish stage.
type TokenRefreshJob struct {
	cr        repository.CredentialRepository
	publisher service.Publisher
}

func NewTokenRefreshJob(cr repository.CredentialRepository, publisher service.Publisher) *TokenRefreshJob {
	return &TokenRefreshJob{
		cr:        cr,
		publisher: publisher,
	}
}

func (j *TokenRefreshJob) Run() {
	ctx := context.Background()

	cutoff := time.Now().Add(30 * time.Minute)
	creds, err := j.cr.ListExpiringBefore(ctx, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, cred := range creds {
		if err := j.publisher.RefreshAccessToken(ctx, cred); err != nil {
			slog.Info("unable to refresh token for account " + cred.AccountID)
		}
	}
}

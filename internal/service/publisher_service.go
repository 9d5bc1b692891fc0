package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	config "github.com/marcusfern/postpilot/configs"
	"github.com/marcusfern/postpilot/internal/models"
	"github.com/marcusfern/postpilot/internal/repository"
	"github.com/marcusfern/postpilot/internal/transfer"
	"github.com/marcusfern/postpilot/pkg/utils"
	"golang.org/x/oauth2"
)

// Publisher pushes approved drafts to the social platform and reads back
// engagement counts.
type Publisher interface {
	Publish(ctx context.Context, body string, imageURL *string, hashtags string) (string, error)
	FetchEngagement(ctx context.Context, externalPostID string) (*transfer.Engagement, error)
	RefreshAccessToken(ctx context.Context, cred *models.PlatformCredential) error
}

type platformPublisher struct {
	cfg    config.Config
	cr     repository.CredentialRepository
	client *http.Client
}

func NewPlatformPublisher(cfg config.Config, cr repository.CredentialRepository) Publisher {
	return &platformPublisher{
		cfg: cfg,
		cr:  cr,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *platformPublisher) accessToken(ctx context.Context) (string, error) {
	cred, err := p.cr.GetByAccountID(ctx, p.cfg.Platform.AccountID)
	if err != nil {
		return "", err
	}
	if cred == nil {
		err := &PlatformError{Kind: ErrKindAuth, StatusCode: 401, Message: "no credential stored for account"}
		slog.Info(err.Error())
		return "", err
	}

	token, err := utils.Decrypt(cred.AccessToken, []byte(p.cfg.SecretKey))
	if err != nil {
		return "", &PlatformError{Kind: ErrKindAuth, StatusCode: 401, Message: "stored credential is unreadable"}
	}

	return token, nil
}

func (p *platformPublisher) Publish(ctx context.Context, body string, imageURL *string, hashtags string) (string, error) {
	if body == "" {
		err := errors.New("cannot publish a post with empty content")
		slog.Info(err.Error())
		return "", err
	}

	token, err := p.accessToken(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(transfer.PublishRequest{
		Message:  body,
		ImageURL: imageURL,
		Hashtags: hashtags,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Platform.APIBaseURL+"/posts", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		// Network failures and timeouts retry like any transient error.
		return "", &PlatformError{Kind: ErrKindTransient, StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		perr := ClassifyStatus(resp.StatusCode, readErrorMessage(resp.Body))
		slog.Info(perr.Error())
		return "", perr
	}

	var result transfer.PublishResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("failed to decode publish response: %w", err)
	}
	if result.ID == "" {
		return "", errors.New("publish response missing post id")
	}

	return result.ID, nil
}

func (p *platformPublisher) FetchEngagement(ctx context.Context, externalPostID string) (*transfer.Engagement, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/posts/%s/insights", p.cfg.Platform.APIBaseURL, externalPostID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, &PlatformError{Kind: ErrKindTransient, StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		perr := ClassifyStatus(resp.StatusCode, readErrorMessage(resp.Body))
		slog.Info(perr.Error())
		return nil, perr
	}

	var engagement transfer.Engagement
	if err := json.NewDecoder(resp.Body).Decode(&engagement); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode engagement response: %w", err)
	}

	return &engagement, nil
}

// RefreshAccessToken exchanges the stored refresh token for a new access
// token and re-encrypts both at rest.
func (p *platformPublisher) RefreshAccessToken(ctx context.Context, cred *models.PlatformCredential) error {
	refreshToken, err := utils.Decrypt(cred.RefreshToken, []byte(p.cfg.SecretKey))
	if err != nil {
		return err
	}

	conf := &oauth2.Config{
		ClientID:     p.cfg.Platform.ClientID,
		ClientSecret: p.cfg.Platform.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: p.cfg.Platform.TokenURL,
		},
	}

	tokenSource := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := tokenSource.Token()
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("token refresh failed: %w", err)
	}

	encryptedAccess, err := utils.Encrypt([]byte(token.AccessToken), []byte(p.cfg.SecretKey))
	if err != nil {
		return err
	}

	encryptedRefresh := cred.RefreshToken
	if token.RefreshToken != "" {
		encryptedRefresh, err = utils.Encrypt([]byte(token.RefreshToken), []byte(p.cfg.SecretKey))
		if err != nil {
			return err
		}
	}

	cred.AccessToken = encryptedAccess
	cred.RefreshToken = encryptedRefresh
	cred.TokenExpiresAt = token.Expiry

	return p.cr.Upsert(ctx, cred)
}

func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}

	var body transfer.PlatformErrorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return string(data)
}

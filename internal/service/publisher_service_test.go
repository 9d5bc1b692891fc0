package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	config "github.com/marcusfern/postpilot/configs"
	"github.com/marcusfern/postpilot/internal/models"
	"github.com/marcusfern/postpilot/internal/repository"
	"github.com/marcusfern/postpilot/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type fakeCredentialRepo struct {
	repository.CredentialRepository
	cred *models.PlatformCredential
}

func (f *fakeCredentialRepo) GetByAccountID(ctx context.Context, accountID string) (*models.PlatformCredential, error) {
	return f.cred, nil
}

func newTestPublisher(t *testing.T, baseURL string) Publisher {
	t.Helper()

	token, err := utils.Encrypt([]byte("test-access-token"), []byte(testSecretKey))
	require.NoError(t, err)

	cfg := config.Config{
		SecretKey: testSecretKey,
		Platform: config.Platform{
			APIBaseURL: baseURL,
			AccountID:  "acct-1",
		},
	}
	cr := &fakeCredentialRepo{
		cred: &models.PlatformCredential{
			AccountID:      "acct-1",
			AccessToken:    token,
			RefreshToken:   token,
			TokenExpiresAt: time.Now().Add(time.Hour),
		},
	}

	return NewPlatformPublisher(cfg, cr)
}

func TestPublishSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts", r.URL.Path)
		assert.Equal(t, "Bearer test-access-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"platform-123"}`))
	}))
	defer srv.Close()

	p := newTestPublisher(t, srv.URL)
	imageURL := "https://cdn.example.com/img.png"

	id, err := p.Publish(context.Background(), "body text", &imageURL, "#KangenWater #Wellness")
	require.NoError(t, err)
	assert.Equal(t, "platform-123", id)
}

func TestPublishRejectsEmptyContent(t *testing.T) {
	p := newTestPublisher(t, "http://unused.invalid")

	_, err := p.Publish(context.Background(), "", nil, "")
	assert.Error(t, err)
}

func TestPublishClassifiesCredentialError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"token expired","code":190}}`))
	}))
	defer srv.Close()

	p := newTestPublisher(t, srv.URL)

	_, err := p.Publish(context.Background(), "body", nil, "")
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.False(t, IsRetryable(err))
}

func TestPublishClassifiesTransientError(t *testing.T) {
	for _, code := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		p := newTestPublisher(t, srv.URL)
		_, err := p.Publish(context.Background(), "body", nil, "")
		srv.Close()

		require.Error(t, err, "status %d", code)
		assert.False(t, IsAuthError(err), "status %d", code)
		assert.True(t, IsRetryable(err), "status %d", code)
	}
}

func TestPublishClassifiesBadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	p := newTestPublisher(t, srv.URL)

	_, err := p.Publish(context.Background(), "body", nil, "")
	require.Error(t, err)
	assert.False(t, IsAuthError(err))
	assert.False(t, IsRetryable(err))
}

func TestPublishWithoutStoredCredential(t *testing.T) {
	cfg := config.Config{
		SecretKey: testSecretKey,
		Platform:  config.Platform{APIBaseURL: "http://unused.invalid", AccountID: "acct-1"},
	}
	p := NewPlatformPublisher(cfg, &fakeCredentialRepo{})

	_, err := p.Publish(context.Background(), "body", nil, "")
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}

func TestFetchEngagement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/platform-123/insights", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"likes":12,"comments":3,"shares":2}`))
	}))
	defer srv.Close()

	p := newTestPublisher(t, srv.URL)

	engagement, err := p.FetchEngagement(context.Background(), "platform-123")
	require.NoError(t, err)
	assert.Equal(t, 12, engagement.Likes)
	assert.Equal(t, 3, engagement.Comments)
	assert.Equal(t, 2, engagement.Shares)
}

package queue

import (
	"context"
	"time"

	"github.com/marcusfern/postpilot/internal/repository"
	"github.com/marcusfern/postpilot/internal/service"
	"golang.org/x/time/rate"
)

const (
	TaskTypeGenerateContent = "pipeline:generate_content"
	TaskTypeGenerateImage   = "pipeline:generate_image"
	TaskTypePublish         = "pipeline:publish"
	TaskTypeDelayedApproval = "approval:delayed"
)

// One durable queue per pipeline stage. Each is served by its own worker
// pool so stage concurrency and rate caps are independent.
const (
	QueueContent = "content"
	QueueImage   = "image"
	QueuePublish = "publish"
)

// MaxAttempts bounds every pipeline job, first try included.
const MaxAttempts = 3

// RetryBaseDelay is the backoff floor; it doubles with each failed attempt.
const RetryBaseDelay = 30 * time.Second

// Stage worker pool sizes. Publishing is serialized to respect the
// platform's posting rate limit and rule out duplicate posts.
const (
	ContentConcurrency = 5
	ImageConcurrency   = 2
	PublishConcurrency = 1
)

type ContentPayload struct {
	PostID int64  `json:"post_id"`
	Topic  string `json:"topic"`
}

type ImagePayload struct {
	PostID int64 `json:"post_id"`
}

type PublishPayload struct {
	PostID int64 `json:"post_id"`
}

type DelayedApprovalPayload struct {
	PostID int64 `json:"post_id"`
}

// ImageStore persists generated image bytes and returns a public URL.
// Satisfied by service.R2Service.
type ImageStore interface {
	UploadImage(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type Queue struct {
	pr        repository.PostRepository
	generator service.ContentGenerator
	publisher service.Publisher
	predictor service.PredictorService
	approval  service.ApprovalService
	r2        ImageStore
	enq       TaskEnqueuer

	// isLastAttempt reads the asynq retry metadata; swapped out in tests
	// where no broker context exists.
	isLastAttempt func(ctx context.Context) bool

	// Per-minute caps: image generation is the slowest and most
	// rate-limited external call.
	contentLimiter *rate.Limiter
	imageLimiter   *rate.Limiter
	publishLimiter *rate.Limiter
}

func NewQueue(
	pr repository.PostRepository,
	generator service.ContentGenerator,
	publisher service.Publisher,
	predictor service.PredictorService,
	approval service.ApprovalService,
	r2 ImageStore,
	enq TaskEnqueuer) *Queue {
	return &Queue{
		pr:             pr,
		generator:      generator,
		publisher:      publisher,
		predictor:      predictor,
		approval:       approval,
		r2:             r2,
		enq:            enq,
		isLastAttempt:  lastAttempt,
		contentLimiter: rate.NewLimiter(rate.Every(6*time.Second), 1),
		imageLimiter:   rate.NewLimiter(rate.Every(15*time.Second), 1),
		publishLimiter: rate.NewLimiter(rate.Every(12*time.Second), 1),
	}
}

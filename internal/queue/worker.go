package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/h2non/filetype"
	"github.com/hibiken/asynq"
	"github.com/marcusfern/postpilot/internal/models"
	"github.com/marcusfern/postpilot/internal/service"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// lastAttempt reports whether the current delivery is the job's final try.
func lastAttempt(ctx context.Context) bool {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	return retried >= maxRetry
}

// loadPost fetches the job's post and decides whether work should proceed.
// A missing record is fatal for the job: retrying cannot fix it. A post in
// a terminal state makes the job a no-op.
func (q *Queue) loadPost(ctx context.Context, postID int64) (*models.Post, error) {
	post, err := q.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("post %d not found: %w", postID, asynq.SkipRetry)
	}
	if models.IsTerminal(post.Status) {
		slog.Info(fmt.Sprintf("post %d is %s, skipping job", postID, post.Status))
		return nil, nil
	}
	return post, nil
}

func (q *Queue) HandleGenerateContentTask(ctx context.Context, task *asynq.Task) error {
	var payload ContentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("bad content payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := q.contentLimiter.Wait(ctx); err != nil {
		return err
	}

	post, err := q.loadPost(ctx, payload.PostID)
	if err != nil || post == nil {
		return err
	}

	body, hashtags, err := q.generator.GenerateText(ctx, post.Topic)
	if err != nil {
		if recErr := q.pr.RecordFailure(ctx, post.ID, err.Error()); recErr != nil {
			slog.Info(recErr.Error())
		}
		if q.isLastAttempt(ctx) {
			msg := fmt.Sprintf("content generation exhausted %d attempts: %v", MaxAttempts, err)
			if failErr := q.pr.MarkFailed(ctx, post.ID, msg); failErr != nil {
				slog.Info(failErr.Error())
			}
			return fmt.Errorf("%s: %w", msg, asynq.SkipRetry)
		}
		return err
	}

	if err := q.pr.UpdateContent(ctx, post.ID, body, hashtags); err != nil {
		return err
	}

	return q.enq.EnqueueImage(post.ID)
}

func (q *Queue) HandleGenerateImageTask(ctx context.Context, task *asynq.Task) error {
	var payload ImagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("bad image payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := q.imageLimiter.Wait(ctx); err != nil {
		return err
	}

	post, err := q.loadPost(ctx, payload.PostID)
	if err != nil || post == nil {
		return err
	}

	data, err := q.generator.GenerateImage(ctx, post.Topic, post.Content)
	if err != nil {
		if recErr := q.pr.RecordFailure(ctx, post.ID, err.Error()); recErr != nil {
			slog.Info(recErr.Error())
		}
		if !q.isLastAttempt(ctx) {
			return err
		}
		// Out of attempts: a missing image never blocks publication.
		// Fall through to evaluation with a text-only draft.
		slog.Info(fmt.Sprintf("post %d proceeding without image after %d attempts", post.ID, MaxAttempts))
		data = nil
	}

	if data != nil {
		if uploadErr := q.storeImage(ctx, post.ID, data); uploadErr != nil {
			if recErr := q.pr.RecordFailure(ctx, post.ID, uploadErr.Error()); recErr != nil {
				slog.Info(recErr.Error())
			}
			if !q.isLastAttempt(ctx) {
				return uploadErr
			}
			slog.Info(fmt.Sprintf("post %d proceeding without image, upload failed: %v", post.ID, uploadErr))
		}
	}

	return q.evaluate(ctx, post.ID)
}

func (q *Queue) storeImage(ctx context.Context, postID int64, data []byte) error {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return fmt.Errorf("generated image has unrecognizable type")
	}

	id, err := gonanoid.New()
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s.%s", id, kind.Extension)

	url, err := q.r2.UploadImage(ctx, key, data, kind.MIME.Value)
	if err != nil {
		return err
	}

	return q.pr.UpdateImage(ctx, postID, url)
}

// evaluate closes out the generation phase: predict engagement, record the
// score, and let the approval engine route the post onward.
func (q *Queue) evaluate(ctx context.Context, postID int64) error {
	post, err := q.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("post %d not found: %w", postID, asynq.SkipRetry)
	}

	pred := q.predictor.Predict(ctx, post.Topic, post.Content, post.Hashtags, time.Now())

	decision, err := q.approval.Decide(ctx, post.ID, pred.Score)
	if err != nil {
		return err
	}

	slog.Info(fmt.Sprintf("post %d evaluated: score %.1f, action %s", post.ID, pred.Score, decision.Action))
	return nil
}

func (q *Queue) HandlePublishTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("bad publish payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := q.publishLimiter.Wait(ctx); err != nil {
		return err
	}

	post, err := q.loadPost(ctx, payload.PostID)
	if err != nil || post == nil {
		return err
	}

	switch post.Status {
	case models.PostStatusPosting:
		// normal path
	case models.PostStatusScheduled:
		// A previous attempt reverted the post; reclaim it. Losing the
		// race means someone rejected or re-approved it meanwhile.
		ok, err := q.pr.UpdateStatusIf(ctx, post.ID, models.PostStatusScheduled, models.PostStatusPosting, "")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	default:
		slog.Info(fmt.Sprintf("post %d in status %s, skipping publish", post.ID, post.Status))
		return nil
	}

	externalID, err := q.publisher.Publish(ctx, post.Content, post.ImageURL, post.Hashtags)
	if err != nil {
		if recErr := q.pr.RecordFailure(ctx, post.ID, err.Error()); recErr != nil {
			slog.Info(recErr.Error())
		}

		if service.IsAuthError(err) {
			// Credential failures are never transient; retrying cannot
			// help until a human reissues the token.
			msg := fmt.Sprintf("publish credential error (manual intervention required): %v", err)
			if failErr := q.pr.MarkFailed(ctx, post.ID, msg); failErr != nil {
				slog.Info(failErr.Error())
			}
			return fmt.Errorf("%s: %w", msg, asynq.SkipRetry)
		}

		if !service.IsRetryable(err) {
			msg := fmt.Sprintf("publish rejected by platform: %v", err)
			if failErr := q.pr.MarkFailed(ctx, post.ID, msg); failErr != nil {
				slog.Info(failErr.Error())
			}
			return fmt.Errorf("%s: %w", msg, asynq.SkipRetry)
		}

		if q.isLastAttempt(ctx) {
			msg := fmt.Sprintf("publish exhausted %d attempts: %v", MaxAttempts, err)
			if failErr := q.pr.MarkFailed(ctx, post.ID, msg); failErr != nil {
				slog.Info(failErr.Error())
			}
			return fmt.Errorf("%s: %w", msg, asynq.SkipRetry)
		}

		// Retries remain: surface the post back in the review flow with
		// its error annotation until the next attempt claims it.
		if _, revertErr := q.pr.UpdateStatusIf(ctx, post.ID, models.PostStatusPosting, models.PostStatusScheduled, ""); revertErr != nil {
			slog.Info(revertErr.Error())
		}
		return err
	}

	ok, err := q.pr.MarkPosted(ctx, post.ID, externalID, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		slog.Info(fmt.Sprintf("post %d already left posting state, publish id %s recorded by another worker?", post.ID, externalID))
	}

	return nil
}

func (q *Queue) HandleDelayedApprovalTask(ctx context.Context, task *asynq.Task) error {
	var payload DelayedApprovalPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("bad delayed approval payload: %v: %w", err, asynq.SkipRetry)
	}

	return q.approval.CheckDelayed(ctx, payload.PostID)
}

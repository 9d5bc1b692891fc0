package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/marcusfern/postpilot/internal/models"
	"github.com/marcusfern/postpilot/internal/queue"
	"github.com/marcusfern/postpilot/internal/repository"
	"github.com/marcusfern/postpilot/internal/service"
)

// PostScheduleJob is the pipeline entry point. Each firing picks a topic
// from the weighted rotation, creates the post record and enqueues the
// first stage.
type PostScheduleJob struct {
	ts     service.TopicService
	pr     repository.PostRepository
	enq    queue.TaskEnqueuer
	paused atomic.Bool
}

func NewPostScheduleJob(ts service.TopicService, pr repository.PostRepository, enq queue.TaskEnqueuer) *PostScheduleJob {
	return &PostScheduleJob{
		ts:  ts,
		pr:  pr,
		enq: enq,
	}
}

func (j *PostScheduleJob) Run() {
	if j.paused.Load() {
		slog.Info("scheduler is paused, skipping run")
		return
	}

	if _, err := j.Trigger(context.Background()); err != nil {
		slog.Info(err.Error())
	}
}

// Trigger runs one scheduling cycle immediately, bypassing the pause flag.
// Used by the manual-trigger admin endpoint.
func (j *PostScheduleJob) Trigger(ctx context.Context) (int64, error) {
	topic := j.ts.SelectTopic(ctx)
	if topic == "" {
		return 0, fmt.Errorf("no topic available for scheduling")
	}

	post := models.Post{
		Topic:  topic,
		Status: models.PostStatusGenerating,
	}
	postID, err := j.pr.Create(ctx, &post)
	if err != nil {
		return 0, fmt.Errorf("error creating post for topic %q: %w", topic, err)
	}

	if err := j.enq.EnqueueContent(postID, topic); err != nil {
		return 0, fmt.Errorf("error enqueuing content job for post %d: %w", postID, err)
	}

	slog.Info(fmt.Sprintf("scheduled post %d for topic %q", postID, topic))
	return postID, nil
}

func (j *PostScheduleJob) Pause() {
	j.paused.Store(true)
}

func (j *PostScheduleJob) Resume() {
	j.paused.Store(false)
}

func (j *PostScheduleJob) Paused() bool {
	return j.paused.Load()
}

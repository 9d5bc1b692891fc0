package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/marcusfern/postpilot/internal/models"
	"github.com/marcusfern/postpilot/internal/repository"
	"github.com/marcusfern/postpilot/internal/service"
)

// EngagementJob refreshes engagement snapshots for recently published
// posts. The measurements feed the topic weights and the prediction
// accuracy log.
type EngagementJob struct {
	pr        repository.PostRepository
	ah        repository.ApprovalHistoryRepository
	publisher service.Publisher
}

func NewEngagementJob(pr repository.PostRepository, ah repository.ApprovalHistoryRepository, publisher service.Publisher) *EngagementJob {
	return &EngagementJob{
		pr:        pr,
		ah:        ah,
		publisher: publisher,
	}
}

func (j *EngagementJob) Run() {
	ctx := context.Background()

	since := time.Now().AddDate(0, 0, -7)
	posts, err := j.pr.ListPostedSince(ctx, since)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 5
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, post := range posts {
		if post.ExternalPostID == nil || post.PostedAt == nil {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(post *models.Post) {
			defer wg.Done()
			defer func() { <-semaphore }()

			engagement, err := j.publisher.FetchEngagement(ctx, *post.ExternalPostID)
			if err != nil {
				slog.Info(err.Error())
				return
			}

			rate := models.EngagementRate(engagement.Likes, engagement.Comments, engagement.Shares, *post.PostedAt, time.Now())
			if err := j.pr.UpdateEngagement(ctx, post.ID, engagement.Likes, engagement.Comments, engagement.Shares, rate); err != nil {
				slog.Info(err.Error())
				return
			}

			if err := j.ah.SetActualEngagement(ctx, post.ID, rate); err != nil {
				slog.Info(err.Error())
			}
		}(post)
	}

	wg.Wait()
}

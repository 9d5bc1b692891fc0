package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marcusfern/postpilot/internal/models"
	"github.com/marcusfern/postpilot/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTopicService struct {
	topic      string
	recalcErr  error
	recalcHits int
}

func (f *fakeTopicService) SelectTopic(context.Context) string {
	return f.topic
}

func (f *fakeTopicService) RecalculateWeights(context.Context) error {
	f.recalcHits++
	return f.recalcErr
}

type fakePostRepo struct {
	repository.PostRepository
	createFn func(ctx context.Context, post *models.Post) (int64, error)
}

func (f *fakePostRepo) Create(ctx context.Context, post *models.Post) (int64, error) {
	return f.createFn(ctx, post)
}

type fakeEnqueuer struct {
	content    []int64
	contentErr error
}

func (f *fakeEnqueuer) EnqueueContent(postID int64, _ string) error {
	if f.contentErr != nil {
		return f.contentErr
	}
	f.content = append(f.content, postID)
	return nil
}

func (f *fakeEnqueuer) EnqueueImage(int64) error                          { return nil }
func (f *fakeEnqueuer) EnqueuePublish(int64) error                        { return nil }
func (f *fakeEnqueuer) EnqueueDelayedApproval(int64, time.Duration) error { return nil }

func TestPostScheduleJob_Trigger(t *testing.T) {
	pr := &fakePostRepo{
		createFn: func(_ context.Context, post *models.Post) (int64, error) {
			assert.Equal(t, "Hydration and Wellness", post.Topic)
			assert.Equal(t, models.PostStatusGenerating, post.Status)
			return 42, nil
		},
	}
	enq := &fakeEnqueuer{}
	j := NewPostScheduleJob(&fakeTopicService{topic: "Hydration and Wellness"}, pr, enq)

	postID, err := j.Trigger(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(42), postID)
	assert.Equal(t, []int64{42}, enq.content)
}

func TestPostScheduleJob_TriggerNoTopic(t *testing.T) {
	j := NewPostScheduleJob(&fakeTopicService{topic: ""}, &fakePostRepo{}, &fakeEnqueuer{})

	_, err := j.Trigger(context.Background())

	require.Error(t, err)
}

func TestPostScheduleJob_TriggerEnqueueFailure(t *testing.T) {
	pr := &fakePostRepo{
		createFn: func(context.Context, *models.Post) (int64, error) { return 7, nil },
	}
	enq := &fakeEnqueuer{contentErr: errors.New("broker down")}
	j := NewPostScheduleJob(&fakeTopicService{topic: "Sleep Hygiene"}, pr, enq)

	_, err := j.Trigger(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "post 7")
}

func TestPostScheduleJob_PauseSkipsRuns(t *testing.T) {
	created := 0
	pr := &fakePostRepo{
		createFn: func(context.Context, *models.Post) (int64, error) {
			created++
			return int64(created), nil
		},
	}
	enq := &fakeEnqueuer{}
	j := NewPostScheduleJob(&fakeTopicService{topic: "Sleep Hygiene"}, pr, enq)

	j.Pause()
	assert.True(t, j.Paused())
	j.Run()
	assert.Zero(t, created)

	// Manual trigger bypasses the pause flag.
	_, err := j.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	j.Resume()
	assert.False(t, j.Paused())
	j.Run()
	assert.Equal(t, 2, created)
}

func TestWeightRecalcJob_Run(t *testing.T) {
	ts := &fakeTopicService{}
	NewWeightRecalcJob(ts).Run()
	assert.Equal(t, 1, ts.recalcHits)

	// Failures are logged and swallowed; the cron wrapper must not panic.
	ts = &fakeTopicService{recalcErr: errors.New("db unavailable")}
	NewWeightRecalcJob(ts).Run()
	assert.Equal(t, 1, ts.recalcHits)
}

package service

import (
	"context"
	"time"

	"github.com/marcusfern/postpilot/internal/models"
	"github.com/marcusfern/postpilot/internal/repository"
)

// Test fakes embed the repository interfaces so each test only stubs the
// calls it expects; anything else panics and fails the test loudly.

type fakeTopicWeightRepo struct {
	repository.TopicWeightRepository
	listFn       func(ctx context.Context) ([]*models.TopicWeight, error)
	getByTopicFn func(ctx context.Context, topic string) (*models.TopicWeight, error)
	upserted     []*models.TopicWeight
	upsertErr    error
}

func (f *fakeTopicWeightRepo) List(ctx context.Context) ([]*models.TopicWeight, error) {
	return f.listFn(ctx)
}

func (f *fakeTopicWeightRepo) GetByTopic(ctx context.Context, topic string) (*models.TopicWeight, error) {
	return f.getByTopicFn(ctx, topic)
}

func (f *fakeTopicWeightRepo) Upsert(ctx context.Context, tw *models.TopicWeight) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, tw)
	return nil
}

type fakePostRepo struct {
	repository.PostRepository
	getByIDFn            func(ctx context.Context, id int64) (*models.Post, error)
	topicStatsFn         func(ctx context.Context, topic string, since time.Time) (*repository.TopicStats, error)
	avgByHourFn          func(ctx context.Context, hour int, since time.Time) (float64, int, error)
	avgByHashtagFn       func(ctx context.Context, tag string) (float64, int, error)
	updateStatusIfFn     func(ctx context.Context, postID int64, from, to, method string) (bool, error)
	approveDelayedFn     func(ctx context.Context, postID int64) (bool, error)
	setEvaluationFn      func(ctx context.Context, postID int64, score float64, method string) error
	setLastErrorFn       func(ctx context.Context, postID int64, errMsg string) error
	recordFailureFn      func(ctx context.Context, postID int64, errMsg string) error
	listByStatusFn       func(ctx context.Context, status string) ([]*models.Post, error)
	createFn             func(ctx context.Context, post *models.Post) (int64, error)
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakePostRepo) TopicStatsSince(ctx context.Context, topic string, since time.Time) (*repository.TopicStats, error) {
	return f.topicStatsFn(ctx, topic, since)
}

func (f *fakePostRepo) AvgEngagementByHour(ctx context.Context, hour int, since time.Time) (float64, int, error) {
	return f.avgByHourFn(ctx, hour, since)
}

func (f *fakePostRepo) AvgEngagementByHashtag(ctx context.Context, tag string) (float64, int, error) {
	return f.avgByHashtagFn(ctx, tag)
}

func (f *fakePostRepo) UpdateStatusIf(ctx context.Context, postID int64, from, to, method string) (bool, error) {
	return f.updateStatusIfFn(ctx, postID, from, to, method)
}

func (f *fakePostRepo) ApproveDelayed(ctx context.Context, postID int64) (bool, error) {
	return f.approveDelayedFn(ctx, postID)
}

func (f *fakePostRepo) SetEvaluation(ctx context.Context, postID int64, score float64, method string) error {
	return f.setEvaluationFn(ctx, postID, score, method)
}

func (f *fakePostRepo) SetLastError(ctx context.Context, postID int64, errMsg string) error {
	if f.setLastErrorFn != nil {
		return f.setLastErrorFn(ctx, postID, errMsg)
	}
	return nil
}

func (f *fakePostRepo) RecordFailure(ctx context.Context, postID int64, errMsg string) error {
	if f.recordFailureFn != nil {
		return f.recordFailureFn(ctx, postID, errMsg)
	}
	return nil
}

func (f *fakePostRepo) ListByStatus(ctx context.Context, status string) ([]*models.Post, error) {
	return f.listByStatusFn(ctx, status)
}

func (f *fakePostRepo) Create(ctx context.Context, post *models.Post) (int64, error) {
	return f.createFn(ctx, post)
}

type fakeSettingsRepo struct {
	repository.ApprovalSettingsRepository
	settings *models.ApprovalSettings
	getErr   error
}

func (f *fakeSettingsRepo) Get(ctx context.Context) (*models.ApprovalSettings, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.settings, nil
}

func (f *fakeSettingsRepo) Create(ctx context.Context, s *models.ApprovalSettings) (int64, error) {
	f.settings = s
	return 1, nil
}

func (f *fakeSettingsRepo) Update(ctx context.Context, s *models.ApprovalSettings) error {
	f.settings = s
	return nil
}

type fakeHistoryRepo struct {
	repository.ApprovalHistoryRepository
	created []*models.ApprovalHistory
	listFn  func(ctx context.Context, limit int) ([]*models.ApprovalHistory, error)
}

func (f *fakeHistoryRepo) Create(ctx context.Context, h *models.ApprovalHistory) (int64, error) {
	f.created = append(f.created, h)
	return int64(len(f.created)), nil
}

func (f *fakeHistoryRepo) List(ctx context.Context, limit int) ([]*models.ApprovalHistory, error) {
	if f.listFn != nil {
		return f.listFn(ctx, limit)
	}
	return nil, nil
}

type fakeEnqueuer struct {
	published  []int64
	delayed    map[int64]time.Duration
	publishErr error
}

func newFakeEnqueuer() *fakeEnqueuer {
	return &fakeEnqueuer{delayed: make(map[int64]time.Duration)}
}

func (f *fakeEnqueuer) EnqueuePublish(postID int64) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, postID)
	return nil
}

func (f *fakeEnqueuer) EnqueueDelayedApproval(postID int64, delay time.Duration) error {
	f.delayed[postID] = delay
	return nil
}

package service

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

var testTopics = []string{"Alkaline Water Benefits", "Daily Habits", "Hydration and Wellness"}

func TestRecalculateWeightsBaselineAndNormalization(t *testing.T) {
	stats := map[string]*repository.TopicStats{
		"Alkaline Water Benefits": {},
		"Daily Habits":            {},
		"Hydration and Wellness":  {AvgEngagement: 0.5, PostCount: 4, TotalLikes: 40, TotalComments: 10, TotalShares: 5},
	}

	pr := &fakePostRepo{
		topicStatsFn: func(ctx context.Context, topic string, since time.Time) (*repository.TopicStats, error) {
			return stats[topic], nil
		},
	}
	tw := &fakeTopicWeightRepo{}

	s := NewTopicService(tw, pr, testTopics)
	require.NoError(t, s.RecalculateWeights(context.Background()))
	require.Len(t, tw.upserted, len(testTopics))

	byTopic := make(map[string]*models.TopicWeight)
	var sum float64
	for _, w := range tw.upserted {
		byTopic[w.Topic] = w
		sum += w.PerformanceScore
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	// Zero-post topics get the pre-normalization baseline of 1.0 each;
	// the active topic gets 0.5 * 1.2 * 1.4 = 0.84 before normalization.
	total := 1.0 + 1.0 + 0.84
	assert.InDelta(t, 1.0/total, byTopic["Alkaline Water Benefits"].PerformanceScore, 1e-6)
	assert.InDelta(t, 1.0/total, byTopic["Daily Habits"].PerformanceScore, 1e-6)
	assert.InDelta(t, 0.84/total, byTopic["Hydration and Wellness"].PerformanceScore, 1e-6)

	assert.Equal(t, 4, byTopic["Hydration and Wellness"].PostCount)
	assert.Equal(t, 40, byTopic["Hydration and Wellness"].TotalLikes)
}

func TestRecalculateWeightsAppliesFloor(t *testing.T) {
	pr := &fakePostRepo{
		topicStatsFn: func(ctx context.Context, topic string, since time.Time) (*repository.TopicStats, error) {
			// Active topic with terrible engagement still gets the floor.
			return &repository.TopicStats{AvgEngagement: 0.01, PostCount: 1}, nil
		},
	}
	tw := &fakeTopicWeightRepo{}

	s := NewTopicService(tw, pr, []string{"Water Science"})
	require.NoError(t, s.RecalculateWeights(context.Background()))
	require.Len(t, tw.upserted, 1)
	// Single topic normalizes to 1 regardless of the raw weight.
	assert.InDelta(t, 1.0, tw.upserted[0].PerformanceScore, 1e-6)
}

func TestSelectTopicConvergesToWeights(t *testing.T) {
	tw := &fakeTopicWeightRepo{
		listFn: func(ctx context.Context) ([]*models.TopicWeight, error) {
			return []*models.TopicWeight{
				{Topic: "Daily Habits", PerformanceScore: 0.8},
				{Topic: "Water Science", PerformanceScore: 0.2},
			}, nil
		},
	}

	s := NewTopicService(tw, &fakePostRepo{}, testTopics)

	const draws = 10000
	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		counts[s.SelectTopic(context.Background())]++
	}

	assert.InDelta(t, 0.8, float64(counts["Daily Habits"])/draws, 0.03)
	assert.InDelta(t, 0.2, float64(counts["Water Science"])/draws, 0.03)
}

func TestSelectTopicFailsOpenOnStoreError(t *testing.T) {
	tw := &fakeTopicWeightRepo{
		listFn: func(ctx context.Context) ([]*models.TopicWeight, error) {
			return nil, errors.New("connection refused")
		},
	}

	s := NewTopicService(tw, &fakePostRepo{}, testTopics)
	topic := s.SelectTopic(context.Background())
	assert.Contains(t, testTopics, topic)
}

func TestSelectTopicFallsBackOnEmptyTable(t *testing.T) {
	tw := &fakeTopicWeightRepo{
		listFn: func(ctx context.Context) ([]*models.TopicWeight, error) {
			return nil, nil
		},
	}

	s := NewTopicService(tw, &fakePostRepo{}, testTopics)
	for i := 0; i < 50; i++ {
		assert.Contains(t, testTopics, s.SelectTopic(context.Background()))
	}
}

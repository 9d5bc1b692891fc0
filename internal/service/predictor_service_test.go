package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/marcusfern/postpilot/internal/models"
	"github.com/marcusfern/postpilot/internal/repository"
	"github.com/stretchr/testify/assert"
)

func noHistoryPostRepo() *fakePostRepo {
	return &fakePostRepo{
		topicStatsFn: func(ctx context.Context, topic string, since time.Time) (*repository.TopicStats, error) {
			return &repository.TopicStats{}, nil
		},
		avgByHourFn: func(ctx context.Context, hour int, since time.Time) (float64, int, error) {
			return 0, 0, nil
		},
		avgByHashtagFn: func(ctx context.Context, tag string) (float64, int, error) {
			return 0, 0, nil
		},
	}
}

func emptySettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{}
}

func TestPredictNoHistoryUsesOffPeakDefaults(t *testing.T) {
	tw := &fakeTopicWeightRepo{
		getByTopicFn: func(ctx context.Context, topic string) (*models.TopicWeight, error) {
			return nil, nil
		},
	}

	s := NewPredictorService(tw, noHistoryPostRepo(), emptySettingsRepo())
	pred := s.Predict(context.Background(), "Unknown Topic", "", "", time.Now())

	// Baseline 50 + off-peak hour default 5 + momentum default 5.
	assert.InDelta(t, 60, pred.Score, 1e-9)
	assert.Equal(t, models.ActionManualReview, pred.Recommendation)
	assert.InDelta(t, 5, pred.Factors["time_of_day"], 1e-9)
	assert.InDelta(t, 5, pred.Factors["recent_momentum"], 1e-9)
	assert.Zero(t, pred.Factors["topic_history"])
	assert.Zero(t, pred.Factors["hashtag_history"])
	assert.Zero(t, pred.Factors["content_heuristics"])
}

func TestPredictClampsToUpperBound(t *testing.T) {
	tw := &fakeTopicWeightRepo{
		getByTopicFn: func(ctx context.Context, topic string) (*models.TopicWeight, error) {
			return &models.TopicWeight{Topic: topic, AvgEngagement: 50}, nil
		},
	}
	pr := &fakePostRepo{
		topicStatsFn: func(ctx context.Context, topic string, since time.Time) (*repository.TopicStats, error) {
			return &repository.TopicStats{AvgEngagement: 50, PostCount: 10}, nil
		},
		avgByHourFn: func(ctx context.Context, hour int, since time.Time) (float64, int, error) {
			return 50, 10, nil
		},
		avgByHashtagFn: func(ctx context.Context, tag string) (float64, int, error) {
			return 50, 10, nil
		},
	}

	content := "Try our alkaline water today! Limited stock. Did you know proper hydration boosts focus? Learn more at the link in bio and join thousands of happy customers enjoying better wellness every single day."

	s := NewPredictorService(tw, pr, emptySettingsRepo())
	pred := s.Predict(context.Background(), "Hydration and Wellness", content, "#KangenWater #Wellness", time.Now())

	assert.InDelta(t, 100, pred.Score, 1e-9)
	assert.Equal(t, models.ActionAutoApprove, pred.Recommendation)
	assert.InDelta(t, 30, pred.Factors["topic_history"], 1e-9)
	assert.InDelta(t, 20, pred.Factors["time_of_day"], 1e-9)
	assert.InDelta(t, 20, pred.Factors["hashtag_history"], 1e-9)
	assert.InDelta(t, 20, pred.Factors["recent_momentum"], 1e-9)
	assert.InDelta(t, 10, pred.Factors["content_heuristics"], 1e-9)
}

func TestPredictExtremeInputsStayInRange(t *testing.T) {
	tw := &fakeTopicWeightRepo{
		getByTopicFn: func(ctx context.Context, topic string) (*models.TopicWeight, error) {
			return nil, nil
		},
	}

	s := NewPredictorService(tw, noHistoryPostRepo(), emptySettingsRepo())

	cases := []struct {
		name     string
		topic    string
		content  string
		hashtags string
	}{
		{"empty everything", "", "", ""},
		{"unknown topic", "Quantum Baking", "hello", "#tag"},
		{"very long content", "Daily Habits", strings.Repeat("water ", 5000), ""},
		{"hash only", "Daily Habits", "", "# # ###"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pred := s.Predict(context.Background(), tc.topic, tc.content, tc.hashtags, time.Now())
			assert.GreaterOrEqual(t, pred.Score, 0.0)
			assert.LessOrEqual(t, pred.Score, 100.0)
		})
	}
}

func TestPredictDegradesToSafeDefaultOnStoreFailure(t *testing.T) {
	tw := &fakeTopicWeightRepo{
		getByTopicFn: func(ctx context.Context, topic string) (*models.TopicWeight, error) {
			return nil, errors.New("connection refused")
		},
	}

	s := NewPredictorService(tw, noHistoryPostRepo(), emptySettingsRepo())
	pred := s.Predict(context.Background(), "Daily Habits", "some content", "", time.Now())

	assert.InDelta(t, 50, pred.Score, 1e-9)
	assert.Equal(t, models.ActionManualReview, pred.Recommendation)
}

func TestContentFactor(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    float64
	}{
		{"empty", "", 0},
		{"question only", "Is water wet?", 2},
		{"cta only", "Sign up for our newsletter", 3},
		{"urgency only", "Offer ends today", 2},
		{"ideal length", strings.Repeat("a", 200), 3},
		{"everything", "Ready to feel better? Sign up today and start your hydration journey with us. " + strings.Repeat("Water is the foundation of wellness. ", 3), 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, contentFactor(tc.content), 1e-9)
		})
	}
}

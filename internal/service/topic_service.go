package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/marcusfern/postpilot/internal/models"
	"github.com/marcusfern/postpilot/internal/repository"
)

const (
	weightWindowDays = 30
	baselineWeight   = 1.0
	minWeightFloor   = 0.1
	recencyBoost     = 1.2
)

type TopicService interface {
	SelectTopic(ctx context.Context) string
	RecalculateWeights(ctx context.Context) error
}

type topicService struct {
	tw     repository.TopicWeightRepository
	pr     repository.PostRepository
	topics []string
}

func NewTopicService(tw repository.TopicWeightRepository, pr repository.PostRepository, topics []string) TopicService {
	return &topicService{
		tw:     tw,
		pr:     pr,
		topics: topics,
	}
}

// SelectTopic draws a topic at random, biased by the persisted performance
// weights. Any store problem degrades to a uniform pick over the configured
// topic set so scheduling is never blocked.
func (s *topicService) SelectTopic(ctx context.Context) string {
	weights, err := s.tw.List(ctx)
	if err != nil {
		slog.Info(err.Error())
		return s.uniformPick()
	}
	if len(weights) == 0 {
		return s.uniformPick()
	}

	var total float64
	for _, w := range weights {
		total += w.PerformanceScore
	}
	if total <= 0 {
		return s.uniformPick()
	}

	// Weights come back in lexicographic topic order, so ties resolve
	// deterministically given the draw.
	r := rand.Float64() * total
	for _, w := range weights {
		r -= w.PerformanceScore
		if r <= 0 {
			return w.Topic
		}
	}
	return weights[len(weights)-1].Topic
}

func (s *topicService) uniformPick() string {
	if len(s.topics) == 0 {
		return ""
	}
	return s.topics[rand.Intn(len(s.topics))]
}

// RecalculateWeights rebuilds the topic weight table from the last 30 days
// of published posts and normalizes the scores to sum to 1. Topics with no
// published posts in the window keep a baseline weight so they stay
// selectable.
func (s *topicService) RecalculateWeights(ctx context.Context) error {
	since := time.Now().AddDate(0, 0, -weightWindowDays)

	raw := make(map[string]float64, len(s.topics))
	stats := make(map[string]*repository.TopicStats, len(s.topics))
	var total float64

	for _, topic := range s.topics {
		st, err := s.pr.TopicStatsSince(ctx, topic, since)
		if err != nil {
			return fmt.Errorf("topic stats for %q: %w", topic, err)
		}

		weight := baselineWeight
		if st.PostCount > 0 {
			consistency := 1 + 0.1*float64(st.PostCount)
			weight = math.Max(minWeightFloor, st.AvgEngagement) * recencyBoost * consistency
		}

		raw[topic] = weight
		stats[topic] = st
		total += weight
	}

	if total == 0 {
		total = 1
	}

	for _, topic := range s.topics {
		st := stats[topic]
		tw := models.TopicWeight{
			Topic:            topic,
			PerformanceScore: raw[topic] / total,
			AvgEngagement:    st.AvgEngagement,
			PostCount:        st.PostCount,
			TotalLikes:       st.TotalLikes,
			TotalComments:    st.TotalComments,
			TotalShares:      st.TotalShares,
		}
		if err := s.tw.Upsert(ctx, &tw); err != nil {
			return fmt.Errorf("upsert weight for %q: %w", topic, err)
		}
	}

	return nil
}

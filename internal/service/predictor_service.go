package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/marcusfern/postpilot/internal/models"
	"github.com/marcusfern/postpilot/internal/repository"
	"github.com/marcusfern/postpilot/internal/transfer"
)

const (
	baselineScore  = 50.0
	hourWindowDays = 14
	momentumDays   = 7
	offPeakDefault = 5.0
)

var ctaKeywords = []string{"learn more", "sign up", "join", "discover", "try", "shop", "order", "contact us"}

var urgencyKeywords = []string{"now", "today", "limited", "free", "exclusive", "don't miss", "save"}

type PredictorService interface {
	Predict(ctx context.Context, topic, content, hashtags string, scheduledTime time.Time) *transfer.Prediction
}

type predictorService struct {
	tw repository.TopicWeightRepository
	pr repository.PostRepository
	ar repository.ApprovalSettingsRepository
}

func NewPredictorService(tw repository.TopicWeightRepository, pr repository.PostRepository, ar repository.ApprovalSettingsRepository) PredictorService {
	return &predictorService{
		tw: tw,
		pr: pr,
		ar: ar,
	}
}

// Predict scores a draft from 0 to 100. It never fails: a store problem
// degrades to the baseline score with a manual-review recommendation,
// since scoring must not block draft creation.
func (s *predictorService) Predict(ctx context.Context, topic, content, hashtags string, scheduledTime time.Time) *transfer.Prediction {
	pred, err := s.predict(ctx, topic, content, hashtags, scheduledTime)
	if err != nil {
		slog.Info(err.Error())
		return &transfer.Prediction{
			Score:          baselineScore,
			Factors:        map[string]float64{},
			Recommendation: models.ActionManualReview,
		}
	}
	return pred
}

func (s *predictorService) predict(ctx context.Context, topic, content, hashtags string, scheduledTime time.Time) (*transfer.Prediction, error) {
	topicScore, err := s.topicFactor(ctx, topic)
	if err != nil {
		return nil, err
	}

	hourScore, err := s.hourFactor(ctx, scheduledTime)
	if err != nil {
		return nil, err
	}

	hashtagScore, err := s.hashtagFactor(ctx, hashtags)
	if err != nil {
		return nil, err
	}

	contentScore := contentFactor(content)

	momentumScore, err := s.momentumFactor(ctx, topic)
	if err != nil {
		return nil, err
	}

	score := baselineScore + topicScore + hourScore + hashtagScore + contentScore + momentumScore
	score = clamp(score, 0, 100)

	return &transfer.Prediction{
		Score: score,
		Factors: map[string]float64{
			"topic_history":      topicScore,
			"time_of_day":        hourScore,
			"hashtag_history":    hashtagScore,
			"content_heuristics": contentScore,
			"recent_momentum":    momentumScore,
		},
		Recommendation: s.recommend(ctx, score),
	}, nil
}

func (s *predictorService) topicFactor(ctx context.Context, topic string) (float64, error) {
	tw, err := s.tw.GetByTopic(ctx, topic)
	if err != nil {
		return 0, err
	}
	if tw == nil {
		return 0, nil
	}
	return clamp(tw.AvgEngagement*30, 0, 30), nil
}

func (s *predictorService) hourFactor(ctx context.Context, scheduledTime time.Time) (float64, error) {
	since := time.Now().AddDate(0, 0, -hourWindowDays)
	avg, count, err := s.pr.AvgEngagementByHour(ctx, scheduledTime.Hour(), since)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return offPeakDefault, nil
	}
	return clamp(avg*20, 0, 20), nil
}

func (s *predictorService) hashtagFactor(ctx context.Context, hashtags string) (float64, error) {
	tags := strings.Fields(hashtags)
	if len(tags) == 0 {
		return 0, nil
	}

	var total float64
	var seen int
	for _, tag := range tags {
		tag = strings.TrimPrefix(tag, "#")
		if tag == "" {
			continue
		}
		avg, count, err := s.pr.AvgEngagementByHashtag(ctx, tag)
		if err != nil {
			return 0, err
		}
		if count > 0 {
			total += avg
			seen++
		}
	}
	if seen == 0 {
		return 0, nil
	}

	// Normalize across the used hashtags, then halve so hashtags alone
	// cannot dominate the score.
	normalized := total / float64(seen)
	return clamp(normalized*20/2, 0, 20), nil
}

func contentFactor(content string) float64 {
	var score float64
	lower := strings.ToLower(content)

	if n := len(content); n >= 150 && n <= 300 {
		score += 3
	}
	for _, kw := range ctaKeywords {
		if strings.Contains(lower, kw) {
			score += 3
			break
		}
	}
	if strings.Contains(content, "?") {
		score += 2
	}
	for _, kw := range urgencyKeywords {
		if strings.Contains(lower, kw) {
			score += 2
			break
		}
	}

	return clamp(score, 0, 10)
}

func (s *predictorService) momentumFactor(ctx context.Context, topic string) (float64, error) {
	since := time.Now().AddDate(0, 0, -momentumDays)
	stats, err := s.pr.TopicStatsSince(ctx, topic, since)
	if err != nil {
		return 0, err
	}
	if stats.PostCount == 0 {
		return offPeakDefault, nil
	}
	return clamp(stats.AvgEngagement*20, 0, 20), nil
}

// recommend mirrors the approval engine's thresholds. The engine's decision
// stays authoritative; this is advisory output for the review surface.
func (s *predictorService) recommend(ctx context.Context, score float64) string {
	auto, delayed, manual := float64(models.DefaultAutoThreshold), float64(models.DefaultDelayedThreshold), float64(models.DefaultManualThreshold)
	if settings, err := s.ar.Get(ctx); err == nil && settings != nil {
		auto, delayed, manual = settings.AutoThreshold, settings.DelayedThreshold, settings.ManualThreshold
	}

	switch {
	case score >= auto:
		return models.ActionAutoApprove
	case score >= delayed:
		return models.ActionDelayedApprove
	case score >= manual:
		return models.ActionOptionalReview
	default:
		return models.ActionManualReview
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

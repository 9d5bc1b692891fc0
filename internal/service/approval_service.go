package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcusfern/postpilot/internal/models"
	"github.com/marcusfern/postpilot/internal/repository"
	"github.com/marcusfern/postpilot/internal/transfer"
)

// highConfidenceRejection marks rejections worth feeding back into
// threshold tuning.
const highConfidenceRejection = 70

var (
	ErrPostNotFound      = errors.New("post not found")
	ErrNotAwaitingReview = errors.New("post is not awaiting review")
)

// PublishEnqueuer is the slice of the pipeline queue the approval engine
// needs. Injected so the engine is testable without a live broker.
type PublishEnqueuer interface {
	EnqueuePublish(postID int64) error
	EnqueueDelayedApproval(postID int64, delay time.Duration) error
}

type ApprovalService interface {
	GetSettings(ctx context.Context) (*models.ApprovalSettings, error)
	UpdateSettings(ctx context.Context, auto, delayed, manual float64, waitMins int) error
	Decide(ctx context.Context, postID int64, score float64) (*transfer.Decision, error)
	Approve(ctx context.Context, postID int64) error
	Reject(ctx context.Context, postID int64, reason string) error
	CheckDelayed(ctx context.Context, postID int64) error
	Pending(ctx context.Context) ([]*models.Post, error)
	Accuracy(ctx context.Context) (*transfer.AccuracyReport, error)
}

type approvalService struct {
	pr repository.PostRepository
	ar repository.ApprovalSettingsRepository
	ah repository.ApprovalHistoryRepository
	q  PublishEnqueuer
}

func NewApprovalService(
	pr repository.PostRepository,
	ar repository.ApprovalSettingsRepository,
	ah repository.ApprovalHistoryRepository,
	q PublishEnqueuer) ApprovalService {
	return &approvalService{
		pr: pr,
		ar: ar,
		ah: ah,
		q:  q,
	}
}

// GetSettings returns the singleton thresholds, creating the row with
// defaults on first read.
func (s *approvalService) GetSettings(ctx context.Context) (*models.ApprovalSettings, error) {
	settings, err := s.ar.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	settings = &models.ApprovalSettings{
		AutoThreshold:    models.DefaultAutoThreshold,
		DelayedThreshold: models.DefaultDelayedThreshold,
		ManualThreshold:  models.DefaultManualThreshold,
		DelayedWaitMins:  models.DefaultDelayedWaitMins,
	}
	id, err := s.ar.Create(ctx, settings)
	if err != nil {
		return nil, err
	}
	settings.ID = id

	return settings, nil
}

func (s *approvalService) UpdateSettings(ctx context.Context, auto, delayed, manual float64, waitMins int) error {
	if auto < delayed || delayed < manual {
		err := errors.New("thresholds must satisfy auto >= delayed >= manual")
		slog.Info(err.Error())
		return err
	}
	if waitMins <= 0 {
		err := errors.New("delayed wait must be positive")
		slog.Info(err.Error())
		return err
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return err
	}

	settings.AutoThreshold = auto
	settings.DelayedThreshold = delayed
	settings.ManualThreshold = manual
	settings.DelayedWaitMins = waitMins

	return s.ar.Update(ctx, settings)
}

// Decide maps a confidence score onto an approval action and applies its
// side effects: the post's evaluation is recorded, auto approval moves it
// straight to posting, delayed approval schedules a durable re-check.
// Thresholds are inclusive lower bounds checked in descending order.
func (s *approvalService) Decide(ctx context.Context, postID int64, score float64) (*transfer.Decision, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		// A scoring failure must not block draft creation; leave the
		// post for manual review instead.
		slog.Info(err.Error())
		settings = &models.ApprovalSettings{
			AutoThreshold:    models.DefaultAutoThreshold,
			DelayedThreshold: models.DefaultDelayedThreshold,
			ManualThreshold:  models.DefaultManualThreshold,
			DelayedWaitMins:  models.DefaultDelayedWaitMins,
		}
	}

	var decision transfer.Decision
	var method string

	switch {
	case score >= settings.AutoThreshold:
		decision = transfer.Decision{Action: models.ActionAutoApprove, Reason: fmt.Sprintf("confidence %.0f >= auto threshold %.0f", score, settings.AutoThreshold)}
		method = models.ApprovalMethodAuto
	case score >= settings.DelayedThreshold:
		decision = transfer.Decision{Action: models.ActionDelayedApprove, Reason: fmt.Sprintf("confidence %.0f >= delayed threshold %.0f", score, settings.DelayedThreshold)}
		method = models.ApprovalMethodDelayed
	case score >= settings.ManualThreshold:
		decision = transfer.Decision{Action: models.ActionOptionalReview, Reason: fmt.Sprintf("confidence %.0f >= manual threshold %.0f", score, settings.ManualThreshold)}
		method = models.ApprovalMethodNone
	default:
		decision = transfer.Decision{Action: models.ActionManualReview, Reason: fmt.Sprintf("confidence %.0f below manual threshold %.0f", score, settings.ManualThreshold)}
		method = models.ApprovalMethodNone
	}

	if err := s.pr.SetEvaluation(ctx, postID, score, method); err != nil {
		return nil, err
	}

	switch decision.Action {
	case models.ActionAutoApprove:
		ok, err := s.pr.UpdateStatusIf(ctx, postID, models.PostStatusScheduled, models.PostStatusPosting, models.ApprovalMethodAuto)
		if err != nil {
			return nil, err
		}
		if ok {
			if err := s.q.EnqueuePublish(postID); err != nil {
				s.releasePostingClaim(ctx, postID, err)
				return nil, err
			}
		}
	case models.ActionDelayedApprove:
		wait := time.Duration(settings.DelayedWaitMins) * time.Minute
		if err := s.q.EnqueueDelayedApproval(postID, wait); err != nil {
			return nil, err
		}
	}

	return &decision, nil
}

// releasePostingClaim undoes a scheduled -> posting transition whose
// publish job never made it onto the queue. Without the revert the post
// would sit in posting forever: no worker will pick it up, and neither
// Approve nor Reject can reach a post outside scheduled.
func (s *approvalService) releasePostingClaim(ctx context.Context, postID int64, cause error) {
	if err := s.pr.RecordFailure(ctx, postID, cause.Error()); err != nil {
		slog.Info(err.Error())
	}
	if _, err := s.pr.UpdateStatusIf(ctx, postID, models.PostStatusPosting, models.PostStatusScheduled, ""); err != nil {
		slog.Info(err.Error())
	}
}

func (s *approvalService) Approve(ctx context.Context, postID int64) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		slog.Info(ErrPostNotFound.Error())
		return ErrPostNotFound
	}

	ok, err := s.pr.UpdateStatusIf(ctx, postID, models.PostStatusScheduled, models.PostStatusPosting, models.ApprovalMethodManual)
	if err != nil {
		return err
	}
	if !ok {
		slog.Info(ErrNotAwaitingReview.Error())
		return ErrNotAwaitingReview
	}

	if err := s.q.EnqueuePublish(postID); err != nil {
		s.releasePostingClaim(ctx, postID, err)
		return err
	}
	return nil
}

// Reject is terminal. A second call finds the post already out of review
// and fails explicitly rather than resurrecting it. Rejecting a draft the
// predictor was confident about is recorded for threshold tuning.
func (s *approvalService) Reject(ctx context.Context, postID int64, reason string) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		slog.Info(ErrPostNotFound.Error())
		return ErrPostNotFound
	}

	ok, err := s.pr.UpdateStatusIf(ctx, postID, models.PostStatusScheduled, models.PostStatusRejected, models.ApprovalMethodReject)
	if err != nil {
		return err
	}
	if !ok {
		slog.Info(ErrNotAwaitingReview.Error())
		return ErrNotAwaitingReview
	}

	if reason != "" {
		if err := s.pr.SetLastError(ctx, postID, reason); err != nil {
			slog.Info(err.Error())
		}
	}

	if post.ConfidenceScore != nil && *post.ConfidenceScore >= highConfidenceRejection {
		history := models.ApprovalHistory{
			PostID:         postID,
			UserRating:     models.RatingRejected,
			PredictedScore: *post.ConfidenceScore,
		}
		if _, err := s.ah.Create(ctx, &history); err != nil {
			slog.Info(err.Error())
		}
	}

	return nil
}

// CheckDelayed runs when a delayed approval comes due. The conditional
// update only wins if the post is still awaiting its delayed approval, so
// a concurrent manual approve or reject makes this a no-op.
func (s *approvalService) CheckDelayed(ctx context.Context, postID int64) error {
	ok, err := s.pr.ApproveDelayed(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := s.q.EnqueuePublish(postID); err != nil {
		// Approval method stays delayed, so the retried task can claim
		// the post again.
		s.releasePostingClaim(ctx, postID, err)
		return err
	}
	return nil
}

func (s *approvalService) Pending(ctx context.Context) ([]*models.Post, error) {
	return s.pr.ListByStatus(ctx, models.PostStatusScheduled)
}

func (s *approvalService) Accuracy(ctx context.Context) (*transfer.AccuracyReport, error) {
	history, err := s.ah.List(ctx, 200)
	if err != nil {
		return nil, err
	}

	report := transfer.AccuracyReport{Samples: len(history)}
	var predictedSum, actualSum float64
	for _, h := range history {
		predictedSum += h.PredictedScore
		if h.UserRating == models.RatingRejected {
			report.Rejected++
		}
		if h.ActualEngagement != nil {
			actualSum += *h.ActualEngagement
			report.Measured++
		}
	}
	if report.Samples > 0 {
		report.AvgPredicted = predictedSum / float64(report.Samples)
	}
	if report.Measured > 0 {
		report.AvgEngagement = actualSum / float64(report.Measured)
	}

	return &report, nil
}

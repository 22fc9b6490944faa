package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/edusync/edusync-portal/internal/metrics"
	"github.com/edusync/edusync-portal/internal/model"
	"github.com/edusync/edusync-portal/internal/quiz"
	"github.com/edusync/edusync-portal/internal/repository"
	"github.com/edusync/edusync-portal/internal/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// submitLockTTL bounds how long a crashed submission can block a retry.
const submitLockTTL = time.Minute

// AttemptStore persists attempts. Lock/Unlock guard the single in-flight
// submission per attempt.
type AttemptStore interface {
	Create(ctx context.Context, a *model.AttemptRecord) error
	Get(ctx context.Context, id string) (*model.AttemptRecord, error)
	Update(ctx context.Context, id string, fn func(*model.AttemptRecord) error) (*model.AttemptRecord, error)
	Lock(ctx context.Context, id string, ttl time.Duration) error
	Unlock(ctx context.Context, id string) error
}

// ResultFeed announces results and queues ledger entries.
type ResultFeed interface {
	Publish(ctx context.Context, ev model.ResultEvent) error
	EnqueueLedger(ctx context.Context, e model.LedgerEntry) error
}

// AttemptService runs learner attempts: load, answer, grade, submit.
type AttemptService struct {
	api      Upstream
	attempts AttemptStore
	feed     ResultFeed
	log      zerolog.Logger
	now      func() time.Time
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(api Upstream, attempts AttemptStore, feed ResultFeed, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		api:      api,
		attempts: attempts,
		feed:     feed,
		log:      log.With().Str("component", "attempt_service").Logger(),
		now:      time.Now,
	}
}

// Start fetches an assessment and opens an attempt on it.
func (s *AttemptService) Start(ctx context.Context, sc *session.Context, assessmentID string) (*model.AttemptView, error) {
	u, ok := sc.Current()
	if !ok {
		return nil, ErrAccessDenied
	}

	attempt := quiz.NewAttempt(assessmentID)
	a, err := clientFor(s.api, sc).GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	questions, err := quiz.Decode(a.Questions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptAssessment, err)
	}
	if err := attempt.Load(questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptAssessment, err)
	}

	rec := &model.AttemptRecord{
		ID:        uuid.New().String(),
		UserID:    u.UserID,
		Title:     a.Title,
		CreatedAt: s.now().UTC(),
		Attempt:   *attempt,
	}
	if err := s.attempts.Create(ctx, rec); err != nil {
		return nil, err
	}
	return attemptView(rec), nil
}

// Get returns one of the caller's attempts.
func (s *AttemptService) Get(ctx context.Context, sc *session.Context, id string) (*model.AttemptView, error) {
	rec, err := s.attempts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkAttemptOwner(sc, rec); err != nil {
		return nil, err
	}
	return attemptView(rec), nil
}

// Answer records or overwrites one selection.
func (s *AttemptService) Answer(ctx context.Context, sc *session.Context, id, key, value string) (*model.AttemptView, error) {
	rec, err := s.attempts.Update(ctx, id, func(rec *model.AttemptRecord) error {
		if err := checkAttemptOwner(sc, rec); err != nil {
			return err
		}
		return rec.Answer(key, value)
	})
	if err != nil {
		return nil, err
	}
	return attemptView(rec), nil
}

// Submit grades the attempt and sends the score upstream exactly once.
//
// When the upstream call fails the attempt goes back to ANSWERING with the
// error recorded; Submit then returns both the view (carrying the score) and
// the error.
func (s *AttemptService) Submit(ctx context.Context, sc *session.Context, id string) (*model.AttemptView, error) {
	u, ok := sc.Current()
	if !ok {
		return nil, ErrAccessDenied
	}

	if err := s.attempts.Lock(ctx, id, submitLockTTL); err != nil {
		if errors.Is(err, repository.ErrLocked) {
			return nil, ErrSubmitInProgress
		}
		return nil, err
	}
	defer func() {
		if err := s.attempts.Unlock(context.WithoutCancel(ctx), id); err != nil {
			s.log.Warn().Err(err).Str("attempt_id", id).Msg("Failed to release submit lock")
		}
	}()

	var score int
	rec, err := s.attempts.Update(ctx, id, func(rec *model.AttemptRecord) error {
		if err := checkAttemptOwner(sc, rec); err != nil {
			return err
		}
		var err error
		score, err = rec.BeginSubmit()
		return err
	})
	if err != nil {
		var verr *quiz.ValidationError
		if errors.As(err, &verr) {
			metrics.QuizSubmissions.WithLabelValues("refused").Inc()
		}
		return nil, err
	}

	_, submitErr := clientFor(s.api, sc).SubmitResult(ctx, edusync.SubmitResultRequest{
		AssessmentID: rec.AssessmentID,
		UserID:       u.UserID,
		Score:        score,
	})

	// Bookkeeping must land even if the caller went away.
	bg := context.WithoutCancel(ctx)
	entry := model.LedgerEntry{
		AttemptID:    rec.ID,
		AssessmentID: rec.AssessmentID,
		UserID:       u.UserID,
		Score:        score,
		MaxScore:     rec.MaxScore,
		SubmittedAt:  s.now().UTC(),
	}

	if submitErr != nil {
		msg := submissionMessage(submitErr)
		rec, err = s.attempts.Update(bg, id, func(rec *model.AttemptRecord) error {
			return rec.Fail(msg)
		})
		if err != nil {
			return nil, errors.Join(submitErr, err)
		}
		entry.Outcome, entry.Error = model.OutcomeFailed, msg
		s.enqueue(bg, entry)
		metrics.QuizSubmissions.WithLabelValues(string(model.OutcomeFailed)).Inc()
		s.log.Warn().Err(submitErr).Str("attempt_id", id).Int("score", score).Msg("Result submission failed")
		return attemptView(rec), submitErr
	}

	// The result is already accepted upstream, so a failed state write is
	// retried once and then only logged.
	done, err := s.complete(bg, id)
	if err != nil {
		s.log.Error().Err(err).Str("attempt_id", id).Int("score", score).Msg("Result accepted but attempt not marked submitted")
		_ = rec.Complete()
		done = rec
	}
	rec = done
	entry.Outcome = model.OutcomeSubmitted
	s.enqueue(bg, entry)
	metrics.QuizSubmissions.WithLabelValues(string(model.OutcomeSubmitted)).Inc()

	ev := model.ResultEvent{
		Type:         "result.submitted",
		AttemptID:    rec.ID,
		AssessmentID: rec.AssessmentID,
		UserID:       u.UserID,
		UserName:     u.Name,
		Score:        score,
		MaxScore:     rec.MaxScore,
		SubmittedAt:  entry.SubmittedAt,
	}
	if err := s.feed.Publish(bg, ev); err != nil {
		s.log.Warn().Err(err).Str("attempt_id", id).Msg("Failed to publish result event")
	}

	s.log.Info().Str("attempt_id", id).Int("score", score).Int("max_score", rec.MaxScore).Msg("Result submitted")
	return attemptView(rec), nil
}

func (s *AttemptService) complete(ctx context.Context, id string) (*model.AttemptRecord, error) {
	var rec *model.AttemptRecord
	var err error
	for i := 0; i < 2; i++ {
		rec, err = s.attempts.Update(ctx, id, func(rec *model.AttemptRecord) error {
			return rec.Complete()
		})
		if err == nil {
			return rec, nil
		}
	}
	return nil, err
}

func (s *AttemptService) enqueue(ctx context.Context, e model.LedgerEntry) {
	if err := s.feed.EnqueueLedger(ctx, e); err != nil {
		s.log.Error().Err(err).Str("attempt_id", e.AttemptID).Msg("Failed to queue ledger entry")
	}
}

// submissionMessage is the text shown on the attempt after a failed submit.
func submissionMessage(err error) string {
	var apiErr *edusync.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Failed to submit result. Please try again."
}

func checkAttemptOwner(sc *session.Context, rec *model.AttemptRecord) error {
	u, ok := sc.Current()
	if !ok || rec.UserID != u.UserID {
		return ErrAccessDenied
	}
	return nil
}

func attemptView(rec *model.AttemptRecord) *model.AttemptView {
	v := model.NewAttemptView(rec)
	return &v
}

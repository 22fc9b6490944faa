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

// DraftStore persists authoring drafts. Update must apply fn atomically and
// write nothing when fn fails. While Lock is held, Update fails with
// repository.ErrLocked.
type DraftStore interface {
	Create(ctx context.Context, d *model.Draft) error
	Get(ctx context.Context, id string) (*model.Draft, error)
	Update(ctx context.Context, id string, fn func(*model.Draft) error) (*model.Draft, error)
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string, ttl time.Duration) error
	Unlock(ctx context.Context, id string) error
}

// AuthoringService runs the question-set builder over stored drafts and saves
// finished drafts as assessments.
type AuthoringService struct {
	api    Upstream
	drafts DraftStore
	ids    quiz.IDGenerator
	log    zerolog.Logger
}

// NewAuthoringService creates a new AuthoringService.
func NewAuthoringService(api Upstream, drafts DraftStore, ids quiz.IDGenerator, log zerolog.Logger) *AuthoringService {
	return &AuthoringService{
		api:    api,
		drafts: drafts,
		ids:    ids,
		log:    log.With().Str("component", "authoring_service").Logger(),
	}
}

// NewDraft starts a create-assessment draft with one default question.
func (s *AuthoringService) NewDraft(ctx context.Context, sc *session.Context, courseID string) (*model.DraftView, error) {
	course, err := ownedCourse(ctx, clientFor(s.api, sc), sc, courseID)
	if err != nil {
		return nil, err
	}
	u, _ := sc.Current()
	d := &model.Draft{
		ID:        uuid.New().String(),
		Mode:      model.DraftModeCreate,
		OwnerID:   u.UserID,
		CourseID:  course.CourseID,
		Questions: quiz.NewQuestionSet(s.ids).Questions(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.drafts.Create(ctx, d); err != nil {
		return nil, err
	}
	return view(d), nil
}

// EditDraft opens an existing assessment for editing. Questions and options
// get fresh client ids since the stored blob has none.
func (s *AuthoringService) EditDraft(ctx context.Context, sc *session.Context, assessmentID string) (*model.DraftView, error) {
	api := clientFor(s.api, sc)
	a, err := api.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if _, err := ownedCourse(ctx, api, sc, a.CourseID); err != nil {
		return nil, err
	}
	questions, err := quiz.Decode(a.Questions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptAssessment, err)
	}

	u, _ := sc.Current()
	d := &model.Draft{
		ID:           uuid.New().String(),
		Mode:         model.DraftModeEdit,
		OwnerID:      u.UserID,
		CourseID:     a.CourseID,
		AssessmentID: a.AssessmentID,
		Title:        a.Title,
		Questions:    quiz.LoadQuestionSet(s.ids, questions).Questions(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.drafts.Create(ctx, d); err != nil {
		return nil, err
	}
	return view(d), nil
}

// GetDraft returns one of the caller's drafts.
func (s *AuthoringService) GetDraft(ctx context.Context, sc *session.Context, id string) (*model.DraftView, error) {
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkDraftOwner(sc, d); err != nil {
		return nil, err
	}
	return view(d), nil
}

// DiscardDraft throws a draft away without touching the backend.
func (s *AuthoringService) DiscardDraft(ctx context.Context, sc *session.Context, id string) error {
	if _, err := s.GetDraft(ctx, sc, id); err != nil {
		return err
	}
	return s.drafts.Delete(ctx, id)
}

func (s *AuthoringService) SetTitle(ctx context.Context, sc *session.Context, id, title string) (*model.DraftView, error) {
	return s.mutate(ctx, sc, id, func(_ *quiz.QuestionSet, d *model.Draft) error {
		d.Title = title
		return nil
	})
}

func (s *AuthoringService) AddQuestion(ctx context.Context, sc *session.Context, id string) (*model.DraftView, error) {
	return s.mutate(ctx, sc, id, func(set *quiz.QuestionSet, _ *model.Draft) error {
		set.AddQuestion()
		return nil
	})
}

func (s *AuthoringService) RemoveQuestion(ctx context.Context, sc *session.Context, id string, qi int) (*model.DraftView, error) {
	return s.mutate(ctx, sc, id, func(set *quiz.QuestionSet, _ *model.Draft) error {
		return set.RemoveQuestion(qi)
	})
}

func (s *AuthoringService) UpdateQuestion(ctx context.Context, sc *session.Context, id string, qi int, req model.QuestionPatchRequest) (*model.DraftView, error) {
	return s.mutate(ctx, sc, id, func(set *quiz.QuestionSet, _ *model.Draft) error {
		return set.UpdateQuestion(qi, quiz.QuestionPatch{Text: req.QuestionText, Points: req.Points})
	})
}

func (s *AuthoringService) ChangeType(ctx context.Context, sc *session.Context, id string, qi int, typ string) (*model.DraftView, error) {
	t, err := quiz.ParseType(typ)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sc, id, func(set *quiz.QuestionSet, _ *model.Draft) error {
		return set.ChangeType(qi, t)
	})
}

func (s *AuthoringService) AddOption(ctx context.Context, sc *session.Context, id string, qi int) (*model.DraftView, error) {
	return s.mutate(ctx, sc, id, func(set *quiz.QuestionSet, _ *model.Draft) error {
		return set.AddOption(qi)
	})
}

func (s *AuthoringService) RemoveOption(ctx context.Context, sc *session.Context, id string, qi, oi int) (*model.DraftView, error) {
	return s.mutate(ctx, sc, id, func(set *quiz.QuestionSet, _ *model.Draft) error {
		return set.RemoveOption(qi, oi)
	})
}

func (s *AuthoringService) SetOptionText(ctx context.Context, sc *session.Context, id string, qi, oi int, text string) (*model.DraftView, error) {
	return s.mutate(ctx, sc, id, func(set *quiz.QuestionSet, _ *model.Draft) error {
		return set.SetOptionText(qi, oi, text)
	})
}

func (s *AuthoringService) SelectCorrect(ctx context.Context, sc *session.Context, id string, qi int, value string) (*model.DraftView, error) {
	return s.mutate(ctx, sc, id, func(set *quiz.QuestionSet, _ *model.Draft) error {
		return set.SelectCorrect(qi, value)
	})
}

// Submit validates the draft, saves it upstream as a new or updated
// assessment, and discards the draft. Validation failures never reach the
// network. The draft stays locked until the save returns, so a second submit
// or an edit in the meantime fails with ErrSubmitInProgress.
func (s *AuthoringService) Submit(ctx context.Context, sc *session.Context, id string) (*model.SubmitDraftResponse, error) {
	if err := s.drafts.Lock(ctx, id, submitLockTTL); err != nil {
		if errors.Is(err, repository.ErrLocked) {
			return nil, ErrSubmitInProgress
		}
		return nil, err
	}
	defer func() {
		if err := s.drafts.Unlock(context.WithoutCancel(ctx), id); err != nil {
			s.log.Warn().Err(err).Str("draft_id", id).Msg("Failed to release submit lock")
		}
	}()

	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkDraftOwner(sc, d); err != nil {
		return nil, err
	}

	set := quiz.LoadQuestionSet(s.ids, d.Questions)
	if err := set.Validate(d.Title); err != nil {
		return nil, err
	}
	encoded, err := set.Encode()
	if err != nil {
		return nil, err
	}
	maxScore := set.MaxScore()

	api := clientFor(s.api, sc)
	if _, err := ownedCourse(ctx, api, sc, d.CourseID); err != nil {
		return nil, err
	}

	out := &model.SubmitDraftResponse{CourseID: d.CourseID, Mode: d.Mode, MaxScore: maxScore}
	switch d.Mode {
	case model.DraftModeEdit:
		err = api.UpdateAssessment(ctx, d.AssessmentID, edusync.UpdateAssessmentRequest{
			Title: d.Title, Questions: encoded, MaxScore: maxScore,
		})
		out.AssessmentID = d.AssessmentID
	default:
		var created *edusync.Assessment
		created, err = api.CreateAssessment(ctx, edusync.CreateAssessmentRequest{
			CourseID: d.CourseID, Title: d.Title, Questions: encoded, MaxScore: maxScore,
		})
		if created != nil {
			out.AssessmentID = created.AssessmentID
		}
	}
	if err != nil {
		return nil, err
	}

	metrics.AssessmentSaves.WithLabelValues(string(d.Mode)).Inc()
	if err := s.drafts.Delete(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("draft_id", id).Msg("Failed to discard submitted draft")
	}
	s.log.Info().
		Str("assessment_id", out.AssessmentID).
		Str("mode", string(d.Mode)).
		Int("max_score", maxScore).
		Msg("Assessment saved")
	return out, nil
}

// DeleteAssessment removes an assessment of an owned course once confirmed.
func (s *AuthoringService) DeleteAssessment(ctx context.Context, sc *session.Context, assessmentID string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	api := clientFor(s.api, sc)
	a, err := api.GetAssessment(ctx, assessmentID)
	if err != nil {
		return err
	}
	if _, err := ownedCourse(ctx, api, sc, a.CourseID); err != nil {
		return err
	}
	return api.DeleteAssessment(ctx, assessmentID)
}

// mutate runs one builder operation inside the store's atomic update.
func (s *AuthoringService) mutate(ctx context.Context, sc *session.Context, id string, op func(*quiz.QuestionSet, *model.Draft) error) (*model.DraftView, error) {
	d, err := s.drafts.Update(ctx, id, func(d *model.Draft) error {
		if err := checkDraftOwner(sc, d); err != nil {
			return err
		}
		set := quiz.LoadQuestionSet(s.ids, d.Questions)
		if err := op(set, d); err != nil {
			return err
		}
		d.Questions = set.Questions()
		d.UpdatedAt = time.Now().UTC()
		return nil
	})
	if errors.Is(err, repository.ErrLocked) {
		return nil, ErrSubmitInProgress
	}
	if err != nil {
		return nil, err
	}
	return view(d), nil
}

func checkDraftOwner(sc *session.Context, d *model.Draft) error {
	u, ok := sc.Current()
	if !ok {
		return ErrAccessDenied
	}
	if d.OwnerID != u.UserID {
		return ErrNotOwner
	}
	return nil
}

func view(d *model.Draft) *model.DraftView {
	v := model.NewDraftView(d)
	return &v
}

package quiz

import (
	"errors"
	"fmt"
	"math"
)

// AttemptState is a step in the lifecycle of one quiz attempt.
type AttemptState string

const (
	StateLoading    AttemptState = "LOADING"
	StateAnswering  AttemptState = "ANSWERING"
	StateSubmitting AttemptState = "SUBMITTING"
	StateSubmitted  AttemptState = "SUBMITTED"
)

// Attempt errors.
var (
	ErrNotAnswering  = errors.New("attempt is not accepting answers")
	ErrNotSubmitting = errors.New("attempt is not being submitted")
	ErrUnknownKey    = errors.New("no such question in this attempt")
)

// Attempt is a learner's in-memory answer sheet for one assessment. Only
// the final score ever leaves it.
//
//	LOADING → ANSWERING → SUBMITTING → SUBMITTED
//	                 ↑__________↓ (failure, answers kept)
type Attempt struct {
	AssessmentID string       `json:"assessmentId"`
	State        AttemptState `json:"state"`
	Questions    []Question   `json:"questions"`
	Answers      Answers      `json:"answers"`
	Score        *int         `json:"score,omitempty"`
	MaxScore     int          `json:"maxScore"`
	Error        string       `json:"error,omitempty"`
}

// NewAttempt returns an attempt waiting for its questions.
func NewAttempt(assessmentID string) *Attempt {
	return &Attempt{AssessmentID: assessmentID, State: StateLoading, Answers: Answers{}}
}

// Load installs the fetched questions and opens the attempt for answers. Every
// question must carry non-negative points and the total must fit in int32.
func (a *Attempt) Load(questions []Question) error {
	if a.State != StateLoading {
		return fmt.Errorf("load attempt in state %s", a.State)
	}
	total := 0
	for i, q := range questions {
		if q.Points < 0 || q.Points > math.MaxInt32-total {
			return fmt.Errorf("%w: question %d", ErrPointsRange, i)
		}
		total += q.Points
	}
	a.Questions = questions
	a.MaxScore = total
	a.Answers = Answers{}
	a.State = StateAnswering
	return nil
}

// Keys returns the question keys in display order.
func (a *Attempt) Keys() []string {
	keys := make([]string, len(a.Questions))
	for i, q := range a.Questions {
		keys[i] = QuestionKey(i, q)
	}
	return keys
}

// Answer records or overwrites the selection for one question.
func (a *Attempt) Answer(key, value string) error {
	if a.State != StateAnswering {
		return ErrNotAnswering
	}
	if !a.hasKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if a.Answers == nil {
		a.Answers = Answers{}
	}
	a.Answers[key] = value
	return nil
}

// BeginSubmit grades the attempt and moves it to SUBMITTING. It refuses while
// any question is unanswered. The score is recorded right away so it can be
// shown whatever the outcome of persisting it.
func (a *Attempt) BeginSubmit() (int, error) {
	if a.State != StateAnswering {
		return 0, ErrNotAnswering
	}
	if len(Unanswered(a.Questions, a.Answers)) > 0 {
		return 0, invalid("Please answer all questions before submitting.")
	}
	score := Score(a.Questions, a.Answers)
	a.Score = &score
	a.Error = ""
	a.State = StateSubmitting
	return score, nil
}

// Complete marks the result as persisted. The answers are frozen from here on.
func (a *Attempt) Complete() error {
	if a.State != StateSubmitting {
		return ErrNotSubmitting
	}
	a.State = StateSubmitted
	return nil
}

// Fail returns the attempt to ANSWERING with the error attached, keeping the
// answers and the computed score.
func (a *Attempt) Fail(msg string) error {
	if a.State != StateSubmitting {
		return ErrNotSubmitting
	}
	a.State = StateAnswering
	a.Error = msg
	return nil
}

func (a *Attempt) hasKey(key string) bool {
	for i, q := range a.Questions {
		if QuestionKey(i, q) == key {
			return true
		}
	}
	return false
}

package model

import (
	"time"

	"github.com/edusync/edusync-portal/internal/quiz"
)

// AttemptRecord is the stored form of a quiz attempt, answer key included.
type AttemptRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	quiz.Attempt
}

// PublicQuestion is a question as shown to a learner: no answer key.
type PublicQuestion struct {
	Key          string        `json:"key"`
	QuestionText string        `json:"questionText"`
	Type         quiz.Type     `json:"type"`
	Options      []quiz.Option `json:"options"`
	Points       int           `json:"points"`
}

// AttemptView is the learner-facing state of an attempt.
type AttemptView struct {
	ID           string            `json:"id"`
	AssessmentID string            `json:"assessmentId"`
	Title        string            `json:"title"`
	State        quiz.AttemptState `json:"state"`
	Questions    []PublicQuestion  `json:"questions"`
	Answers      quiz.Answers      `json:"answers"`
	Score        *int              `json:"score,omitempty"`
	MaxScore     int               `json:"maxScore"`
	Error        string            `json:"error,omitempty"`
}

// NewAttemptView redacts the answer key.
func NewAttemptView(r *AttemptRecord) AttemptView {
	qs := make([]PublicQuestion, len(r.Questions))
	for i, q := range r.Questions {
		qs[i] = PublicQuestion{
			Key:          quiz.QuestionKey(i, q),
			QuestionText: q.Text,
			Type:         q.Type(),
			Options:      q.Options(),
			Points:       q.Points,
		}
	}
	answers := r.Answers
	if answers == nil {
		answers = quiz.Answers{}
	}
	return AttemptView{
		ID:           r.ID,
		AssessmentID: r.AssessmentID,
		Title:        r.Title,
		State:        r.State,
		Questions:    qs,
		Answers:      answers,
		Score:        r.Score,
		MaxScore:     r.MaxScore,
		Error:        r.Error,
	}
}

// AnswerRequest records one selection.
type AnswerRequest struct {
	QuestionKey string `json:"questionKey" binding:"required"`
	Value       string `json:"value" binding:"required"`
}

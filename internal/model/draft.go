package model

import (
	"time"

	"github.com/edusync/edusync-portal/internal/quiz"
)

// DraftMode says whether submitting a draft creates or updates an assessment.
type DraftMode string

const (
	DraftModeCreate DraftMode = "create"
	DraftModeEdit   DraftMode = "edit"
)

// Draft is an authoring session kept in Redis until it is submitted or
// expires. Questions carry client ids; they are stripped on submit.
type Draft struct {
	ID           string          `json:"id"`
	Mode         DraftMode       `json:"mode"`
	OwnerID      string          `json:"ownerId"`
	CourseID     string          `json:"courseId"`
	AssessmentID string          `json:"assessmentId,omitempty"`
	Title        string          `json:"title"`
	Questions    []quiz.Question `json:"questions"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// DraftView is what the author sees; MaxScore is derived on every read.
type DraftView struct {
	*Draft
	MaxScore int `json:"maxScore"`
}

func NewDraftView(d *Draft) DraftView {
	return DraftView{Draft: d, MaxScore: quiz.MaxScore(d.Questions)}
}

type DraftTitleRequest struct {
	Title string `json:"title" binding:"max=255"`
}

// QuestionPatchRequest changes scalar question fields. Omitted fields stay.
type QuestionPatchRequest struct {
	QuestionText *string `json:"questionText"`
	Points       *int    `json:"points"`
}

type QuestionTypeRequest struct {
	Type string `json:"type" binding:"required,qtype"`
}

type OptionTextRequest struct {
	Text string `json:"text" binding:"max=1000"`
}

type CorrectAnswerRequest struct {
	Value string `json:"value" binding:"required"`
}

// SubmitDraftResponse reports the saved assessment.
type SubmitDraftResponse struct {
	AssessmentID string    `json:"assessmentId"`
	CourseID     string    `json:"courseId"`
	Mode         DraftMode `json:"mode"`
	MaxScore     int       `json:"maxScore"`
}

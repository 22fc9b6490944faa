package model

import (
	"time"

	"github.com/edusync/edusync-portal/internal/edusync"
)

// SubmissionOutcome is the ledger status of one submission attempt.
type SubmissionOutcome string

const (
	OutcomeSubmitted SubmissionOutcome = "submitted"
	OutcomeFailed    SubmissionOutcome = "failed"
)

// LedgerEntry is one row of the portal's submission ledger.
type LedgerEntry struct {
	ID           int64             `json:"id,omitempty"`
	AttemptID    string            `json:"attemptId"`
	AssessmentID string            `json:"assessmentId"`
	UserID       string            `json:"userId"`
	Score        int               `json:"score"`
	MaxScore     int               `json:"maxScore"`
	Outcome      SubmissionOutcome `json:"outcome"`
	Error        string            `json:"error,omitempty"`
	SubmittedAt  time.Time         `json:"submittedAt"`
}

// SubmissionPage is one page of a user's ledger.
type SubmissionPage struct {
	Entries []LedgerEntry
	Page    int
	PerPage int
	Total   int
}

// ResultRow is a result annotated with the assessment's max score.
// Percentage is nil when the max score is zero.
type ResultRow struct {
	edusync.Result
	MaxScore   int      `json:"maxScore"`
	Percentage *float64 `json:"percentage,omitempty"`
}

// AssessmentResults is the instructor view of one assessment's results.
type AssessmentResults struct {
	Course     edusync.Course     `json:"course"`
	Assessment edusync.Assessment `json:"assessment"`
	Results    []ResultRow        `json:"results"`
}

// PerformanceSummary aggregates the results of one assessment.
type PerformanceSummary struct {
	CourseID       string      `json:"courseId"`
	AssessmentID   string      `json:"assessmentId"`
	MaxScore       int         `json:"maxScore"`
	Count          int         `json:"count"`
	Average        float64     `json:"average"`
	Highest        int         `json:"highest"`
	Lowest         int         `json:"lowest"`
	AveragePercent *float64    `json:"averagePercent,omitempty"`
	Results        []ResultRow `json:"results"`
}

// ResultEvent is published on the results feed after a successful submission.
type ResultEvent struct {
	Type         string    `json:"type"`
	AttemptID    string    `json:"attemptId"`
	AssessmentID string    `json:"assessmentId"`
	UserID       string    `json:"userId"`
	UserName     string    `json:"userName"`
	Score        int       `json:"score"`
	MaxScore     int       `json:"maxScore"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

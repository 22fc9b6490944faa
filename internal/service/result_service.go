package service

import (
	"context"
	"math"

	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/edusync/edusync-portal/internal/model"
	"github.com/edusync/edusync-portal/internal/session"
	"github.com/redis/go-redis/v9"
)

// Ledger page sizes.
const (
	DefaultLedgerPageSize = 20
	MaxLedgerPageSize     = 100
)

// SubmissionReader reads the portal's own submission ledger.
type SubmissionReader interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.LedgerEntry, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

// ResultSubscriber opens live result subscriptions.
type ResultSubscriber interface {
	Subscribe(ctx context.Context, assessmentID string) *redis.PubSub
}

// ResultService serves learner results and instructor reports.
type ResultService struct {
	api         Upstream
	submissions SubmissionReader
	feed        ResultSubscriber
}

// NewResultService creates a new ResultService.
func NewResultService(api Upstream, submissions SubmissionReader, feed ResultSubscriber) *ResultService {
	return &ResultService{api: api, submissions: submissions, feed: feed}
}

// MyResults lists the caller's stored results.
func (s *ResultService) MyResults(ctx context.Context, sc *session.Context) ([]edusync.Result, error) {
	u, ok := sc.Current()
	if !ok {
		return nil, ErrAccessDenied
	}
	results, err := clientFor(s.api, sc).ResultsForUser(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []edusync.Result{}
	}
	return results, nil
}

// MySubmissions returns one page of the caller's portal ledger, including
// failed sends. Out-of-range paging values fall back to the defaults.
func (s *ResultService) MySubmissions(ctx context.Context, sc *session.Context, page, perPage int) (*model.SubmissionPage, error) {
	u, ok := sc.Current()
	if !ok {
		return nil, ErrAccessDenied
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > MaxLedgerPageSize {
		perPage = DefaultLedgerPageSize
	}

	total, err := s.submissions.CountByUser(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	entries, err := s.submissions.ListByUser(ctx, u.UserID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	return &model.SubmissionPage{Entries: entries, Page: page, PerPage: perPage, Total: total}, nil
}

// AssessmentResults loads course, assessment and results in order, checking
// ownership and that the assessment belongs to the course.
func (s *ResultService) AssessmentResults(ctx context.Context, sc *session.Context, courseID, assessmentID string) (*model.AssessmentResults, error) {
	api := clientFor(s.api, sc)
	course, a, err := s.ownedAssessment(ctx, api, sc, courseID, assessmentID)
	if err != nil {
		return nil, err
	}
	results, err := api.ResultsForAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	return &model.AssessmentResults{
		Course:     *course,
		Assessment: *a,
		Results:    ResultRows(results, a.MaxScore),
	}, nil
}

// Performance summarizes one assessment's results for its instructor.
func (s *ResultService) Performance(ctx context.Context, sc *session.Context, courseID, assessmentID string) (*model.PerformanceSummary, error) {
	res, err := s.AssessmentResults(ctx, sc, courseID, assessmentID)
	if err != nil {
		return nil, err
	}
	sum := Summarize(res.Results, res.Assessment.MaxScore)
	sum.CourseID = courseID
	sum.AssessmentID = assessmentID
	return &sum, nil
}

// Subscribe checks access and opens the live feed for an assessment.
func (s *ResultService) Subscribe(ctx context.Context, sc *session.Context, courseID, assessmentID string) (*redis.PubSub, error) {
	if _, _, err := s.ownedAssessment(ctx, clientFor(s.api, sc), sc, courseID, assessmentID); err != nil {
		return nil, err
	}
	return s.feed.Subscribe(ctx, assessmentID), nil
}

func (s *ResultService) ownedAssessment(ctx context.Context, api EduSyncAPI, sc *session.Context, courseID, assessmentID string) (*edusync.Course, *edusync.Assessment, error) {
	course, err := ownedCourse(ctx, api, sc, courseID)
	if err != nil {
		return nil, nil, err
	}
	a, err := api.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, nil, err
	}
	if a.CourseID != course.CourseID {
		return nil, nil, ErrAssessmentMismatch
	}
	return course, a, nil
}

// ResultRows annotates results with the max score and a one-decimal
// percentage. The percentage is omitted when maxScore is zero.
func ResultRows(results []edusync.Result, maxScore int) []model.ResultRow {
	rows := make([]model.ResultRow, len(results))
	for i, r := range results {
		rows[i] = model.ResultRow{Result: r, MaxScore: maxScore, Percentage: percent(float64(r.Score), maxScore)}
	}
	return rows
}

// Summarize computes count, average, extremes and average percentage.
func Summarize(rows []model.ResultRow, maxScore int) model.PerformanceSummary {
	sum := model.PerformanceSummary{MaxScore: maxScore, Results: rows}
	if sum.Results == nil {
		sum.Results = []model.ResultRow{}
	}
	if len(rows) == 0 {
		return sum
	}

	total := 0
	sum.Highest, sum.Lowest = rows[0].Score, rows[0].Score
	for _, r := range rows {
		total += r.Score
		sum.Highest = max(sum.Highest, r.Score)
		sum.Lowest = min(sum.Lowest, r.Score)
	}
	sum.Count = len(rows)
	avg := float64(total) / float64(len(rows))
	sum.Average = math.Round(avg*100) / 100
	sum.AveragePercent = percent(avg, maxScore)
	return sum
}

func percent(score float64, maxScore int) *float64 {
	if maxScore <= 0 {
		return nil
	}
	p := math.Round(score/float64(maxScore)*1000) / 10
	return &p
}

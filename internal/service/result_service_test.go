package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/edusync/edusync-portal/internal/model"
	"github.com/edusync/edusync-portal/internal/service"
	"github.com/edusync/edusync-portal/internal/session"
)

func newResults(t *testing.T) (*service.ResultService, *fakeAPI, *memFeed) {
	t.Helper()
	api := newFakeAPI()
	api.courses["c1"] = &edusync.Course{CourseID: "c1", Title: "Algebra", InstructorID: instructor.UserID}
	api.courses["c2"] = &edusync.Course{CourseID: "c2", Title: "Biology", InstructorID: instructor.UserID}
	api.assessments["a1"] = &edusync.Assessment{AssessmentID: "a1", CourseID: "c1", Title: "Quiz 1", MaxScore: 25}
	api.assessments["a0"] = &edusync.Assessment{AssessmentID: "a0", CourseID: "c1", Title: "Empty", MaxScore: 0}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	api.results = []edusync.Result{
		{ResultID: "r1", AssessmentID: "a1", UserID: "s1", Score: 20, AttemptDate: now},
		{ResultID: "r2", AssessmentID: "a1", UserID: "s2", Score: 10, AttemptDate: now},
		{ResultID: "r3", AssessmentID: "a1", UserID: "s3", Score: 25, AttemptDate: now},
		{ResultID: "r4", AssessmentID: "a0", UserID: "s1", Score: 0, AttemptDate: now},
	}
	feed := &memFeed{}
	return service.NewResultService(api, feed, nil), api, feed
}

func TestMyResultsFiltersByCaller(t *testing.T) {
	svc, _, _ := newResults(t)
	got, err := svc.MyResults(context.Background(), loggedIn(t, student))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	got, err = svc.MyResults(context.Background(), loggedIn(t, sUser("s3")))
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 1 {
		t.Fatalf("results = %+v", got)
	}
}

func TestMySubmissionsReadsLedger(t *testing.T) {
	svc, _, feed := newResults(t)
	feed.ledger = []model.LedgerEntry{
		{AttemptID: "x", UserID: student.UserID, Outcome: model.OutcomeFailed, Error: "boom"},
		{AttemptID: "y", UserID: "someone-else", Outcome: model.OutcomeSubmitted},
	}
	got, err := svc.MySubmissions(context.Background(), loggedIn(t, student), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Entries) != 1 || got.Entries[0].AttemptID != "x" {
		t.Fatalf("entries = %+v", got.Entries)
	}
	if got.Page != 1 || got.PerPage != service.DefaultLedgerPageSize || got.Total != 1 {
		t.Fatalf("page = %+v", got)
	}
}

func TestMySubmissionsPages(t *testing.T) {
	svc, _, feed := newResults(t)
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		feed.ledger = append(feed.ledger, model.LedgerEntry{AttemptID: id, UserID: student.UserID})
	}
	sc := loggedIn(t, student)

	got, err := svc.MySubmissions(context.Background(), sc, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != 5 || len(got.Entries) != 2 || got.Entries[0].AttemptID != "p3" {
		t.Fatalf("page 2 = %+v", got)
	}

	got, err = svc.MySubmissions(context.Background(), sc, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got.Entries == nil || len(got.Entries) != 0 {
		t.Fatalf("past the end = %+v", got.Entries)
	}

	got, _ = svc.MySubmissions(context.Background(), sc, 1, service.MaxLedgerPageSize+1)
	if got.PerPage != service.DefaultLedgerPageSize {
		t.Fatalf("per page = %d", got.PerPage)
	}
}

func TestAssessmentResultsChecksCourse(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newResults(t)

	_, err := svc.AssessmentResults(ctx, loggedIn(t, instructor), "c2", "a1")
	wantErr(t, err, service.ErrAssessmentMismatch)

	_, err = svc.AssessmentResults(ctx, loggedIn(t, otherInst), "c1", "a1")
	wantErr(t, err, service.ErrNotOwner)

	_, err = svc.AssessmentResults(ctx, loggedIn(t, student), "c1", "a1")
	wantErr(t, err, service.ErrInstructorOnly)

	res, err := svc.AssessmentResults(ctx, loggedIn(t, instructor), "c1", "a1")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 3 || res.Course.CourseID != "c1" {
		t.Fatalf("results = %+v", res)
	}
	want := map[string]float64{"r1": 80, "r2": 40, "r3": 100}
	for _, r := range res.Results {
		if r.Percentage == nil || *r.Percentage != want[r.ResultID] || r.MaxScore != 25 {
			t.Fatalf("row %s = %+v", r.ResultID, r)
		}
	}
}

func TestPerformanceSummary(t *testing.T) {
	svc, _, _ := newResults(t)
	sum, err := svc.Performance(context.Background(), loggedIn(t, instructor), "c1", "a1")
	if err != nil {
		t.Fatal(err)
	}
	if sum.Count != 3 || sum.Highest != 25 || sum.Lowest != 10 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Average != 18.33 {
		t.Fatalf("average = %v, want 18.33", sum.Average)
	}
	if sum.AveragePercent == nil || *sum.AveragePercent != 73.3 {
		t.Fatalf("average percent = %v", sum.AveragePercent)
	}
	if sum.CourseID != "c1" || sum.AssessmentID != "a1" {
		t.Fatalf("ids = %s/%s", sum.CourseID, sum.AssessmentID)
	}
}

func TestSummarizeEdgeCases(t *testing.T) {
	empty := service.Summarize(nil, 25)
	if empty.Count != 0 || empty.Results == nil || empty.AveragePercent != nil {
		t.Fatalf("empty = %+v", empty)
	}

	rows := service.ResultRows([]edusync.Result{{Score: 0}}, 0)
	if rows[0].Percentage != nil {
		t.Fatal("percentage computed for zero max score")
	}
	zero := service.Summarize(rows, 0)
	if zero.Count != 1 || zero.AveragePercent != nil {
		t.Fatalf("zero = %+v", zero)
	}
}

func sUser(id string) session.User {
	return session.User{UserID: id, Name: id, Role: edusync.RoleStudent, Token: "tok-" + id}
}

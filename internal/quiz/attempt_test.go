package quiz_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/edusync/edusync-portal/internal/quiz"
)

func loadedAttempt(t *testing.T) *quiz.Attempt {
	t.Helper()
	a := quiz.NewAttempt("assess-1")
	if a.State != quiz.StateLoading {
		t.Fatalf("state = %s", a.State)
	}
	if err := a.Load(gradedQuestions()); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestAttemptHappyPath(t *testing.T) {
	a := loadedAttempt(t)
	if a.State != quiz.StateAnswering || a.MaxScore != 25 {
		t.Fatalf("after load: state=%s max=%d", a.State, a.MaxScore)
	}

	_ = a.Answer("q1", "A")
	_ = a.Answer("q1", "B")
	_ = a.Answer("q2", "true")

	score, err := a.BeginSubmit()
	if err != nil {
		t.Fatal(err)
	}
	if score != 15 || a.Score == nil || *a.Score != 15 {
		t.Fatalf("score = %d", score)
	}
	if a.State != quiz.StateSubmitting {
		t.Fatalf("state = %s", a.State)
	}
	if err := a.Answer("q2", "false"); !errors.Is(err, quiz.ErrNotAnswering) {
		t.Fatalf("answer while submitting: %v", err)
	}
	if _, err := a.BeginSubmit(); !errors.Is(err, quiz.ErrNotAnswering) {
		t.Fatalf("second submit: %v", err)
	}
	if err := a.Complete(); err != nil {
		t.Fatal(err)
	}
	if a.State != quiz.StateSubmitted {
		t.Fatalf("state = %s", a.State)
	}
	if err := a.Answer("q1", "A"); !errors.Is(err, quiz.ErrNotAnswering) {
		t.Fatalf("answer after submit: %v", err)
	}
}

func TestAttemptRefusesIncompleteSubmit(t *testing.T) {
	a := loadedAttempt(t)
	_ = a.Answer("q1", "B")
	_, err := a.BeginSubmit()
	var verr *quiz.ValidationError
	if !errors.As(err, &verr) || verr.Message != "Please answer all questions before submitting." {
		t.Fatalf("err = %v", err)
	}
	if a.State != quiz.StateAnswering || a.Score != nil {
		t.Fatalf("state=%s score=%v", a.State, a.Score)
	}
}

func TestAttemptFailureReturnsToAnswering(t *testing.T) {
	a := loadedAttempt(t)
	_ = a.Answer("q1", "B")
	_ = a.Answer("q2", "false")
	if _, err := a.BeginSubmit(); err != nil {
		t.Fatal(err)
	}
	if err := a.Fail("Failed to submit result."); err != nil {
		t.Fatal(err)
	}
	if a.State != quiz.StateAnswering || a.Error != "Failed to submit result." {
		t.Fatalf("state=%s error=%q", a.State, a.Error)
	}
	if *a.Score != 25 || a.Answers["q1"] != "B" {
		t.Fatal("score or answers lost on failure")
	}

	if _, err := a.BeginSubmit(); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if a.Error != "" {
		t.Fatalf("error not cleared: %q", a.Error)
	}
}

func TestAttemptGuards(t *testing.T) {
	a := quiz.NewAttempt("x")
	if err := a.Answer("q1", "A"); !errors.Is(err, quiz.ErrNotAnswering) {
		t.Fatalf("answer while loading: %v", err)
	}
	if err := a.Complete(); !errors.Is(err, quiz.ErrNotSubmitting) {
		t.Fatalf("complete while loading: %v", err)
	}

	a = loadedAttempt(t)
	if err := a.Load(nil); err == nil {
		t.Fatal("second load accepted")
	}
	if err := a.Answer("nope", "A"); !errors.Is(err, quiz.ErrUnknownKey) {
		t.Fatalf("unknown key: %v", err)
	}
	if err := a.Fail("x"); !errors.Is(err, quiz.ErrNotSubmitting) {
		t.Fatalf("fail while answering: %v", err)
	}
	if got := a.Keys(); len(got) != 2 || got[0] != "q1" || got[1] != "q2" {
		t.Fatalf("Keys = %v", got)
	}
}

func TestAttemptLoadRejectsPointsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		points []int
	}{
		{"negative", []int{5, -5}},
		{"total overflows int32", []int{math.MaxInt32, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var qs []quiz.Question
			for i, p := range tt.points {
				qs = append(qs, quiz.Question{ID: fmt.Sprintf("q%d", i), Text: "x", Points: p, Correct: "true", Body: &quiz.TrueFalse{}})
			}
			a := quiz.NewAttempt("x")
			if err := a.Load(qs); !errors.Is(err, quiz.ErrPointsRange) {
				t.Fatalf("err = %v, want ErrPointsRange", err)
			}
			if a.State != quiz.StateLoading {
				t.Fatalf("state = %s", a.State)
			}
		})
	}
}

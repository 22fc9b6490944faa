package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/edusync/edusync-portal/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid entry", fmt.Errorf("%w: bad id", ErrInvalidEntry), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"numeric out of range", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "22003"}), true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, false},
		{"connection lost", errors.New("conn closed"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPermanent(tt.err); got != tt.want {
				t.Fatalf("IsPermanent(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCheckEntry(t *testing.T) {
	valid := model.LedgerEntry{
		AttemptID:   "5b7f8c1e-3d2a-4e6b-9f10-2a3b4c5d6e7f",
		Score:       10,
		MaxScore:    15,
		SubmittedAt: time.Now(),
	}
	if _, err := checkEntry(valid); err != nil {
		t.Fatalf("valid entry: %v", err)
	}

	bad := map[string]func(*model.LedgerEntry){
		"non-uuid attempt": func(e *model.LedgerEntry) { e.AttemptID = "attempt-1" },
		"negative score":   func(e *model.LedgerEntry) { e.Score = -1 },
		"score above max":  func(e *model.LedgerEntry) { e.Score = 16 },
		"max beyond int4":  func(e *model.LedgerEntry) { e.MaxScore = 1 << 31 },
	}
	for name, mutate := range bad {
		t.Run(name, func(t *testing.T) {
			e := valid
			mutate(&e)
			if _, err := checkEntry(e); !errors.Is(err, ErrInvalidEntry) {
				t.Fatalf("err = %v, want ErrInvalidEntry", err)
			}
		})
	}
}

package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/edusync/edusync-portal/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubmissionRepository reads and writes the result_submissions ledger.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// InsertBatch writes many entries in one round trip using UNNEST.
func (r *SubmissionRepository) InsertBatch(ctx context.Context, entries []model.LedgerEntry) error {
	n := len(entries)
	if n == 0 {
		return nil
	}
	attemptIDs := make([]uuid.UUID, n)
	assessmentIDs := make([]string, n)
	userIDs := make([]string, n)
	scores := make([]int32, n)
	maxScores := make([]int32, n)
	outcomes := make([]string, n)
	errs := make([]*string, n)
	submittedAts := make([]time.Time, n)

	for i, e := range entries {
		id, err := checkEntry(e)
		if err != nil {
			return err
		}
		attemptIDs[i] = id
		assessmentIDs[i] = e.AssessmentID
		userIDs[i] = e.UserID
		scores[i] = int32(e.Score)
		maxScores[i] = int32(e.MaxScore)
		outcomes[i] = string(e.Outcome)
		if e.Error != "" {
			msg := e.Error
			errs[i] = &msg
		}
		submittedAts[i] = e.SubmittedAt
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO result_submissions
			(attempt_id, assessment_id, user_id, score, max_score, outcome, error, submitted_at)
		SELECT * FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::text[],
			$4::int[],
			$5::int[],
			$6::text[],
			$7::text[],
			$8::timestamptz[]
		)`,
		attemptIDs, assessmentIDs, userIDs, scores, maxScores, outcomes, errs, submittedAts,
	)
	return err
}

// Insert writes a single entry. Used when a batch insert fails.
func (r *SubmissionRepository) Insert(ctx context.Context, e model.LedgerEntry) error {
	attemptID, err := checkEntry(e)
	if err != nil {
		return err
	}
	var errMsg *string
	if e.Error != "" {
		errMsg = &e.Error
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO result_submissions
			(attempt_id, assessment_id, user_id, score, max_score, outcome, error, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		attemptID, e.AssessmentID, e.UserID, e.Score, e.MaxScore, string(e.Outcome), errMsg, e.SubmittedAt,
	)
	return err
}

// checkEntry rejects entries the table can never hold.
func checkEntry(e model.LedgerEntry) (uuid.UUID, error) {
	id, err := uuid.Parse(e.AttemptID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: attempt id %q: %v", ErrInvalidEntry, e.AttemptID, err)
	}
	if e.Score < 0 || e.MaxScore < 0 || e.MaxScore > math.MaxInt32 || e.Score > e.MaxScore {
		return uuid.Nil, fmt.Errorf("%w: score %d of %d", ErrInvalidEntry, e.Score, e.MaxScore)
	}
	return id, nil
}

// ListByUser returns one page of a user's ledger entries, newest first.
func (r *SubmissionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, attempt_id::text, assessment_id, user_id, score, max_score, outcome, COALESCE(error, ''), submitted_at
		 FROM result_submissions
		 WHERE user_id = $1
		 ORDER BY submitted_at DESC, id DESC
		 LIMIT $2 OFFSET $3`, userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.LedgerEntry, error) {
		var e model.LedgerEntry
		var outcome string
		err := row.Scan(&e.ID, &e.AttemptID, &e.AssessmentID, &e.UserID, &e.Score, &e.MaxScore, &outcome, &e.Error, &e.SubmittedAt)
		e.Outcome = model.SubmissionOutcome(outcome)
		return e, err
	})
}

// CountByUser returns the number of ledger entries of a user.
func (r *SubmissionRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM result_submissions WHERE user_id = $1`, userID,
	).Scan(&n)
	return n, err
}

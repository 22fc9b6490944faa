package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edusync/edusync-portal/internal/config"
	"github.com/edusync/edusync-portal/internal/model"
	"github.com/redis/go-redis/v9"
)

// ResultFeedRepository carries result events over Redis: pub/sub for the
// live instructor feed, and a list for the ledger worker.
type ResultFeedRepository struct {
	rdb *redis.Client
}

// NewResultFeedRepository creates a new ResultFeedRepository.
func NewResultFeedRepository(rdb *redis.Client) *ResultFeedRepository {
	return &ResultFeedRepository{rdb: rdb}
}

// Publish announces a stored result to subscribers of its assessment.
func (r *ResultFeedRepository) Publish(ctx context.Context, ev model.ResultEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode result event: %w", err)
	}
	return r.rdb.Publish(ctx, config.CacheKey.ResultsChannel(ev.AssessmentID), raw).Err()
}

// Subscribe opens a subscription for one assessment. The caller closes it.
func (r *ResultFeedRepository) Subscribe(ctx context.Context, assessmentID string) *redis.PubSub {
	return r.rdb.Subscribe(ctx, config.CacheKey.ResultsChannel(assessmentID))
}

// EnqueueLedger queues an entry for the ledger worker.
func (r *ResultFeedRepository) EnqueueLedger(ctx context.Context, e model.LedgerEntry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode ledger entry: %w", err)
	}
	return r.rdb.RPush(ctx, config.WorkerKey.ResultLedgerQueue, raw).Err()
}

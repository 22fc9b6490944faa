package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/edusync/edusync-portal/internal/config"
	"github.com/edusync/edusync-portal/internal/model"
	"github.com/edusync/edusync-portal/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	LedgerBatchSize    = 50
	LedgerBatchTimeout = 2 * time.Second
	LedgerPollTimeout  = 1 * time.Second
)

// LedgerWriter persists ledger entries.
type LedgerWriter interface {
	InsertBatch(ctx context.Context, entries []model.LedgerEntry) error
	Insert(ctx context.Context, e model.LedgerEntry) error
}

// LedgerWorker drains the result ledger queue into Postgres.
type LedgerWorker struct {
	writer  LedgerWriter
	rdb     *redis.Client
	log     zerolog.Logger
	requeue func(ctx context.Context, raw []byte) error
}

func NewLedgerWorker(writer LedgerWriter, rdb *redis.Client, log zerolog.Logger) *LedgerWorker {
	w := &LedgerWorker{
		writer: writer,
		rdb:    rdb,
		log:    log.With().Str("component", "ledger_worker").Logger(),
	}
	w.requeue = func(ctx context.Context, raw []byte) error {
		return w.rdb.RPush(ctx, config.WorkerKey.ResultLedgerQueue, raw).Err()
	}
	return w
}

// ─── Worker loop with batching ──────────────────────────────────

func (w *LedgerWorker) Start(ctx context.Context) {
	w.log.Info().Msg("LedgerWorker started")

	batch := make([]model.LedgerEntry, 0, LedgerBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= LedgerBatchSize || time.Since(lastFlush) >= LedgerBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, LedgerPollTimeout, config.WorkerKey.ResultLedgerQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var e model.LedgerEntry
			if err := json.Unmarshal([]byte(item[1]), &e); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, e)
		}
	}
}

// ─── Batch insert with per-row fallback ─────────────────────────

func (w *LedgerWorker) flushSafe(ctx context.Context, batch []model.LedgerEntry) {
	if len(batch) == 0 {
		return
	}

	err := w.writer.InsertBatch(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("ledger batch persisted")
		return
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("bulk ledger insert failed, using fallback")

	for _, e := range batch {
		if err := w.writer.Insert(ctx, e); err != nil {
			if repository.IsPermanent(err) {
				w.log.Error().Err(err).Str("attempt_id", e.AttemptID).Msg("ledger entry rejected, dropped")
				continue
			}
			w.log.Error().Err(err).Str("attempt_id", e.AttemptID).Msg("ledger insert failed, requeueing")
			raw, _ := json.Marshal(e)
			if err := w.requeue(ctx, raw); err != nil {
				w.log.Error().Err(err).Str("attempt_id", e.AttemptID).Msg("requeue failed, entry dropped")
			}
		}
	}
}

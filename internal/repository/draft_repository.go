package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edusync/edusync-portal/internal/config"
	"github.com/edusync/edusync-portal/internal/model"
	"github.com/redis/go-redis/v9"
)

// DraftRepository keeps authoring drafts in Redis. A draft that is never
// submitted simply expires.
type DraftRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDraftRepository creates a new DraftRepository.
func NewDraftRepository(rdb *redis.Client, ttl time.Duration) *DraftRepository {
	return &DraftRepository{rdb: rdb, ttl: ttl}
}

// Create stores a new draft.
func (r *DraftRepository) Create(ctx context.Context, d *model.Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return r.rdb.Set(ctx, config.CacheKey.DraftKey(d.ID), raw, r.ttl).Err()
}

// Get loads a draft by id.
func (r *DraftRepository) Get(ctx context.Context, id string) (*model.Draft, error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.DraftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	var d model.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &d, nil
}

// Update applies fn to the stored draft inside a WATCH transaction. If fn
// returns an error nothing is written. Concurrent writers are retried a few
// times before ErrConcurrentUpdate. A draft held by Lock refuses updates with
// ErrLocked.
func (r *DraftRepository) Update(ctx context.Context, id string, fn func(*model.Draft) error) (*model.Draft, error) {
	key := config.CacheKey.DraftKey(id)
	lockKey := config.CacheKey.DraftSubmitLockKey(id)
	var out *model.Draft

	txf := func(tx *redis.Tx) error {
		locked, err := tx.Exists(ctx, lockKey).Result()
		if err != nil {
			return err
		}
		if locked > 0 {
			return ErrLocked
		}
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrDraftNotFound
		}
		if err != nil {
			return err
		}
		var d model.Draft
		if err := json.Unmarshal(raw, &d); err != nil {
			return fmt.Errorf("decode draft: %w", err)
		}
		if err := fn(&d); err != nil {
			return err
		}
		d.UpdatedAt = time.Now().UTC()
		next, err := json.Marshal(&d)
		if err != nil {
			return fmt.Errorf("encode draft: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, r.ttl)
			return nil
		})
		if err == nil {
			out = &d
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key, lockKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, ErrConcurrentUpdate
}

// Delete discards a draft. Deleting a missing draft is not an error.
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, config.CacheKey.DraftKey(id)).Err()
}

// Lock takes the single submission slot of a draft. It fails with ErrLocked
// while another submission holds it.
func (r *DraftRepository) Lock(ctx context.Context, id string, ttl time.Duration) error {
	ok, err := r.rdb.SetNX(ctx, config.CacheKey.DraftSubmitLockKey(id), 1, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

func (r *DraftRepository) Unlock(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, config.CacheKey.DraftSubmitLockKey(id)).Err()
}

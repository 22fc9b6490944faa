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

// AttemptRepository keeps in-progress quiz attempts in Redis.
type AttemptRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(rdb *redis.Client, ttl time.Duration) *AttemptRepository {
	return &AttemptRepository{rdb: rdb, ttl: ttl}
}

func (r *AttemptRepository) Create(ctx context.Context, a *model.AttemptRecord) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}
	return r.rdb.Set(ctx, config.CacheKey.AttemptKey(a.ID), raw, r.ttl).Err()
}

func (r *AttemptRepository) Get(ctx context.Context, id string) (*model.AttemptRecord, error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.AttemptKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	var a model.AttemptRecord
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode attempt: %w", err)
	}
	return &a, nil
}

// Update applies fn under WATCH; see DraftRepository.Update.
func (r *AttemptRepository) Update(ctx context.Context, id string, fn func(*model.AttemptRecord) error) (*model.AttemptRecord, error) {
	key := config.CacheKey.AttemptKey(id)
	var out *model.AttemptRecord

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrAttemptNotFound
		}
		if err != nil {
			return err
		}
		var a model.AttemptRecord
		if err := json.Unmarshal(raw, &a); err != nil {
			return fmt.Errorf("decode attempt: %w", err)
		}
		if err := fn(&a); err != nil {
			return err
		}
		next, err := json.Marshal(&a)
		if err != nil {
			return fmt.Errorf("encode attempt: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, redis.KeepTTL)
			return nil
		})
		if err == nil {
			out = &a
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
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

// Lock takes the single submission slot of an attempt. It fails with
// ErrLocked while another submission holds it.
func (r *AttemptRepository) Lock(ctx context.Context, id string, ttl time.Duration) error {
	ok, err := r.rdb.SetNX(ctx, config.CacheKey.AttemptSubmitLockKey(id), 1, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

func (r *AttemptRepository) Unlock(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, config.CacheKey.AttemptSubmitLockKey(id)).Err()
}

package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pkordes/trip-planner/web/internal/domain"
)

// maxTxAttempts bounds the optimistic-lock retries of Update.
const maxTxAttempts = 10

// getter is satisfied by both *redis.Client and *redis.Tx, allowing load to
// read either outside or inside a WATCH.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// redisSessionRepo stores each session as a JSON document with a sliding TTL.
type redisSessionRepo struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessionRepo constructs a SessionRepo backed by Redis.
// Keys are "{prefix}:session:{id}". Every write refreshes the TTL; a ttl of
// zero stores keys without expiry.
func NewRedisSessionRepo(client *redis.Client, prefix string, ttl time.Duration) SessionRepo {
	return &redisSessionRepo{client: client, prefix: prefix, ttl: ttl}
}

// Get returns the stored state of session id, or a fresh state when the key
// does not exist.
func (r *redisSessionRepo) Get(ctx context.Context, id string) (domain.ViewState, error) {
	state, err := r.load(ctx, r.client, r.key(id))
	if err != nil {
		return domain.ViewState{}, fmt.Errorf("repo.SessionRepo.Get: %w", err)
	}
	return state, nil
}

// Update reads, transforms and writes the session inside WATCH/MULTI.
// A concurrent write to the same key aborts the transaction and fn is
// re-applied to the fresh state.
func (r *redisSessionRepo) Update(ctx context.Context, id string, fn UpdateFunc) (domain.ViewState, error) {
	key := r.key(id)

	var next domain.ViewState
	txf := func(tx *redis.Tx) error {
		current, err := r.load(ctx, tx, key)
		if err != nil {
			return err
		}
		next = fn(current)

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return next, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return domain.ViewState{}, fmt.Errorf("repo.SessionRepo.Update: %w", err)
	}
	return domain.ViewState{}, fmt.Errorf("repo.SessionRepo.Update: %w after %d attempts", redis.TxFailedErr, maxTxAttempts)
}

// load decodes the JSON document at key.
func (r *redisSessionRepo) load(ctx context.Context, g getter, key string) (domain.ViewState, error) {
	data, err := g.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.NewViewState(), nil
		}
		return domain.ViewState{}, err
	}

	var state domain.ViewState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.ViewState{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return state, nil
}

// key builds "{prefix}:session:{id}", skipping an empty prefix.
func (r *redisSessionRepo) key(id string) string {
	var sb strings.Builder
	if r.prefix != "" {
		sb.WriteString(r.prefix)
		sb.WriteString(":")
	}
	sb.WriteString("session:")
	sb.WriteString(id)
	return sb.String()
}

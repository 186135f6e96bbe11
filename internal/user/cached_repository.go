package user

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const cacheKeyPrefix = "users:"

// CacheClient is the subset of *redis.Client used by the cached repository.
type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type cachedRepository struct {
	next   Repository
	client CacheClient
	ttl    time.Duration
}

// NewCachedRepository caches FindByID results of next in Redis. Writes and
// deletes evict the entry. Redis failures are logged and never fail a call.
func NewCachedRepository(next Repository, client CacheClient, ttl time.Duration) Repository {
	return &cachedRepository{next: next, client: client, ttl: ttl}
}

func (r *cachedRepository) Create(ctx context.Context, u *User) (*User, error) {
	return r.next.Create(ctx, u)
}

func (r *cachedRepository) Update(ctx context.Context, id uuid.UUID, u *User) (*User, error) {
	defer r.evict(ctx, id)
	return r.next.Update(ctx, id, u)
}

func (r *cachedRepository) Replace(ctx context.Context, id uuid.UUID, u *User) (*User, error) {
	defer r.evict(ctx, id)
	return r.next.Replace(ctx, id, u)
}

func (r *cachedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.evict(ctx, id)
	return r.next.Delete(ctx, id)
}

func (r *cachedRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	key := cacheKey(id)

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached User
		decodeErr := json.Unmarshal(raw, &cached)
		if decodeErr == nil {
			return &cached, nil
		}
		log.Warn().Err(decodeErr).Str("key", key).Msg("Dropping undecodable cached user")
		r.evict(ctx, id)
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("key", key).Msg("Failed to read user from cache")
	}

	found, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(found)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to encode user for cache")
		return found, nil
	}
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to write user to cache")
	}

	return found, nil
}

func (r *cachedRepository) FindByBirthDateRange(ctx context.Context, from, to time.Time) ([]User, error) {
	return r.next.FindByBirthDateRange(ctx, from, to)
}

func (r *cachedRepository) evict(ctx context.Context, id uuid.UUID) {
	if err := r.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		log.Warn().Err(err).Stringer("user_id", id).Msg("Failed to evict user from cache")
	}
}

func cacheKey(id uuid.UUID) string {
	return cacheKeyPrefix + id.String()
}

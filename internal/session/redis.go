package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/felixgeelhaar/formrunner/internal/errors"
)

// DefaultTTL is the session lifetime used when none is configured
const DefaultTTL = 20 * time.Hour

// RedisStore keeps sessions as JSON strings under session:{id}, refreshing the
// TTL on every save.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// OpenRedisStore connects to the redis URL and checks it answers
func OpenRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apperrors.NewSessionBackendError(BackendRedis, err)
	}
	store := NewRedisStore(redis.NewClient(opts), ttl)
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Data, error) {
	v, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewData(), nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeSessionLoad, "failed to load session "+id, err)
	}
	return decode(id, v)
}

func (s *RedisStore) Save(ctx context.Context, id string, data *Data) error {
	b, err := encode(id, data)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(id), b, s.ttl).Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSessionSave, "failed to save session "+id, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSessionSave, "failed to delete session "+id, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return apperrors.NewSessionBackendError(BackendRedis, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func redisKey(id string) string {
	return "session:" + id
}

package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const keyPrefix = "idempotency:checkout:"

// RedisStore keeps records as JSON values with a TTL so replays survive API
// restarts and are shared between instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

func NewRedisStore(opts RedisOptions, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
			PoolSize: opts.PoolSize,
		}),
		ttl: ttl,
	}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Reserve(ctx context.Context, key string) (*Record, error) {
	data, err := json.Marshal(Record{Key: key, CreatedAt: time.Now()})
	if err != nil {
		return nil, err
	}

	ok, err := s.client.SetNX(ctx, keyPrefix+key, data, reserveTTL(s.ttl)).Result()
	if err != nil {
		return nil, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if ok {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		// Expired between SETNX and GET; try once more.
		return s.Reserve(ctx, key)
	}
	if err != nil {
		return nil, fmt.Errorf("load idempotency key: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	if !rec.Completed() {
		return nil, ErrInFlight
	}
	return &rec, nil
}

func (s *RedisStore) Complete(ctx context.Context, key string, orderID uuid.UUID) error {
	data, err := json.Marshal(Record{Key: key, OrderID: orderID, CreatedAt: time.Now()})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+key, data, s.ttl).Err()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

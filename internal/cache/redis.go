package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/officeseats/config"
	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseLock deletes the lock only if it still carries our token.
var releaseLock = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

const lockRetryInterval = 25 * time.Millisecond

type RedisCache struct {
	client   *redis.Client
	seatsTTL time.Duration
	lockTTL  time.Duration
	lockWait time.Duration
}

func NewRedisCache(cfg config.RedisConfig, booking config.BookingConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return newRedisCache(client, booking.SeatsCacheTTL(), booking.LockTTL(), booking.LockWait())
}

func newRedisCache(client *redis.Client, seatsTTL, lockTTL, lockWait time.Duration) *RedisCache {
	return &RedisCache{
		client:   client,
		seatsTTL: seatsTTL,
		lockTTL:  lockTTL,
		lockWait: lockWait,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetSeats returns nil, nil on a cache miss.
func (c *RedisCache) GetSeats(ctx context.Context) ([]domain.Seat, error) {
	data, err := c.client.Get(ctx, seatsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var seats []domain.Seat
	if err := json.Unmarshal(data, &seats); err != nil {
		return nil, err
	}
	return seats, nil
}

func (c *RedisCache) SetSeats(ctx context.Context, seats []domain.Seat) error {
	payload, err := json.Marshal(seats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, seatsKey(), payload, c.seatsTTL).Err()
}

func (c *RedisCache) InvalidateSeats(ctx context.Context) error {
	return c.client.Del(ctx, seatsKey()).Err()
}

// AcquireLock makes a single SET NX attempt and returns the token to release with.
func (c *RedisCache) AcquireLock(ctx context.Context, key string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, lockKey(key), token, c.lockTTL).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (c *RedisCache) ReleaseLock(ctx context.Context, key, token string) error {
	return releaseLock.Run(ctx, c.client, []string{lockKey(key)}, token).Err()
}

// Lock retries AcquireLock until it succeeds, ctx is done or the configured wait elapses.
// The lock expires on its own after the lock TTL if the holder never releases it.
func (c *RedisCache) Lock(ctx context.Context, key string) (func(), error) {
	if c.lockWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.lockWait)
		defer cancel()
	}

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		token, ok, err := c.AcquireLock(ctx, key)
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return func() {
				_ = c.ReleaseLock(context.Background(), key, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", domain.ErrLockTimeout, key)
		case <-ticker.C:
		}
	}
}

func seatsKey() string {
	return "cache:seats"
}

func lockKey(key string) string {
	return "lock:" + key
}

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ocpp-platform/ocpp-runtime/internal/config"
)

// RedisStorage backs ConnectionStorage with a Redis string per charge
// point, keyed under a fleet-wide prefix so the affinity registry can
// share a Redis instance with other tenants without colliding.
type RedisStorage struct {
	Client *redis.Client
	Prefix string
}

// NewRedisStorage dials Redis and verifies the connection with a PING
// before returning, so a misconfigured address fails fast at startup
// rather than on the first charge point connect.
func NewRedisStorage(cfg config.RedisConfig) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	return &RedisStorage{Client: client, Prefix: "ocpp:cp-affinity:"}, nil
}

func (r *RedisStorage) SetConnection(ctx context.Context, chargePointID string, instanceID string, ttl time.Duration) error {
	key := fmt.Sprintf("%s%s", r.Prefix, chargePointID)
	return r.Client.Set(ctx, key, instanceID, ttl).Err()
}

// RefreshConnection extends the key's TTL with EXPIRE instead of
// rewriting the value, so a burst of heartbeats from many charge
// points doesn't cost a SET's worth of network and replication work
// per beat. If the entry already expired it is recreated with
// instanceID so routing keeps working.
func (r *RedisStorage) RefreshConnection(ctx context.Context, chargePointID string, instanceID string, ttl time.Duration) error {
	key := fmt.Sprintf("%s%s", r.Prefix, chargePointID)
	ok, err := r.Client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return r.Client.Set(ctx, key, instanceID, ttl).Err()
	}
	return nil
}

func (r *RedisStorage) GetConnection(ctx context.Context, chargePointID string) (string, error) {
	key := fmt.Sprintf("%s%s", r.Prefix, chargePointID)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", redis.Nil
	}
	return val, err
}

func (r *RedisStorage) DeleteConnection(ctx context.Context, chargePointID string) error {
	key := fmt.Sprintf("%s%s", r.Prefix, chargePointID)
	return r.Client.Del(ctx, key).Err()
}

func (r *RedisStorage) Close() error {
	return r.Client.Close()
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"seatpao/internal/models"

	"github.com/redis/go-redis/v9"
)

const confirmedKeyPrefix = "payments:confirmed:"

type Config struct {
	Addr         string
	Password     string
	DB           int
	ConfirmedTTL time.Duration
}

// ValkeyClient remembers settled checkout sessions so repeated confirmations
// skip the gateway round trip. Works against Valkey or Redis.
type ValkeyClient struct {
	client       redis.Cmdable
	confirmedTTL time.Duration
}

func NewValkeyClient(ctx context.Context, cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return newValkeyClient(rdb, cfg.ConfirmedTTL), nil
}

func newValkeyClient(client redis.Cmdable, ttl time.Duration) *ValkeyClient {
	return &ValkeyClient{client: client, confirmedTTL: ttl}
}

func confirmedKey(sessionID string) string {
	return confirmedKeyPrefix + sessionID
}

// Confirmed returns nil when the session has not been seen
func (v *ValkeyClient) Confirmed(ctx context.Context, sessionID string) (*models.ConfirmedSession, error) {
	raw, err := v.client.Get(ctx, confirmedKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}

	var confirmed models.ConfirmedSession
	if err := json.Unmarshal([]byte(raw), &confirmed); err != nil {
		return nil, fmt.Errorf("invalid confirmation in cache: %w", err)
	}
	return &confirmed, nil
}

func (v *ValkeyClient) MarkConfirmed(ctx context.Context, sessionID string, confirmed models.ConfirmedSession) error {
	data, err := json.Marshal(confirmed)
	if err != nil {
		return fmt.Errorf("failed to encode confirmation: %w", err)
	}

	if err := v.client.Set(ctx, confirmedKey(sessionID), string(data), v.confirmedTTL).Err(); err != nil {
		return fmt.Errorf("cache write error: %w", err)
	}
	return nil
}

func (v *ValkeyClient) Ping(ctx context.Context) error {
	return v.client.Ping(ctx).Err()
}

func (v *ValkeyClient) Close() error {
	if closer, ok := v.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore maps a shipper's Idempotency-Key to the order it created.
// Key format: dispatch:idem:<shipper_id>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. A non-positive ttl falls back to 24h.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Lookup returns the order id recorded for the key, if it has not expired.
func (s *IdempotencyStore) Lookup(ctx context.Context, shipperID, key string) (string, bool, error) {
	id, err := s.client.Get(ctx, idempotencyKey(shipperID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, true, nil
}

// Remember records orderID for the key. The first writer wins; later calls
// for the same key leave the stored id untouched.
func (s *IdempotencyStore) Remember(ctx context.Context, shipperID, key, orderID string) error {
	if err := s.client.SetNX(ctx, idempotencyKey(shipperID, key), orderID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func idempotencyKey(shipperID, key string) string {
	return fmt.Sprintf("dispatch:idem:%s:%s", shipperID, key)
}

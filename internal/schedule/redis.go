package schedule

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a SlotStore backed by one Redis set per (provider, date).
//
// SADD reports how many members were actually added, so a single round trip
// both checks and claims the slot; Redis serializes commands per key, which
// gives the same per-provider atomicity the in-memory store gets from its
// mutex. SREM makes Release naturally idempotent.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a Redis-backed slot store.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("schedule: redis client required")
	}
	return &RedisStore{client: client, keyPrefix: "slots"}
}

var _ SlotStore = (*RedisStore)(nil)

func (s *RedisStore) key(providerID, date string) string {
	return fmt.Sprintf("%s:%s:%s", s.keyPrefix, providerID, date)
}

// Claim atomically reserves (date, slot) for the provider.
func (s *RedisStore) Claim(ctx context.Context, providerID, date, slot string) error {
	added, err := s.client.SAdd(ctx, s.key(providerID, date), slot).Result()
	if err != nil {
		return fmt.Errorf("schedule: claim slot: %w", err)
	}
	if added == 0 {
		return ErrSlotTaken
	}
	return nil
}

// Release frees (date, slot) for the provider. Releasing a free slot is a no-op.
func (s *RedisStore) Release(ctx context.Context, providerID, date, slot string) error {
	if err := s.client.SRem(ctx, s.key(providerID, date), slot).Err(); err != nil {
		return fmt.Errorf("schedule: release slot: %w", err)
	}
	return nil
}

// Booked returns the provider's booked slots grouped by date.
func (s *RedisStore) Booked(ctx context.Context, providerID string) (map[string][]string, error) {
	pattern := s.key(providerID, "*")
	out := make(map[string][]string)

	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		date := key[strings.LastIndex(key, ":")+1:]
		slots, err := s.client.SMembers(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("schedule: read booked slots: %w", err)
		}
		if len(slots) == 0 {
			continue
		}
		sort.Strings(slots)
		out[date] = slots
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("schedule: scan booked slots: %w", err)
	}
	return out, nil
}

package idempotency

import (
	"context"
	"time"

	"github.com/ateneai/wa-relay/infrastructure/valkey"
	"github.com/sirupsen/logrus"
)

// ValkeyStore backs the dedupe window with Valkey's native TTL support, so
// the window survives process restarts and is shared between replicas.
// Eviction is delegated to the server's own memory policy.
type ValkeyStore struct {
	client *valkey.Client
	prefix string
}

// NewValkeyStore creates a Valkey-backed Store. The client is shared and
// stays owned by the caller.
func NewValkeyStore(client *valkey.Client) *ValkeyStore {
	return &ValkeyStore{
		client: client,
		prefix: client.Key("dedupe") + ":",
	}
}

func (s *ValkeyStore) fullKey(key string) string {
	return s.prefix + key
}

// expirySeconds converts a dedupe window into the whole seconds SET EX
// expects. Valkey rejects EX 0, so sub-second windows round up to one
// second, and non-positive windows fall back to the default.
func expirySeconds(ttl time.Duration) int64 {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	seconds := int64(ttl.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

// IsDuplicate fails open: if Valkey is unreachable the message is treated
// as new, preferring a rare duplicate forward over dropping traffic.
func (s *ValkeyStore) IsDuplicate(ctx context.Context, key string) bool {
	if key == "" {
		return false
	}

	inner := s.client.Inner()
	n, err := inner.Do(ctx, inner.B().Exists().Key(s.fullKey(key)).Build()).AsInt64()
	if err != nil {
		logrus.WithError(err).Warn("[DEDUPE] Valkey EXISTS failed, treating as new message")
		return false
	}
	return n > 0
}

func (s *ValkeyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) error {
	if key == "" {
		return nil
	}
	inner := s.client.Inner()
	return inner.Do(ctx, inner.B().
		Set().Key(s.fullKey(key)).Value("1").
		ExSeconds(expirySeconds(ttl)).
		Build()).Error()
}

// Len is not cheaply available without a SCAN, so the Valkey store reports
// unknown.
func (s *ValkeyStore) Len() int {
	return -1
}

// Close is a no-op; the shared client is closed by its owner.
func (s *ValkeyStore) Close() {}

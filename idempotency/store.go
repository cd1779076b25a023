package idempotency

import (
	"context"
	"time"
)

// DefaultTTL is the window during which a repeated message id is suppressed.
const DefaultTTL = time.Hour

// Store tracks which message ids have already been forwarded. Presence of a
// key means "do not forward again before it expires"; absence does NOT mean
// the message was never seen, because capacity eviction may drop old
// entries. Duplicate delivery is tolerable downstream, unbounded memory
// growth is not.
type Store interface {
	// IsDuplicate reports whether a non-expired record exists for key.
	IsDuplicate(ctx context.Context, key string) bool

	// MarkProcessed records key as forwarded for the given TTL,
	// overwriting any existing record.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) error

	// Len returns the number of live records, or -1 when the backend
	// cannot report it cheaply.
	Len() int

	Close()
}

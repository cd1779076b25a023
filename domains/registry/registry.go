package registry

import "context"

// WebhookTarget is one named downstream endpoint. Keys are free-form slugs;
// the reserved key "default" is the fallback when no tenant-specific target
// matches.
type WebhookTarget struct {
	Key     string `json:"key"`
	URL     string `json:"url"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// UpdateWebhookRequest carries a partial update. Nil fields are left
// untouched.
type UpdateWebhookRequest struct {
	URL     *string `json:"url"`
	Name    *string `json:"name"`
	Enabled *bool   `json:"enabled"`
}

// Repository stores webhook targets. Get returns (nil, nil) for an unknown
// key so callers can distinguish absence from storage failure.
type Repository interface {
	Get(ctx context.Context, key string) (*WebhookTarget, error)
	Put(ctx context.Context, target WebhookTarget) error
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context) ([]WebhookTarget, error)
}

type IRegistryUsecase interface {
	// Resolve tries each candidate key in order and returns the first
	// enabled target, falling back to the enabled "default" target, or
	// (nil, nil) when nothing is configured.
	Resolve(ctx context.Context, keys ...string) (*WebhookTarget, error)
	Add(ctx context.Context, key, url, name string) (WebhookTarget, error)
	Update(ctx context.Context, key string, request UpdateWebhookRequest) (*WebhookTarget, error)
	Remove(ctx context.Context, key string) (bool, error)
	List(ctx context.Context) ([]WebhookTarget, error)
}

// DefaultKey is the registry fallback slug.
const DefaultKey = "default"

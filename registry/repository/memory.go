package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/ateneai/wa-relay/domains/registry"
)

// MemoryRepository keeps webhook targets in a map guarded by a RWMutex.
// It is the default backend; targets seeded from the environment live here
// alongside any added at runtime through the admin API.
type MemoryRepository struct {
	mu      sync.RWMutex
	targets map[string]registry.WebhookTarget
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		targets: make(map[string]registry.WebhookTarget),
	}
}

func (r *MemoryRepository) Get(_ context.Context, key string) (*registry.WebhookTarget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	target, ok := r.targets[key]
	if !ok {
		return nil, nil
	}
	return &target, nil
}

func (r *MemoryRepository) Put(_ context.Context, target registry.WebhookTarget) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.targets[target.Key] = target
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.targets[key]; !ok {
		return false, nil
	}
	delete(r.targets, key)
	return true, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]registry.WebhookTarget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	targets := make([]registry.WebhookTarget, 0, len(r.targets))
	for _, target := range r.targets {
		targets = append(targets, target)
	}
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].Key < targets[j].Key
	})
	return targets, nil
}

package usecase

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ateneai/wa-relay/core/config"
	domainRegistry "github.com/ateneai/wa-relay/domains/registry"
	pkgError "github.com/ateneai/wa-relay/pkg/error"
)

type serviceRegistry struct {
	repo domainRegistry.Repository
}

func NewRegistryService(repo domainRegistry.Repository) domainRegistry.IRegistryUsecase {
	return &serviceRegistry{repo: repo}
}

// Seed loads the startup webhook table into the repository without touching
// entries added over the API. Existing keys win: a restart must not clobber
// an admin's runtime edit when the registry is persistent.
func Seed(ctx context.Context, repo domainRegistry.Repository, entries []config.WebhookEntry) error {
	for _, entry := range entries {
		existing, err := repo.Get(ctx, entry.Key)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := repo.Put(ctx, domainRegistry.WebhookTarget{
			Key:     entry.Key,
			URL:     entry.URL,
			Name:    entry.Name,
			Enabled: entry.Enabled,
		}); err != nil {
			return err
		}
		logrus.Infof("[REGISTRY] Seeded webhook %q (%s)", entry.Key, entry.Name)
	}
	return nil
}

func (s *serviceRegistry) Resolve(ctx context.Context, keys ...string) (*domainRegistry.WebhookTarget, error) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		target, err := s.repo.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if target != nil && target.Enabled {
			return target, nil
		}
	}

	fallback, err := s.repo.Get(ctx, domainRegistry.DefaultKey)
	if err != nil {
		return nil, err
	}
	if fallback != nil && fallback.Enabled {
		return fallback, nil
	}
	return nil, nil
}

func (s *serviceRegistry) Add(ctx context.Context, key, url, name string) (domainRegistry.WebhookTarget, error) {
	key = strings.TrimSpace(key)
	url = strings.TrimSpace(url)
	if key == "" || url == "" {
		return domainRegistry.WebhookTarget{}, pkgError.ValidationError("key and url are required")
	}
	if name == "" {
		name = key
	}

	target := domainRegistry.WebhookTarget{
		Key:     key,
		URL:     url,
		Name:    name,
		Enabled: true,
	}
	if err := s.repo.Put(ctx, target); err != nil {
		return domainRegistry.WebhookTarget{}, err
	}

	logrus.Infof("[REGISTRY] Webhook %q registered", key)
	return target, nil
}

func (s *serviceRegistry) Update(ctx context.Context, key string, request domainRegistry.UpdateWebhookRequest) (*domainRegistry.WebhookTarget, error) {
	target, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, nil
	}

	if request.URL != nil {
		target.URL = strings.TrimSpace(*request.URL)
	}
	if request.Name != nil {
		target.Name = *request.Name
	}
	if request.Enabled != nil {
		target.Enabled = *request.Enabled
	}

	if err := s.repo.Put(ctx, *target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *serviceRegistry) Remove(ctx context.Context, key string) (bool, error) {
	removed, err := s.repo.Delete(ctx, key)
	if err != nil {
		return false, err
	}
	if removed {
		logrus.Infof("[REGISTRY] Webhook %q removed", key)
	}
	return removed, nil
}

// List returns the configured targets with their URLs masked for the admin
// surface, which may be read by operators without access to the secrets.
func (s *serviceRegistry) List(ctx context.Context) ([]domainRegistry.WebhookTarget, error) {
	targets, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	masked := make([]domainRegistry.WebhookTarget, len(targets))
	for i, target := range targets {
		target.URL = maskURL(target.URL)
		masked[i] = target
	}
	return masked, nil
}

func maskURL(url string) string {
	if len(url) <= 20 {
		return url
	}
	return url[:20] + "..."
}

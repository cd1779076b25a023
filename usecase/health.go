package usecase

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	domainHealth "github.com/ateneai/wa-relay/domains/health"
	domainRegistry "github.com/ateneai/wa-relay/domains/registry"
	"github.com/ateneai/wa-relay/idempotency"
	"github.com/ateneai/wa-relay/pkg/msgworker"
	"github.com/ateneai/wa-relay/workspace"
)

// AccountProbe checks provider connectivity for the status endpoint.
type AccountProbe func(ctx context.Context) (name, status string, err error)

type serviceHealth struct {
	startedAt     time.Time
	probe         AccountProbe
	registry      domainRegistry.IRegistryUsecase
	workspaces    *workspace.Resolver
	dedupe        idempotency.Store
	dedupeBackend string
	pool          *msgworker.Pool
}

func NewHealthService(
	probe AccountProbe,
	registry domainRegistry.IRegistryUsecase,
	workspaces *workspace.Resolver,
	dedupe idempotency.Store,
	dedupeBackend string,
	pool *msgworker.Pool,
) domainHealth.IHealthUsecase {
	return &serviceHealth{
		startedAt:     time.Now(),
		probe:         probe,
		registry:      registry,
		workspaces:    workspaces,
		dedupe:        dedupe,
		dedupeBackend: dedupeBackend,
		pool:          pool,
	}
}

func (s *serviceHealth) Status(ctx context.Context) domainHealth.ServiceStatus {
	status := domainHealth.ServiceStatus{
		Status: "active",
		Uptime: humanize.RelTime(s.startedAt, time.Now(), "", ""),
		Dedupe: domainHealth.DedupeStatus{
			Backend: s.dedupeBackend,
			Entries: s.dedupe.Len(),
		},
	}

	if s.probe != nil {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		name, accountStatus, err := s.probe(probeCtx)
		if err != nil {
			// Status stays readable when the provider is down.
			logrus.WithError(err).Warn("[HEALTH] Provider probe failed")
			status.Provider = domainHealth.ProviderStatus{Error: err.Error()}
		} else {
			status.Provider = domainHealth.ProviderStatus{
				Connected:    true,
				AccountName:  name,
				AccountState: accountStatus,
			}
		}
	}

	if targets, err := s.registry.List(ctx); err == nil {
		for _, target := range targets {
			status.Webhooks = append(status.Webhooks, domainHealth.WebhookStatus{
				Key:     target.Key,
				Name:    target.Name,
				URL:     target.URL,
				Enabled: target.Enabled,
			})
		}
	}

	for _, ws := range s.workspaces.List() {
		status.Workspaces = append(status.Workspaces, domainHealth.WorkspaceStatus{
			ID:              ws.ID,
			Name:            ws.DisplayName,
			ReceivingNumber: ws.ReceivingNumber,
		})
	}

	if s.pool != nil {
		stats := s.pool.GetStats()
		status.Pool = &stats
	}

	return status
}

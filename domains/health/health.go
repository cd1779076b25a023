package health

import (
	"context"

	"github.com/ateneai/wa-relay/pkg/msgworker"
)

type WebhookStatus struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}

type WorkspaceStatus struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ReceivingNumber string `json:"receiving_number"`
}

type ProviderStatus struct {
	Connected    bool   `json:"connected"`
	AccountName  string `json:"account_name,omitempty"`
	AccountState string `json:"account_status,omitempty"`
	Error        string `json:"error,omitempty"`
}

type DedupeStatus struct {
	Backend string `json:"backend"`
	Entries int    `json:"entries"`
}

type ServiceStatus struct {
	Status     string               `json:"status"`
	Uptime     string               `json:"uptime"`
	Provider   ProviderStatus       `json:"provider"`
	Webhooks   []WebhookStatus      `json:"webhooks"`
	Workspaces []WorkspaceStatus    `json:"workspaces"`
	Dedupe     DedupeStatus         `json:"dedupe"`
	Pool       *msgworker.PoolStats `json:"dispatch_pool,omitempty"`
}

type IHealthUsecase interface {
	Status(ctx context.Context) ServiceStatus
}

package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ateneai/wa-relay/domains/dispatch"
	domainRegistry "github.com/ateneai/wa-relay/domains/registry"
	"github.com/ateneai/wa-relay/idempotency"
	"github.com/ateneai/wa-relay/workspace"
)

type serviceDispatch struct {
	workspaces *workspace.Resolver
	registry   domainRegistry.IRegistryUsecase
	forwarder  dispatch.Forwarder
	dedupe     idempotency.Store
	dedupeTTL  time.Duration
}

func NewDispatchService(
	workspaces *workspace.Resolver,
	registry domainRegistry.IRegistryUsecase,
	forwarder dispatch.Forwarder,
	dedupe idempotency.Store,
	dedupeTTL time.Duration,
) dispatch.IDispatchUsecase {
	if dedupeTTL <= 0 {
		dedupeTTL = idempotency.DefaultTTL
	}
	return &serviceDispatch{
		workspaces: workspaces,
		registry:   registry,
		forwarder:  forwarder,
		dedupe:     dedupe,
		dedupeTTL:  dedupeTTL,
	}
}

// Handle relays one inbound message. It never returns an error: every
// failure is folded into the Result so one message's broken delivery cannot
// poison the provider ack or a sibling message in the same callback.
func (s *serviceDispatch) Handle(ctx context.Context, msg dispatch.InboundMessage) dispatch.Result {
	log := logrus.WithFields(logrus.Fields{
		"message_id": msg.MessageID,
		"from":       msg.From,
		"to":         msg.To,
	})

	if msg.MessageID != "" && s.dedupe.IsDuplicate(ctx, msg.MessageID) {
		log.Info("[DISPATCH] Duplicate message, skipping")
		return dispatch.Result{Skipped: true, Reason: dispatch.ReasonAlreadyProcessed}
	}

	ws := s.workspaces.Resolve(msg.To)
	log = log.WithField("workspace", ws.ID)

	target, err := s.registry.Resolve(ctx, ws.ID, msg.To)
	if err != nil {
		log.WithError(err).Error("[DISPATCH] Webhook lookup failed")
		return dispatch.Result{Error: err.Error(), WorkspaceID: ws.ID}
	}
	if target == nil {
		log.Warn("[DISPATCH] No webhook configured, message dropped")
		return dispatch.Result{Error: dispatch.ErrNoWebhookConfigured, WorkspaceID: ws.ID}
	}

	envelope := dispatch.Envelope{
		PhoneNumber: msg.From,
		Message:     msg,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		WebhookName: target.Name,
		Workspace: dispatch.WorkspaceInfo{
			WorkspaceID:   ws.ID,
			WorkspaceName: ws.DisplayName,
		},
		Source: dispatch.Source,
	}

	if err := s.forwarder.Forward(ctx, target.URL, envelope); err != nil {
		// Not marked processed: the provider's redelivery gets a clean
		// second pass at this message id.
		log.WithError(err).Errorf("[DISPATCH] Forward to %q failed", target.Name)
		return dispatch.Result{
			Error:       err.Error(),
			WebhookName: target.Name,
			WorkspaceID: ws.ID,
		}
	}

	if msg.MessageID != "" {
		if err := s.dedupe.MarkProcessed(ctx, msg.MessageID, s.dedupeTTL); err != nil {
			log.WithError(err).Warn("[DISPATCH] Could not record processed message id")
		}
	}

	log.Infof("[DISPATCH] Forwarded to %q", target.Name)
	return dispatch.Result{
		Forwarded:   true,
		WebhookName: target.Name,
		WorkspaceID: ws.ID,
	}
}

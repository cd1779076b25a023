package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ateneai/wa-relay/domains/send"
	"github.com/ateneai/wa-relay/idempotency"
	pkgError "github.com/ateneai/wa-relay/pkg/error"
	"github.com/ateneai/wa-relay/pkg/phone"
	"github.com/ateneai/wa-relay/validations"
	"github.com/ateneai/wa-relay/workspace"
)

// SenderDefaults are the process-wide fallbacks used when neither the
// request nor the workspace carries a sender identity.
type SenderDefaults struct {
	PoolSID string
	Number  string
}

type serviceSend struct {
	provider   send.Provider
	workspaces *workspace.Resolver
	dedupe     idempotency.Store
	dedupeTTL  time.Duration
	restrict   bool
	defaults   SenderDefaults
}

func NewSendService(
	provider send.Provider,
	workspaces *workspace.Resolver,
	dedupe idempotency.Store,
	dedupeTTL time.Duration,
	restrict bool,
	defaults SenderDefaults,
) send.ISendUsecase {
	if dedupeTTL <= 0 {
		dedupeTTL = idempotency.DefaultTTL
	}
	return &serviceSend{
		provider:   provider,
		workspaces: workspaces,
		dedupe:     dedupe,
		dedupeTTL:  dedupeTTL,
		restrict:   restrict,
		defaults:   defaults,
	}
}

func (s *serviceSend) SendText(ctx context.Context, request send.TextRequest) (send.Response, error) {
	if err := validations.ValidateSendText(request); err != nil {
		return send.Response{}, err
	}
	return s.deliver(ctx, request.WorkspaceID, request.MessageID, request.SenderOverride,
		func(ctx context.Context, sender send.SenderParams) (send.ProviderResponse, error) {
			return s.provider.SendText(ctx, phone.NormalizeE164(request.To), request.Text, sender)
		})
}

func (s *serviceSend) SendMedia(ctx context.Context, request send.MediaRequest) (send.Response, error) {
	if err := validations.ValidateSendMedia(request); err != nil {
		return send.Response{}, err
	}
	return s.deliver(ctx, request.WorkspaceID, request.MessageID, request.SenderOverride,
		func(ctx context.Context, sender send.SenderParams) (send.ProviderResponse, error) {
			return s.provider.SendMedia(ctx, phone.NormalizeE164(request.To), request.MediaURL, request.Caption, sender)
		})
}

func (s *serviceSend) SendLocation(ctx context.Context, request send.LocationRequest) (send.Response, error) {
	if err := validations.ValidateSendLocation(request); err != nil {
		return send.Response{}, err
	}

	// WhatsApp over this provider has no native location type; degrade to
	// a maps link the way every downstream client renders.
	body := fmt.Sprintf("https://maps.google.com/?q=%f,%f", request.Latitude, request.Longitude)
	if request.Name != "" {
		body = request.Name + "\n" + body
	}
	return s.deliver(ctx, request.WorkspaceID, request.MessageID, "",
		func(ctx context.Context, sender send.SenderParams) (send.ProviderResponse, error) {
			return s.provider.SendText(ctx, phone.NormalizeE164(request.To), body, sender)
		})
}

func (s *serviceSend) deliver(
	ctx context.Context,
	workspaceID, messageID, senderOverride string,
	call func(context.Context, send.SenderParams) (send.ProviderResponse, error),
) (send.Response, error) {
	if s.restrict && workspaceID != "" && !s.workspaces.Enrolled(workspaceID) {
		return send.Response{}, pkgError.ForbiddenError(
			fmt.Sprintf("workspace %q is not enabled for sending", workspaceID))
	}

	dedupeKey := ""
	if messageID != "" {
		dedupeKey = "out:" + messageID
		if s.dedupe.IsDuplicate(ctx, dedupeKey) {
			logrus.WithField("message_id", messageID).Info("[SEND] Duplicate outbound message, ignored")
			return send.Response{
				Status:      "duplicate_ignored",
				Duplicate:   true,
				WorkspaceID: workspaceID,
				MessageID:   messageID,
			}, nil
		}
	}

	sender := s.resolveSenderIdentity(workspaceID, senderOverride)
	resp, err := call(ctx, sender)
	if err != nil {
		return send.Response{}, err
	}

	if dedupeKey != "" {
		if err := s.dedupe.MarkProcessed(ctx, dedupeKey, s.dedupeTTL); err != nil {
			logrus.WithError(err).Warn("[SEND] Could not record outbound message id")
		}
	}

	return send.Response{
		Status:      resp.Status,
		ProviderSID: resp.SID,
		WorkspaceID: workspaceID,
		MessageID:   messageID,
	}, nil
}

// resolveSenderIdentity picks the outbound identity in strict priority
// order: an explicit per-request number always wins and always bypasses
// pools, then the workspace pool, then the workspace number, then the
// process-wide pool, then the process-wide number.
func (s *serviceSend) resolveSenderIdentity(workspaceID, senderOverride string) send.SenderParams {
	if senderOverride != "" {
		return send.SenderParams{FromNumber: phone.NormalizeE164(senderOverride)}
	}

	if workspaceID != "" {
		if ws, ok := s.workspaces.Get(workspaceID); ok {
			if ws.OutboundSenderPoolID != "" {
				return send.SenderParams{MessagingServiceSID: ws.OutboundSenderPoolID}
			}
			if ws.SenderOverrideNumber != "" {
				return send.SenderParams{FromNumber: ws.SenderOverrideNumber}
			}
			if ws.ReceivingNumber != "" {
				return send.SenderParams{FromNumber: ws.ReceivingNumber}
			}
		}
	}

	if s.defaults.PoolSID != "" {
		return send.SenderParams{MessagingServiceSID: s.defaults.PoolSID}
	}
	return send.SenderParams{FromNumber: s.defaults.Number}
}

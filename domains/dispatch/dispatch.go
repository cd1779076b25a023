package dispatch

import "context"

type MessageType string

const (
	TypeText     MessageType = "text"
	TypeImage    MessageType = "image"
	TypeVideo    MessageType = "video"
	TypeAudio    MessageType = "audio"
	TypeDocument MessageType = "document"
	TypeMedia    MessageType = "media"
)

// InboundMessage is one message extracted from a provider callback. The
// boundary parser strips transport scheme prefixes from From/To before the
// message reaches the dispatcher.
type InboundMessage struct {
	From      string      `json:"from"`
	To        string      `json:"to"`
	Body      string      `json:"body"`
	Type      MessageType `json:"type"`
	MessageID string      `json:"messageId"`
	Timestamp string      `json:"timestamp"`
	MediaURL  string      `json:"mediaUrl,omitempty"`
}

// Result reports the outcome of dispatching one inbound message. Failures
// are carried here rather than as errors: one tenant's broken webhook must
// not affect the rest of the batch, and retry belongs to the provider's own
// redelivery of the callback.
type Result struct {
	Forwarded   bool   `json:"forwarded"`
	Skipped     bool   `json:"skipped,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Error       string `json:"error,omitempty"`
	WebhookName string `json:"webhook_name,omitempty"`
	WorkspaceID string `json:"workspace_id,omitempty"`
}

const (
	ReasonAlreadyProcessed = "already_processed"
	ErrNoWebhookConfigured = "no_webhook_configured"
)

// WorkspaceInfo identifies the resolved tenant inside the forwarded payload
// so a single downstream webhook can fan out per workspace.
type WorkspaceInfo struct {
	WorkspaceID   string `json:"workspace_id"`
	WorkspaceName string `json:"workspace_name"`
}

// Envelope is the JSON body POSTed to the tenant's webhook URL.
type Envelope struct {
	PhoneNumber string         `json:"phoneNumber"`
	Message     InboundMessage `json:"message"`
	Timestamp   string         `json:"timestamp"`
	WebhookName string         `json:"webhookName"`
	Workspace   WorkspaceInfo  `json:"workspace"`
	Source      string         `json:"source"`
}

// Source identifies this service in forwarded payloads.
const Source = "whatsapp-service"

// Forwarder delivers an envelope to a webhook URL. Implementations must
// bound the call with a timeout and return an error on any non-2xx outcome.
type Forwarder interface {
	Forward(ctx context.Context, url string, envelope Envelope) error
}

type IDispatchUsecase interface {
	// Handle relays one inbound message: duplicate check, tenant
	// resolution, webhook lookup, delivery, and the mark-processed
	// commit that only happens on confirmed success.
	Handle(ctx context.Context, msg InboundMessage) Result
}

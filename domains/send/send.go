package send

import "context"

// TextRequest sends a plain text message through the provider.
type TextRequest struct {
	To             string `json:"to"`
	Text           string `json:"text"`
	WorkspaceID    string `json:"workspace_id"`
	MessageID      string `json:"message_id"`
	SenderOverride string `json:"sender_override"`
}

// MediaRequest sends a message with a media attachment and optional caption.
type MediaRequest struct {
	To             string `json:"to"`
	MediaURL       string `json:"media_url"`
	Caption        string `json:"caption"`
	WorkspaceID    string `json:"workspace_id"`
	MessageID      string `json:"message_id"`
	SenderOverride string `json:"sender_override"`
}

// LocationRequest sends a location pin rendered as a maps link.
type LocationRequest struct {
	To          string  `json:"to"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Name        string  `json:"name"`
	WorkspaceID string  `json:"workspace_id"`
	MessageID   string  `json:"message_id"`
}

type Response struct {
	Status      string `json:"status"`
	ProviderSID string `json:"twilio_sid,omitempty"`
	Duplicate   bool   `json:"duplicate,omitempty"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	MessageID   string `json:"message_id,omitempty"`
}

// SenderParams carries the resolved outbound identity. Exactly one of
// MessagingServiceSID or FromNumber is set: a pool SID routes through the
// provider's sender pool, a from number pins the message to one sender.
type SenderParams struct {
	MessagingServiceSID string
	FromNumber          string
}

type ProviderResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// Provider is the outbound messaging API.
type Provider interface {
	SendText(ctx context.Context, to, body string, sender SenderParams) (ProviderResponse, error)
	SendMedia(ctx context.Context, to, mediaURL, caption string, sender SenderParams) (ProviderResponse, error)
}

type ISendUsecase interface {
	SendText(ctx context.Context, request TextRequest) (Response, error)
	SendMedia(ctx context.Context, request MediaRequest) (Response, error)
	SendLocation(ctx context.Context, request LocationRequest) (Response, error)
}

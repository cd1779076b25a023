package domain

import "errors"

// Config describes one tenant: the phone number it receives messages on and
// the sender identity its replies should carry. Built from static
// configuration at startup and immutable afterwards.
type Config struct {
	ID                   string `json:"workspace_id"`
	DisplayName          string `json:"workspace_name"`
	ReceivingNumber      string `json:"receiving_number"`
	SenderOverrideNumber string `json:"sender_number,omitempty"`
	OutboundSenderPoolID string `json:"sender_pool_id,omitempty"`
}

// DefaultWorkspace is returned for receiving numbers that are routable in
// the provider account but not enrolled as a tenant. Routing to it instead
// of failing keeps traffic flowing during tenant onboarding.
var DefaultWorkspace = Config{ID: "1", DisplayName: "Default"}

// ErrDuplicateReceivingNumber means two workspaces claim the same receiving
// number; routing would be ambiguous, so startup must fail.
var ErrDuplicateReceivingNumber = errors.New("duplicate receiving number across workspaces")

package workspace

import (
	"fmt"

	"github.com/ateneai/wa-relay/pkg/phone"
	"github.com/ateneai/wa-relay/workspace/domain"
	"github.com/sirupsen/logrus"
)

// Resolver maps receiving phone numbers to tenant workspaces. The table is
// fixed at construction; lookups are read-only and safe for concurrent use.
type Resolver struct {
	byNumber map[string]domain.Config
	byID     map[string]domain.Config
	ordered  []domain.Config
}

// NewResolver builds a resolver from the configured tenant table. Numbers
// are normalized to E.164 before indexing; a receiving number claimed by
// more than one workspace is a configuration error.
func NewResolver(configs []domain.Config) (*Resolver, error) {
	r := &Resolver{
		byNumber: make(map[string]domain.Config, len(configs)),
		byID:     make(map[string]domain.Config, len(configs)),
	}

	for _, cfg := range configs {
		number := phone.NormalizeE164(cfg.ReceivingNumber)
		if number == "" {
			return nil, fmt.Errorf("workspace %q has no receiving number", cfg.ID)
		}
		if existing, ok := r.byNumber[number]; ok {
			return nil, fmt.Errorf("%w: %s claimed by workspaces %q and %q",
				domain.ErrDuplicateReceivingNumber, number, existing.ID, cfg.ID)
		}
		cfg.ReceivingNumber = number
		r.byNumber[number] = cfg
		r.byID[cfg.ID] = cfg
		r.ordered = append(r.ordered, cfg)
	}

	return r, nil
}

// Resolve returns the workspace owning the given receiving number. The
// input is normalized first (scheme prefix stripped, whitespace trimmed).
// Unrecognized numbers resolve to the default workspace rather than
// failing, so un-enrolled numbers stay routable; every fallback is logged
// because it can also mean a misconfigured tenant.
func (r *Resolver) Resolve(receivingNumber string) domain.Config {
	number := phone.NormalizeE164(receivingNumber)
	if ws, ok := r.byNumber[number]; ok {
		return ws
	}

	logrus.WithField("receiving_number", number).
		Warn("[WORKSPACE] No workspace enrolled for number, using default")
	return domain.DefaultWorkspace
}

// Get returns a workspace by id.
func (r *Resolver) Get(id string) (domain.Config, bool) {
	ws, ok := r.byID[id]
	return ws, ok
}

// Enrolled reports whether the id belongs to a configured workspace.
func (r *Resolver) Enrolled(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// List returns the configured workspaces in declaration order.
func (r *Resolver) List() []domain.Config {
	out := make([]domain.Config, len(r.ordered))
	copy(out, r.ordered)
	return out
}

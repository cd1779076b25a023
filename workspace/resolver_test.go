package workspace_test

import (
	"testing"

	"github.com/ateneai/wa-relay/workspace"
	"github.com/ateneai/wa-relay/workspace/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *workspace.Resolver {
	t.Helper()
	r, err := workspace.NewResolver([]domain.Config{
		{ID: "2", DisplayName: "Acme Dubai", ReceivingNumber: "+971543381600", OutboundSenderPoolID: "MG111"},
		{ID: "3", DisplayName: "Acme Spain", ReceivingNumber: "+34603960818"},
	})
	require.NoError(t, err)
	return r
}

func TestResolver_Resolve(t *testing.T) {
	r := newTestResolver(t)

	ws := r.Resolve("+971543381600")
	assert.Equal(t, "2", ws.ID)
	assert.Equal(t, "Acme Dubai", ws.DisplayName)

	// Deterministic: same input, same workspace.
	assert.Equal(t, ws, r.Resolve("+971543381600"))
}

func TestResolver_ResolveStripsScheme(t *testing.T) {
	r := newTestResolver(t)

	ws := r.Resolve("whatsapp:+34603960818")
	assert.Equal(t, "3", ws.ID)

	ws = r.Resolve(" +34603960818 ")
	assert.Equal(t, "3", ws.ID)
}

func TestResolver_UnknownNumberFallsBackToDefault(t *testing.T) {
	r := newTestResolver(t)

	ws := r.Resolve("+9999999999")
	assert.Equal(t, "1", ws.ID)
	assert.Equal(t, "Default", ws.DisplayName)
}

func TestNewResolver_DuplicateReceivingNumber(t *testing.T) {
	_, err := workspace.NewResolver([]domain.Config{
		{ID: "2", ReceivingNumber: "+971543381600"},
		{ID: "3", ReceivingNumber: "whatsapp:+971543381600"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateReceivingNumber)
}

func TestNewResolver_MissingNumber(t *testing.T) {
	_, err := workspace.NewResolver([]domain.Config{{ID: "4"}})
	require.Error(t, err)
}

func TestResolver_Enrolled(t *testing.T) {
	r := newTestResolver(t)

	assert.True(t, r.Enrolled("2"))
	assert.False(t, r.Enrolled("99"))

	ws, ok := r.Get("3")
	require.True(t, ok)
	assert.Equal(t, "+34603960818", ws.ReceivingNumber)

	assert.Len(t, r.List(), 2)
}

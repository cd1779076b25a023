package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWorkspaceTable(t *testing.T) {
	t.Setenv("WHATSAPP_ENABLED_WORKSPACES", "2, 3")
	t.Setenv("TWILIO_WHATSAPP_NUMBER__2", "whatsapp:+971543381600")
	t.Setenv("WHATSAPP_WORKSPACE_NAME__2", "Acme Dubai")
	t.Setenv("TWILIO_MESSAGING_SERVICE_SID__2", "MG111")
	// Workspace 3 uses the single-underscore legacy spelling and no name.
	t.Setenv("TWILIO_WHATSAPP_NUMBER_3", "+34603960818")

	table, err := loadWorkspaceTable()
	require.NoError(t, err)
	assert.True(t, table.Restrict)
	require.Len(t, table.Entries, 2)

	assert.Equal(t, "2", table.Entries[0].ID)
	assert.Equal(t, "Acme Dubai", table.Entries[0].Name)
	assert.Equal(t, "+971543381600", table.Entries[0].ReceivingNumber)
	assert.Equal(t, "MG111", table.Entries[0].SenderPoolID)

	assert.Equal(t, "Workspace 3", table.Entries[1].Name)
	assert.Equal(t, "+34603960818", table.Entries[1].ReceivingNumber)
}

func TestLoadWorkspaceTable_MissingNumber(t *testing.T) {
	t.Setenv("WHATSAPP_ENABLED_WORKSPACES", "9")

	_, err := loadWorkspaceTable()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWILIO_WHATSAPP_NUMBER__9")
}

func TestLoadWorkspaceTable_Empty(t *testing.T) {
	t.Setenv("WHATSAPP_ENABLED_WORKSPACES", "")

	table, err := loadWorkspaceTable()
	require.NoError(t, err)
	assert.False(t, table.Restrict)
	assert.Empty(t, table.Entries)
}

func TestLoadWebhookTable(t *testing.T) {
	t.Setenv("N8N_DEFAULT_WEBHOOK_URL", "https://n8n.example.com/hook/main")
	t.Setenv("N8N_WEBHOOK_+34603960818_URL", "https://n8n.example.com/hook/es")
	t.Setenv("N8N_WEBHOOK_+34603960818_NAME", "ateneai")
	t.Setenv("N8N_WEBHOOK_2_URL", "https://n8n.example.com/hook/two")
	t.Setenv("N8N_WEBHOOK_2_ENABLED", "false")
	t.Setenv("N8N_WEBHOOK_14155550100_URL", "https://n8n.example.com/hook/us")
	t.Setenv("N8N_WEBHOOK_14155550100_NAME", "us-line")

	entries := loadWebhookTable()
	byKey := map[string]WebhookEntry{}
	for _, e := range entries {
		byKey[e.Key] = e
	}

	require.Contains(t, byKey, DefaultWebhookKey)
	assert.True(t, byKey[DefaultWebhookKey].Enabled)

	require.Contains(t, byKey, "+34603960818")
	assert.Equal(t, "ateneai", byKey["+34603960818"].Name)
	assert.True(t, byKey["+34603960818"].Enabled)

	require.Contains(t, byKey, "2")
	assert.False(t, byKey["2"].Enabled)

	// Env var names cannot carry a "+", so a bare-digit number key must be
	// seeded under the form the dispatcher looks up.
	require.Contains(t, byKey, "+14155550100")
	assert.Equal(t, "us-line", byKey["+14155550100"].Name)
	assert.NotContains(t, byKey, "14155550100")
}

func TestNormalizeWebhookKey(t *testing.T) {
	assert.Equal(t, "+14155550100", normalizeWebhookKey("14155550100"))
	assert.Equal(t, "+14155550100", normalizeWebhookKey("+14155550100"))
	assert.Equal(t, "2", normalizeWebhookKey("2"))
	assert.Equal(t, "sales", normalizeWebhookKey("sales"))
	assert.Equal(t, "team_42", normalizeWebhookKey("team_42"))
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.Dedupe.TTL)
	assert.Equal(t, 1000, cfg.Dedupe.MaxEntries)
	assert.Equal(t, 10*time.Second, cfg.Forward.Timeout)
	assert.Equal(t, "https://api.twilio.com", cfg.Provider.BaseURL)
}

func TestLookupTenantKey_PrefersDoubleUnderscore(t *testing.T) {
	t.Setenv("TWILIO_MESSAGING_SERVICE_SID__7", "MGdouble")
	t.Setenv("TWILIO_MESSAGING_SERVICE_SID_7", "MGsingle")

	assert.Equal(t, "MGdouble", lookupTenantKey("TWILIO_MESSAGING_SERVICE_SID", "7"))
}

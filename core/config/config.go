package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ateneai/wa-relay/pkg/phone"
)

// Config holds all application configuration in a structured way.
// It is built once at startup; the env-var naming conventions of the
// legacy deployment (N8N_WEBHOOK_<KEY>_URL, TWILIO_WHATSAPP_NUMBER__<ID>)
// are parsed here into typed tables so nothing else does string-keyed
// environment lookups at runtime.
type Config struct {
	App        AppConfig
	Security   SecurityConfig
	Provider   ProviderConfig
	Database   DatabaseConfig
	Dedupe     DedupeConfig
	Forward    ForwardConfig
	Dispatch   DispatchConfig
	RateLimit  RateLimitConfig
	Workspaces WorkspacesConfig
	Webhooks   []WebhookEntry
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasePath           string
	TrustedProxies     []string
	CorsAllowedOrigins []string
}

type SecurityConfig struct {
	BasicAuth       []string // user:pass pairs guarding the admin API group
	ServiceToken    string   // optional bearer token for outbound send endpoints
	MetaVerifyToken string   // token for the GET /webhook verification handshake
}

type ProviderConfig struct {
	AccountSID string
	AuthToken  string
	BaseURL    string
	// Process-wide sender fallbacks, tried after the per-workspace keys.
	DefaultNumber  string
	DefaultPoolSID string
}

type DatabaseConfig struct {
	// Driver selects the registry persistence backend: "" keeps the
	// in-memory registry, "sqlite" and "postgres" persist it via GORM.
	Driver   string
	Name     string // file path for SQLite, database name for Postgres
	Host     string
	Port     int
	User     string
	Password string

	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

type DedupeConfig struct {
	TTL        time.Duration
	MaxEntries int
}

type ForwardConfig struct {
	Timeout time.Duration
	Secret  string
}

type DispatchConfig struct {
	// Workers > 0 relays inbound messages through the sharded worker pool;
	// 0 keeps dispatch inline in the webhook handler.
	Workers   int
	QueueSize int
}

type RateLimitConfig struct {
	Window time.Duration
	Max    int
}

type WorkspacesConfig struct {
	// Restrict mirrors WHATSAPP_ENABLED_WORKSPACES being set: outbound
	// sends must then name an enrolled workspace.
	Restrict bool
	Entries  []WorkspaceEntry
}

// WorkspaceEntry is one row of the typed tenant table.
type WorkspaceEntry struct {
	ID              string
	Name            string
	ReceivingNumber string
	SenderNumber    string
	SenderPoolID    string
}

// WebhookEntry is one row of the startup webhook table. Key is a phone
// number, a workspace id, or the reserved "default" key.
type WebhookEntry struct {
	Key     string
	URL     string
	Name    string
	Enabled bool
}

// DefaultWebhookKey is the registry key of the shared fallback target.
const DefaultWebhookKey = "default"

// Global provides access to the loaded configuration.
var Global *Config

// LoadConfig builds the configuration from environment variables.
func LoadConfig() (*Config, error) {
	appCfg := AppConfig{
		Version:     "v2.0.0",
		Port:        getEnv("PORT", getEnv("APP_PORT", "3000")),
		Debug:       getEnvBool("APP_DEBUG", false),
		Environment: getEnv("APP_ENV", "development"),
		BasePath:    getEnv("APP_BASE_PATH", ""),
		CorsAllowedOrigins: splitCSV(getEnv("APP_CORS_ALLOWED_ORIGINS",
			"http://localhost:3000,http://localhost:5173")),
	}
	if v := os.Getenv("APP_TRUSTED_PROXIES"); v != "" {
		appCfg.TrustedProxies = splitCSV(v)
	}

	var basicAuth []string
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		basicAuth = splitCSV(v)
	}
	secCfg := SecurityConfig{
		BasicAuth:       basicAuth,
		ServiceToken:    getEnv("WHATSAPP_SERVICE_TOKEN", ""),
		MetaVerifyToken: getEnv("META_VERIFY_TOKEN", ""),
	}

	providerCfg := ProviderConfig{
		AccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
		AuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
		BaseURL:        getEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
		DefaultNumber:  phone.NormalizeE164(getEnv("TWILIO_WHATSAPP_NUMBER", "")),
		DefaultPoolSID: lookupTenantKey("TWILIO_MESSAGING_SERVICE_SID", "DEFAULT"),
	}
	if providerCfg.DefaultPoolSID == "" {
		providerCfg.DefaultPoolSID = getEnv("TWILIO_MESSAGING_SERVICE_SID", "")
	}

	dbCfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", ""),
		Name:            getEnv("DB_NAME", "storages/warelay.db"),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "warelay:"),
	}

	dedupeCfg := DedupeConfig{
		TTL:        getEnvDurationMs("DEDUPE_TTL_MS", time.Hour),
		MaxEntries: getEnvInt("DEDUPE_MAX_ENTRIES", 1000),
	}

	forwardCfg := ForwardConfig{
		Timeout: getEnvDurationMs("WEBHOOK_FORWARD_TIMEOUT_MS", 10*time.Second),
		Secret:  getEnv("WEBHOOK_FORWARD_SECRET", ""),
	}

	dispatchCfg := DispatchConfig{
		Workers:   getEnvInt("DISPATCH_WORKERS", 0),
		QueueSize: getEnvInt("DISPATCH_QUEUE_SIZE", 250),
	}

	rateCfg := RateLimitConfig{
		Window: getEnvDurationMs("RATE_LIMIT_WINDOW_MS", 15*time.Minute),
		Max:    getEnvInt("RATE_LIMIT_MAX_REQUESTS", 100),
	}

	workspaces, err := loadWorkspaceTable()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App:        appCfg,
		Security:   secCfg,
		Provider:   providerCfg,
		Database:   dbCfg,
		Dedupe:     dedupeCfg,
		Forward:    forwardCfg,
		Dispatch:   dispatchCfg,
		RateLimit:  rateCfg,
		Workspaces: workspaces,
		Webhooks:   loadWebhookTable(),
	}

	Global = cfg
	return cfg, nil
}

// loadWorkspaceTable parses WHATSAPP_ENABLED_WORKSPACES and the per-tenant
// TWILIO_WHATSAPP_NUMBER__<ID> / WHATSAPP_WORKSPACE_NAME__<ID> /
// TWILIO_MESSAGING_SERVICE_SID__<ID> / TWILIO_SENDER_NUMBER__<ID> keys into
// a typed list.
func loadWorkspaceTable() (WorkspacesConfig, error) {
	raw := strings.TrimSpace(os.Getenv("WHATSAPP_ENABLED_WORKSPACES"))
	table := WorkspacesConfig{Restrict: raw != ""}
	if raw == "" {
		return table, nil
	}

	for _, id := range splitCSV(raw) {
		entry := WorkspaceEntry{
			ID:              id,
			Name:            lookupTenantKey("WHATSAPP_WORKSPACE_NAME", id),
			ReceivingNumber: phone.NormalizeE164(lookupTenantKey("TWILIO_WHATSAPP_NUMBER", id)),
			SenderNumber:    phone.NormalizeE164(lookupTenantKey("TWILIO_SENDER_NUMBER", id)),
			SenderPoolID:    lookupTenantKey("TWILIO_MESSAGING_SERVICE_SID", id),
		}
		if entry.Name == "" {
			entry.Name = fmt.Sprintf("Workspace %s", id)
		}
		if entry.ReceivingNumber == "" {
			return table, fmt.Errorf("workspace %q is enabled but TWILIO_WHATSAPP_NUMBER__%s is not set", id, id)
		}
		table.Entries = append(table.Entries, entry)
	}

	return table, nil
}

// loadWebhookTable parses N8N_DEFAULT_WEBHOOK_URL plus the
// N8N_WEBHOOK_<KEY>_URL / _NAME / _ENABLED family. The table only seeds
// the registry at startup; it never removes entries added over the API.
func loadWebhookTable() []WebhookEntry {
	var entries []WebhookEntry

	if url := strings.TrimSpace(os.Getenv("N8N_DEFAULT_WEBHOOK_URL")); url != "" {
		entries = append(entries, WebhookEntry{
			Key:     DefaultWebhookKey,
			URL:     url,
			Name:    DefaultWebhookKey,
			Enabled: true,
		})
	}

	const prefix, suffix = "N8N_WEBHOOK_", "_URL"
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		rawKey := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
		if rawKey == "" {
			continue
		}

		key := normalizeWebhookKey(rawKey)
		entries = append(entries, WebhookEntry{
			Key:     key,
			URL:     value,
			Name:    getEnv(prefix+rawKey+"_NAME", key),
			Enabled: os.Getenv(prefix+rawKey+"_ENABLED") != "false",
		})
	}

	return entries
}

// normalizeWebhookKey maps phone-number keys onto the "+"-prefixed form the
// dispatcher resolves receiving numbers by. Env var names cannot carry a
// "+", so number keys arrive as bare digits; short digit keys are workspace
// ids and stay as written.
func normalizeWebhookKey(key string) string {
	if strings.HasPrefix(key, "+") {
		return phone.NormalizeE164(key)
	}
	if len(key) >= 7 && strings.Trim(key, "0123456789") == "" {
		return phone.NormalizeE164(key)
	}
	return key
}

// lookupTenantKey resolves <BASE>__<ID> with a <BASE>_<ID> fallback, the two
// spellings the legacy deployment used interchangeably.
func lookupTenantKey(base, id string) string {
	if v := os.Getenv(base + "__" + id); v != "" {
		return v
	}
	return os.Getenv(base + "_" + id)
}

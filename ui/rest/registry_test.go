package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainRegistry "github.com/ateneai/wa-relay/domains/registry"
	"github.com/ateneai/wa-relay/registry/repository"
	"github.com/ateneai/wa-relay/usecase"
)

func newRegistryApp(t *testing.T, targets ...domainRegistry.WebhookTarget) *fiber.App {
	t.Helper()

	repo := repository.NewMemoryRepository()
	for _, target := range targets {
		require.NoError(t, repo.Put(context.Background(), target))
	}

	app := fiber.New()
	api := app.Group("/api")
	InitRestRegistry(api, usecase.NewRegistryService(repo))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRegistryCreateReturns201(t *testing.T) {
	app := newRegistryApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/whatsapp/webhooks/", CreateWebhookRequest{
		Key: "sales", URL: "https://n8n.example.com/sales", Name: "Sales",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var envelope struct {
		Results domainRegistry.WebhookTarget `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "sales", envelope.Results.Key)
	assert.True(t, envelope.Results.Enabled)
}

func TestRegistryCreateRejectsMissingURL(t *testing.T) {
	app := newRegistryApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/whatsapp/webhooks/", CreateWebhookRequest{Key: "sales"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegistryListMasksURLs(t *testing.T) {
	app := newRegistryApp(t, domainRegistry.WebhookTarget{
		Key: "sales", URL: "https://n8n.example.com/webhook/long-path", Name: "Sales", Enabled: true,
	})

	resp := doJSON(t, app, http.MethodGet, "/api/whatsapp/webhooks/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Results []domainRegistry.WebhookTarget `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Len(t, envelope.Results, 1)
	assert.NotEqual(t, "https://n8n.example.com/webhook/long-path", envelope.Results[0].URL)
	assert.Contains(t, envelope.Results[0].URL, "...")
}

func TestRegistryUpdate(t *testing.T) {
	app := newRegistryApp(t, domainRegistry.WebhookTarget{
		Key: "sales", URL: "https://old.example.com", Name: "Sales", Enabled: true,
	})

	disabled := false
	resp := doJSON(t, app, http.MethodPut, "/api/whatsapp/webhooks/sales", UpdateWebhookRequest{Enabled: &disabled})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Results domainRegistry.WebhookTarget `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.False(t, envelope.Results.Enabled)
	assert.Equal(t, "https://old.example.com", envelope.Results.URL)
}

func TestRegistryUpdateUnknownKeyReturns404(t *testing.T) {
	app := newRegistryApp(t)

	url := "https://n8n.example.com"
	resp := doJSON(t, app, http.MethodPut, "/api/whatsapp/webhooks/ghost", UpdateWebhookRequest{URL: &url})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "NOT_FOUND_ERROR")
}

func TestRegistryDelete(t *testing.T) {
	app := newRegistryApp(t, domainRegistry.WebhookTarget{
		Key: "sales", URL: "https://n8n.example.com", Enabled: true,
	})

	resp := doJSON(t, app, http.MethodDelete, "/api/whatsapp/webhooks/sales", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/api/whatsapp/webhooks/sales", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

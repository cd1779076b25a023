package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ateneai/wa-relay/domains/send"
	"github.com/ateneai/wa-relay/idempotency"
	"github.com/ateneai/wa-relay/usecase"
	"github.com/ateneai/wa-relay/workspace"
	workspaceDomain "github.com/ateneai/wa-relay/workspace/domain"
)

type stubProvider struct {
	calls    int
	lastBody string
	lastTo   string
}

func (p *stubProvider) SendText(_ context.Context, to, body string, _ send.SenderParams) (send.ProviderResponse, error) {
	p.calls++
	p.lastTo = to
	p.lastBody = body
	return send.ProviderResponse{SID: "SM1", Status: "queued"}, nil
}

func (p *stubProvider) SendMedia(_ context.Context, to, mediaURL, caption string, _ send.SenderParams) (send.ProviderResponse, error) {
	p.calls++
	p.lastTo = to
	p.lastBody = caption
	return send.ProviderResponse{SID: "SM2", Status: "queued"}, nil
}

func newMessageApp(t *testing.T, provider *stubProvider, restrict bool, serviceToken string) *fiber.App {
	t.Helper()

	resolver, err := workspace.NewResolver([]workspaceDomain.Config{
		{ID: "2", DisplayName: "Ateneai", ReceivingNumber: "+34603960818"},
	})
	require.NoError(t, err)

	sendService := usecase.NewSendService(
		provider, resolver, idempotency.NewMemoryStore(1000), time.Hour,
		restrict, usecase.SenderDefaults{Number: "+10000000000"},
	)

	app := fiber.New()
	api := app.Group("/api")
	InitRestMessage(api, sendService, nil, serviceToken)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSendTextEndpoint(t *testing.T) {
	provider := &stubProvider{}
	app := newMessageApp(t, provider, false, "")

	resp := postJSON(t, app, "/api/whatsapp/send/text", map[string]any{
		"to": "+14155550100", "text": "hola", "workspace_id": "2",
	}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, provider.calls)

	var envelope struct {
		Code    string        `json:"code"`
		Results send.Response `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "SUCCESS", envelope.Code)
	assert.Equal(t, "SM1", envelope.Results.ProviderSID)
}

func TestSendTextLegacyAliases(t *testing.T) {
	provider := &stubProvider{}
	app := newMessageApp(t, provider, false, "")

	// number/body instead of to/text, on the legacy /messages route.
	resp := postJSON(t, app, "/api/whatsapp/messages", map[string]any{
		"number": "whatsapp:+14155550100", "body": "hola",
	}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "+14155550100", provider.lastTo)
	assert.Equal(t, "hola", provider.lastBody)
}

func TestSendTextBearerAuth(t *testing.T) {
	provider := &stubProvider{}
	app := newMessageApp(t, provider, false, "svc-token")

	payload := map[string]any{"to": "+14155550100", "text": "hola"}

	resp := postJSON(t, app, "/api/whatsapp/send/text", payload, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, app, "/api/whatsapp/send/text", payload,
		map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, provider.calls)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "UNAUTHORIZED_ERROR")

	resp = postJSON(t, app, "/api/whatsapp/send/text", payload,
		map[string]string{"Authorization": "Bearer svc-token"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, provider.calls)
}

func TestSendTextWorkspaceAllowList(t *testing.T) {
	provider := &stubProvider{}
	app := newMessageApp(t, provider, true, "")

	resp := postJSON(t, app, "/api/whatsapp/send/text", map[string]any{
		"to": "+14155550100", "text": "hola", "workspace_id": "99",
	}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, provider.calls)
}

func TestSendTextDuplicateMessageID(t *testing.T) {
	provider := &stubProvider{}
	app := newMessageApp(t, provider, false, "")

	payload := map[string]any{
		"to": "+14155550100", "text": "hola",
		"metadata": map[string]any{"message_id": "msg-77"},
	}

	resp := postJSON(t, app, "/api/whatsapp/send/text", payload, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/api/whatsapp/send/text", payload, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Results send.Response `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.True(t, envelope.Results.Duplicate)
	assert.Equal(t, "duplicate_ignored", envelope.Results.Status)
	assert.Equal(t, 1, provider.calls)
}

func TestSendTextValidationError(t *testing.T) {
	provider := &stubProvider{}
	app := newMessageApp(t, provider, false, "")

	resp := postJSON(t, app, "/api/whatsapp/send/text", map[string]any{"to": "+14155550100"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendButtonDegradesToNumberedText(t *testing.T) {
	provider := &stubProvider{}
	app := newMessageApp(t, provider, false, "")

	resp := postJSON(t, app, "/api/whatsapp/send/button", map[string]any{
		"to": "+14155550100", "text": "Elige una opción:",
		"buttons": []string{"Ventas", "Soporte"},
	}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, provider.lastBody, "Elige una opción:")
	assert.Contains(t, provider.lastBody, "1. Ventas")
	assert.Contains(t, provider.lastBody, "2. Soporte")
}

func TestSendListDegradesToBulletedText(t *testing.T) {
	provider := &stubProvider{}
	app := newMessageApp(t, provider, false, "")

	resp := postJSON(t, app, "/api/whatsapp/send/list", map[string]any{
		"to": "+14155550100", "title": "Horarios",
		"items": []string{"Lunes 9-14", "Martes 9-14"},
	}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, provider.lastBody, "Horarios")
	assert.Contains(t, provider.lastBody, "- Lunes 9-14")
}

func TestSendImageEndpoint(t *testing.T) {
	provider := &stubProvider{}
	app := newMessageApp(t, provider, false, "")

	resp := postJSON(t, app, "/api/whatsapp/send/image", map[string]any{
		"to": "+14155550100", "media_url": "https://cdn.example.com/foto.jpg", "caption": "mira",
	}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, "mira", provider.lastBody)
}

func TestSendInvalidJSONBody(t *testing.T) {
	provider := &stubProvider{}
	app := newMessageApp(t, provider, false, "")

	req := httptest.NewRequest(http.MethodPost, "/api/whatsapp/send/text", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "VALIDATION_ERROR")
}

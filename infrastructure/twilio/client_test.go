package twilio

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ateneai/wa-relay/domains/send"
	pkgError "github.com/ateneai/wa-relay/pkg/error"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func fakeClient(fn roundTripperFunc) *Client {
	return NewClient("AC123", "token", "https://api.twilio.com",
		WithHTTPClient(&http.Client{Transport: fn}))
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestSendTextWithMessagingService(t *testing.T) {
	var gotForm string
	var gotURL string
	client := fakeClient(func(req *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(req.Body)
		gotForm = string(raw)
		gotURL = req.URL.String()

		user, pass, ok := req.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "token", pass)

		return jsonResponse(201, `{"sid":"SM900","status":"queued"}`), nil
	})

	resp, err := client.SendText(context.Background(), "+14155550100", "hola",
		send.SenderParams{MessagingServiceSID: "MG123"})
	require.NoError(t, err)
	assert.Equal(t, "SM900", resp.SID)
	assert.Equal(t, "queued", resp.Status)

	assert.Equal(t, "https://api.twilio.com/2010-04-01/Accounts/AC123/Messages.json", gotURL)
	assert.Contains(t, gotForm, "MessagingServiceSid=MG123")
	assert.Contains(t, gotForm, "To=whatsapp%3A%2B14155550100")
	assert.NotContains(t, gotForm, "From=")
}

func TestSendTextWithFromNumber(t *testing.T) {
	var gotForm string
	client := fakeClient(func(req *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(req.Body)
		gotForm = string(raw)
		return jsonResponse(201, `{"sid":"SM901","status":"queued"}`), nil
	})

	_, err := client.SendText(context.Background(), "+14155550100", "hola",
		send.SenderParams{FromNumber: "+34603960818"})
	require.NoError(t, err)
	assert.Contains(t, gotForm, "From=whatsapp%3A%2B34603960818")
	assert.NotContains(t, gotForm, "MessagingServiceSid")
}

func TestSendTextNoSenderIdentity(t *testing.T) {
	client := fakeClient(func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})

	_, err := client.SendText(context.Background(), "+14155550100", "hola", send.SenderParams{})
	assert.Error(t, err)
}

func TestSendTextProviderRejection(t *testing.T) {
	client := fakeClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(400, `{"code":21211,"message":"Invalid 'To' number"}`), nil
	})

	_, err := client.SendText(context.Background(), "bad", "hola",
		send.SenderParams{FromNumber: "+34603960818"})
	require.Error(t, err)

	var rejected pkgError.DeliveryRejectedError
	assert.ErrorAs(t, err, &rejected)
	assert.Contains(t, err.Error(), "Invalid 'To' number")
}

func TestSendMediaIncludesMediaURLAndCaption(t *testing.T) {
	var gotForm string
	client := fakeClient(func(req *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(req.Body)
		gotForm = string(raw)
		return jsonResponse(201, `{"sid":"SM902","status":"queued"}`), nil
	})

	_, err := client.SendMedia(context.Background(), "+14155550100",
		"https://cdn.example.com/img.jpg", "mira esto",
		send.SenderParams{MessagingServiceSID: "MG123"})
	require.NoError(t, err)
	assert.Contains(t, gotForm, "MediaUrl=https%3A%2F%2Fcdn.example.com%2Fimg.jpg")
	assert.Contains(t, gotForm, "Body=mira+esto")
}

func TestAccountInfo(t *testing.T) {
	client := fakeClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "https://api.twilio.com/2010-04-01/Accounts/AC123.json", req.URL.String())
		return jsonResponse(200, `{"friendly_name":"Ateneai","status":"active"}`), nil
	})

	info, err := client.AccountInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ateneai", info.FriendlyName)
	assert.Equal(t, "active", info.Status)
}

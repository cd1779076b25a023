package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ateneai/wa-relay/domains/send"
	pkgError "github.com/ateneai/wa-relay/pkg/error"
	"github.com/ateneai/wa-relay/pkg/phone"
)

// Client talks to the Twilio Messages API over WhatsApp.
type Client struct {
	accountSID string
	authToken  string
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(accountSID, authToken, baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = "https://api.twilio.com"
	}
	c := &Client{
		accountSID: accountSID,
		authToken:  authToken,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SendText(ctx context.Context, to, body string, sender send.SenderParams) (send.ProviderResponse, error) {
	form := url.Values{}
	form.Set("To", phone.WithScheme(to))
	form.Set("Body", body)
	return c.createMessage(ctx, form, sender)
}

func (c *Client) SendMedia(ctx context.Context, to, mediaURL, caption string, sender send.SenderParams) (send.ProviderResponse, error) {
	form := url.Values{}
	form.Set("To", phone.WithScheme(to))
	form.Set("MediaUrl", mediaURL)
	if caption != "" {
		form.Set("Body", caption)
	}
	return c.createMessage(ctx, form, sender)
}

type messageResponse struct {
	Sid          string `json:"sid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"message"`
	ErrorCode    int    `json:"code"`
}

func (c *Client) createMessage(ctx context.Context, form url.Values, sender send.SenderParams) (send.ProviderResponse, error) {
	// A messaging service routes through Twilio's sender pool; a from
	// number pins the message to one sender. Never both.
	if sender.MessagingServiceSID != "" {
		form.Set("MessagingServiceSid", sender.MessagingServiceSID)
	} else if sender.FromNumber != "" {
		form.Set("From", phone.WithScheme(sender.FromNumber))
	} else {
		return send.ProviderResponse{}, pkgError.InternalServerError("no sender identity resolved")
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return send.ProviderResponse{}, pkgError.InternalServerError(fmt.Sprintf("build provider request: %v", err))
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return send.ProviderResponse{}, pkgError.DeliveryRejectedError(fmt.Sprintf("provider unreachable: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return send.ProviderResponse{}, pkgError.DeliveryRejectedError(fmt.Sprintf("read provider response: %v", err))
	}

	var parsed messageResponse
	if err := json.Unmarshal(raw, &parsed); err != nil && resp.StatusCode < 400 {
		return send.ProviderResponse{}, pkgError.DeliveryRejectedError(fmt.Sprintf("decode provider response: %v", err))
	}

	if resp.StatusCode >= 400 {
		detail := parsed.ErrorMessage
		if detail == "" {
			detail = strings.TrimSpace(string(raw))
		}
		logrus.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"code":   parsed.ErrorCode,
		}).Errorf("[TWILIO] Send rejected: %s", detail)
		return send.ProviderResponse{}, pkgError.DeliveryRejectedError(
			fmt.Sprintf("provider rejected send (%d): %s", resp.StatusCode, detail))
	}

	return send.ProviderResponse{SID: parsed.Sid, Status: parsed.Status}, nil
}

// AccountInfo is a lightweight connectivity probe used by the status
// endpoint.
type AccountInfo struct {
	FriendlyName string `json:"friendly_name"`
	Status       string `json:"status"`
}

func (c *Client) AccountInfo(ctx context.Context) (AccountInfo, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return AccountInfo{}, err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AccountInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return AccountInfo{}, fmt.Errorf("account lookup failed: %d", resp.StatusCode)
	}

	var info AccountInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return AccountInfo{}, err
	}
	return info, nil
}

package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ateneai/wa-relay/domains/dispatch"
	pkgError "github.com/ateneai/wa-relay/pkg/error"
	"github.com/ateneai/wa-relay/pkg/utils"
)

const userAgent = "WhatsApp-Service/2.0"

// HTTPForwarder delivers dispatch envelopes with a single POST per call.
// There is no retry loop here on purpose: the messaging provider redelivers
// the original callback on a non-2xx ack, and a duplicate that was never
// marked processed goes through the whole pipeline again.
type HTTPForwarder struct {
	client  *http.Client
	timeout time.Duration
	secret  string
}

type Option func(*HTTPForwarder)

// WithClient swaps the underlying HTTP client, used by tests to inject a
// fake transport.
func WithClient(client *http.Client) Option {
	return func(f *HTTPForwarder) {
		f.client = client
	}
}

// WithSecret enables X-Hub-Signature-256 signing of forwarded bodies.
func WithSecret(secret string) Option {
	return func(f *HTTPForwarder) {
		f.secret = secret
	}
}

func NewHTTPForwarder(timeout time.Duration, opts ...Option) *HTTPForwarder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	f := &HTTPForwarder{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *HTTPForwarder) Forward(ctx context.Context, url string, envelope dispatch.Envelope) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		return pkgError.InternalServerError(fmt.Sprintf("marshal forward payload: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return pkgError.WebhookError(fmt.Sprintf("build forward request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if f.secret != "" {
		signature, err := utils.GetMessageDigestOrSignature(body, []byte(f.secret))
		if err != nil {
			return pkgError.InternalServerError(fmt.Sprintf("sign forward payload: %v", err))
		}
		req.Header.Set("X-Hub-Signature-256", "sha256="+signature)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			return pkgError.DeliveryTimeoutError(fmt.Sprintf("webhook %s timed out after %s", url, f.timeout))
		}
		return pkgError.WebhookError(fmt.Sprintf("webhook %s unreachable: %v", url, err))
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return pkgError.WebhookError(fmt.Sprintf("webhook %s responded %d", url, resp.StatusCode))
	}

	logrus.Debugf("[FORWARD] Delivered message %s to %s", envelope.Message.MessageID, url)
	return nil
}

func isClientTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

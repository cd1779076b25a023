package rest

import (
	"context"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/ateneai/wa-relay/domains/dispatch"
	"github.com/ateneai/wa-relay/infrastructure/twilio"
	"github.com/ateneai/wa-relay/pkg/msgworker"
)

type Webhook struct {
	Service     dispatch.IDispatchUsecase
	Pool        *msgworker.Pool
	VerifyToken string
}

func InitRestWebhook(app fiber.Router, service dispatch.IDispatchUsecase, pool *msgworker.Pool, verifyToken string) Webhook {
	handler := Webhook{Service: service, Pool: pool, VerifyToken: verifyToken}

	app.Post("/webhook", handler.Receive)
	app.Get("/webhook", handler.Verify)

	return handler
}

// Receive handles the provider callback. The ack is unconditional: a non-2xx
// here only makes the provider redeliver a callback we already consumed, so
// every parse or forward problem is logged and swallowed.
func (h *Webhook) Receive(c *fiber.Ctx) error {
	values, err := url.ParseQuery(string(c.Body()))
	if err != nil {
		logrus.WithError(err).Warn("[WEBHOOK] Unparseable callback body")
		return h.ack(c)
	}

	messages := twilio.ParseIncomingForm(values)
	if len(messages) == 0 {
		logrus.Debug("[WEBHOOK] Callback carried no message content")
		return h.ack(c)
	}

	for _, msg := range messages {
		h.relay(c.UserContext(), msg)
	}
	return h.ack(c)
}

func (h *Webhook) relay(ctx context.Context, msg dispatch.InboundMessage) {
	if h.Pool != nil {
		queued := h.Pool.TryDispatch(msgworker.Job{
			WorkspaceID: msg.To,
			ChatKey:     msg.From,
			Handler: func(jobCtx context.Context) error {
				h.Service.Handle(jobCtx, msg)
				return nil
			},
		})
		if queued {
			return
		}
		// Full queue: handle inline rather than dropping the message.
	}
	h.Service.Handle(ctx, msg)
}

func (h *Webhook) ack(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(fiber.StatusOK).SendString("")
}

// Verify implements the subscribe handshake: echo the challenge when the
// token matches.
func (h *Webhook) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "" || token == "" {
		return c.Status(fiber.StatusBadRequest).SendString("missing verification parameters")
	}
	if mode != "subscribe" || token != h.VerifyToken || h.VerifyToken == "" {
		logrus.Warn("[WEBHOOK] Verification attempt with wrong token")
		return c.Status(fiber.StatusForbidden).SendString("verification failed")
	}
	return c.Status(fiber.StatusOK).SendString(challenge)
}

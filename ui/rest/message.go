package rest

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	domainHealth "github.com/ateneai/wa-relay/domains/health"
	"github.com/ateneai/wa-relay/domains/send"
	"github.com/ateneai/wa-relay/pkg/phone"
	"github.com/ateneai/wa-relay/pkg/utils"
	"github.com/ateneai/wa-relay/ui/rest/middleware"
)

type Message struct {
	Service send.ISendUsecase
	Health  domainHealth.IHealthUsecase
}

func InitRestMessage(app fiber.Router, service send.ISendUsecase, health domainHealth.IHealthUsecase, serviceToken string) Message {
	handler := Message{Service: service, Health: health}

	group := app.Group("/whatsapp", middleware.BearerAuth(serviceToken))
	group.Post("/send/text", handler.SendText)
	group.Post("/messages", handler.SendText) // legacy alias
	group.Post("/send/button", handler.SendButton)
	group.Post("/send/list", handler.SendList)
	group.Post("/send/image", handler.SendImage)
	group.Post("/send/document", handler.SendDocument)
	group.Post("/send/location", handler.SendLocation)
	group.Get("/status", handler.GetStatus)

	return handler
}

func (h *Message) SendText(c *fiber.Ctx) error {
	var request SendMessageRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	return h.sendText(c, request, request.Content())
}

// SendButton degrades interactive buttons to numbered text options: the
// WhatsApp Business API path in use here has no interactive message type.
func (h *Message) SendButton(c *fiber.Ctx) error {
	var request SendButtonRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	var b strings.Builder
	b.WriteString(request.Content())
	for i, button := range request.Buttons {
		fmt.Fprintf(&b, "\n%d. %s", i+1, button)
	}
	return h.sendText(c, request.SendMessageRequest, b.String())
}

// SendList degrades a list message to bulleted text.
func (h *Message) SendList(c *fiber.Ctx) error {
	var request SendListRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	var b strings.Builder
	if request.Title != "" {
		b.WriteString(request.Title)
	} else {
		b.WriteString(request.Content())
	}
	for _, item := range request.Items {
		b.WriteString("\n- " + item)
	}
	return h.sendText(c, request.SendMessageRequest, b.String())
}

func (h *Message) sendText(c *fiber.Ctx, request SendMessageRequest, content string) error {
	response, err := h.Service.SendText(c.UserContext(), send.TextRequest{
		To:             phone.NormalizeE164(request.Recipient()),
		Text:           content,
		WorkspaceID:    request.WorkspaceID,
		MessageID:      request.DedupeID(),
		SenderOverride: request.SenderOverride(),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Message accepted",
		Results: response,
	})
}

func (h *Message) SendImage(c *fiber.Ctx) error {
	return h.sendMedia(c)
}

func (h *Message) SendDocument(c *fiber.Ctx) error {
	return h.sendMedia(c)
}

func (h *Message) sendMedia(c *fiber.Ctx) error {
	var request SendMediaRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	response, err := h.Service.SendMedia(c.UserContext(), send.MediaRequest{
		To:             phone.NormalizeE164(request.Recipient()),
		MediaURL:       request.MediaURL,
		Caption:        request.Caption,
		WorkspaceID:    request.WorkspaceID,
		MessageID:      request.DedupeID(),
		SenderOverride: request.SenderOverride(),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Media message accepted",
		Results: response,
	})
}

func (h *Message) SendLocation(c *fiber.Ctx) error {
	var request SendLocationRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	response, err := h.Service.SendLocation(c.UserContext(), send.LocationRequest{
		To:          phone.NormalizeE164(request.Recipient()),
		Latitude:    request.Latitude,
		Longitude:   request.Longitude,
		Name:        request.Name,
		WorkspaceID: request.WorkspaceID,
		MessageID:   request.DedupeID(),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Location message accepted",
		Results: response,
	})
}

func (h *Message) GetStatus(c *fiber.Ctx) error {
	status := h.Health.Status(c.UserContext())
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Service status retrieved",
		Results: status,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(utils.ResponseData{
		Status:  400,
		Code:    "VALIDATION_ERROR",
		Message: message,
	})
}

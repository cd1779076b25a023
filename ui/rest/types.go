package rest

import (
	"github.com/gofiber/fiber/v2"

	pkgError "github.com/ateneai/wa-relay/pkg/error"
	"github.com/ateneai/wa-relay/pkg/utils"
)

// SendMessageRequest accepts the field aliases of both the current API and
// the legacy one it replaced, so existing callers keep working unchanged.
type SendMessageRequest struct {
	To          string `json:"to"`
	Number      string `json:"number"`
	Text        string `json:"text"`
	Body        string `json:"body"`
	Message     string `json:"message"`
	WorkspaceID string `json:"workspace_id"`
	MessageID   string `json:"message_id"`
	Metadata    struct {
		MessageID string `json:"message_id"`
	} `json:"metadata"`
	BusinessNumber string `json:"business_number"`
	From           string `json:"from"`
}

func (r SendMessageRequest) Recipient() string {
	if r.To != "" {
		return r.To
	}
	return r.Number
}

func (r SendMessageRequest) Content() string {
	if r.Text != "" {
		return r.Text
	}
	if r.Body != "" {
		return r.Body
	}
	return r.Message
}

func (r SendMessageRequest) DedupeID() string {
	if r.MessageID != "" {
		return r.MessageID
	}
	return r.Metadata.MessageID
}

func (r SendMessageRequest) SenderOverride() string {
	if r.BusinessNumber != "" {
		return r.BusinessNumber
	}
	return r.From
}

type SendButtonRequest struct {
	SendMessageRequest
	Buttons []string `json:"buttons"`
}

type SendListRequest struct {
	SendMessageRequest
	Title string   `json:"title"`
	Items []string `json:"items"`
}

type SendMediaRequest struct {
	SendMessageRequest
	MediaURL string `json:"media_url"`
	Caption  string `json:"caption"`
}

type SendLocationRequest struct {
	SendMessageRequest
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
}

type CreateWebhookRequest struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

type UpdateWebhookRequest struct {
	URL     *string `json:"url"`
	Name    *string `json:"name"`
	Enabled *bool   `json:"enabled"`
}

// errorResponse maps service errors onto the response envelope, keeping the
// GenericError status/code contract for typed errors.
func errorResponse(c *fiber.Ctx, err error) error {
	status, code := 500, "INTERNAL_SERVER_ERROR"
	if genericErr, ok := err.(pkgError.GenericError); ok {
		status = genericErr.StatusCode()
		code = genericErr.ErrCode()
	}
	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    code,
		Message: err.Error(),
	})
}

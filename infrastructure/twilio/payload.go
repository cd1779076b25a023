package twilio

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ateneai/wa-relay/domains/dispatch"
	"github.com/ateneai/wa-relay/pkg/phone"
)

// ParseIncomingForm converts a Twilio webhook form payload into inbound
// messages. Twilio delivers one message per callback, but the slice shape
// keeps the handler loop uniform and lets empty callbacks map to nil.
func ParseIncomingForm(values url.Values) []dispatch.InboundMessage {
	body := values.Get("Body")
	mediaURL := values.Get("MediaUrl0")
	if body == "" && mediaURL == "" {
		return nil
	}

	msg := dispatch.InboundMessage{
		From:      phone.NormalizeE164(values.Get("From")),
		To:        phone.NormalizeE164(values.Get("To")),
		Body:      body,
		Type:      dispatch.TypeText,
		MessageID: values.Get("MessageSid"),
		Timestamp: values.Get("Timestamp"),
		MediaURL:  mediaURL,
	}

	if mediaURL != "" {
		msg.Type = mediaType(values.Get("MediaContentType0"))
	}
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	return []dispatch.InboundMessage{msg}
}

func mediaType(contentType string) dispatch.MessageType {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return dispatch.TypeImage
	case strings.HasPrefix(contentType, "video/"):
		return dispatch.TypeVideo
	case strings.HasPrefix(contentType, "audio/"):
		return dispatch.TypeAudio
	case strings.HasPrefix(contentType, "application/"), strings.HasPrefix(contentType, "text/"):
		return dispatch.TypeDocument
	default:
		return dispatch.TypeMedia
	}
}

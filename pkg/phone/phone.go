package phone

import "strings"

const scheme = "whatsapp:"

// StripScheme removes the transport scheme marker the provider prepends to
// phone numbers in callback payloads ("whatsapp:+34600111222" -> "+34600111222").
func StripScheme(number string) string {
	trimmed := strings.TrimSpace(number)
	if strings.HasPrefix(trimmed, scheme) {
		return trimmed[len(scheme):]
	}
	return trimmed
}

// NormalizeE164 converts free-form input into E.164: the scheme marker is
// stripped, every character except digits and a leading "+" is dropped and a
// "+" is prepended when missing. Empty input stays empty.
func NormalizeE164(number string) string {
	value := StripScheme(number)
	if value == "" {
		return ""
	}

	var b strings.Builder
	for i, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}

	normalized := b.String()
	if normalized == "" {
		return ""
	}
	if !strings.HasPrefix(normalized, "+") {
		normalized = "+" + normalized
	}
	return normalized
}

// WithScheme formats a number the way the provider API expects senders and
// recipients ("whatsapp:+34600111222").
func WithScheme(number string) string {
	value := NormalizeE164(number)
	if value == "" {
		return ""
	}
	return scheme + value
}

package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"already normalized", "+34603960818", "+34603960818"},
		{"scheme prefix", "whatsapp:+34603960818", "+34603960818"},
		{"missing plus", "34603960818", "+34603960818"},
		{"spaces and dashes", " +34 603-960-818 ", "+34603960818"},
		{"scheme without plus", "whatsapp:34603960818", "+34603960818"},
		{"parenthesized", "+1 (555) 010-0200", "+15550100200"},
		{"empty", "", ""},
		{"only junk", "abc", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeE164(tc.input))
		})
	}
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "+111", StripScheme("whatsapp:+111"))
	assert.Equal(t, "+111", StripScheme(" +111 "))
	assert.Equal(t, "", StripScheme(""))
}

func TestWithScheme(t *testing.T) {
	assert.Equal(t, "whatsapp:+34603960818", WithScheme("34603960818"))
	assert.Equal(t, "whatsapp:+34603960818", WithScheme("whatsapp:+34603960818"))
	assert.Equal(t, "", WithScheme(""))
}

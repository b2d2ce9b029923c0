package redact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPII(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		contains string
		absent   string
	}{
		{name: "email", input: "mail me at jane.doe@example.com please", contains: "[email_redacted]", absent: "jane.doe"},
		{name: "card", input: "card 4111 1111 1111 1234 expires soon", contains: "**** **** **** 1234", absent: "4111 1111"},
		{name: "cpf", input: "meu cpf e 123.456.789-09", contains: "***.***.***-**", absent: "123.456"},
		{name: "phone", input: "call +1 (415) 555-0199 now", contains: "[phone_redacted]", absent: "555-0199"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			masked := MaskPII(tc.input)
			assert.Contains(t, masked, tc.contains)
			assert.NotContains(t, masked, tc.absent)
		})
	}
}

func TestMaskPIILeavesPlainTextAlone(t *testing.T) {
	assert.Equal(t, "What's 2+2?", MaskPII("What's 2+2?"))
}

func TestPreviewTruncatesAndCollapses(t *testing.T) {
	preview := Preview("Explain\n\n   quantum   entanglement "+strings.Repeat("in detail ", 20), 30)

	assert.Len(t, []rune(preview), 30)
	assert.True(t, strings.HasPrefix(preview, "Explain quantum entanglement"))
	assert.True(t, strings.HasSuffix(preview, "..."))
}

func TestPreviewCountsRunes(t *testing.T) {
	assert.Equal(t, "olá, mundo", Preview("olá, mundo", 10))
	assert.Equal(t, "ol", Preview("olá, mundo", 2))
}

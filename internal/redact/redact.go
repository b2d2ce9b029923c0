// Package redact masks personal data before prompt text reaches the logs.
package redact

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	cardPattern  = regexp.MustCompile(`\b(?:\d[ -]?){12,15}\d\b`)
	cpfPattern   = regexp.MustCompile(`\b\d{3}\.\d{3}\.\d{3}-\d{2}\b`)
	phonePattern = regexp.MustCompile(`\+?\(?\d{1,3}\)?[\s.\-]?\(?\d{2,4}\)?[\s.\-]?\d{3,5}[\s.\-]?\d{4}\b`)
	spacePattern = regexp.MustCompile(`\s+`)
)

func MaskPII(value string) string {
	masked := emailPattern.ReplaceAllString(value, "[email_redacted]")
	masked = cardPattern.ReplaceAllStringFunc(masked, maskCardNumber)
	masked = cpfPattern.ReplaceAllString(masked, "***.***.***-**")
	masked = phonePattern.ReplaceAllString(masked, "[phone_redacted]")
	return masked
}

// Preview masks value, collapses whitespace and truncates it to maxRunes.
func Preview(value string, maxRunes int) string {
	collapsed := strings.TrimSpace(spacePattern.ReplaceAllString(MaskPII(value), " "))
	if maxRunes <= 0 || utf8.RuneCountInString(collapsed) <= maxRunes {
		return collapsed
	}
	if maxRunes <= 3 {
		return string([]rune(collapsed)[:maxRunes])
	}
	return string([]rune(collapsed)[:maxRunes-3]) + "..."
}

func maskCardNumber(value string) string {
	digits := make([]rune, 0, len(value))
	for _, char := range value {
		if char >= '0' && char <= '9' {
			digits = append(digits, char)
		}
	}
	if len(digits) < 13 {
		return value
	}
	return "**** **** **** " + string(digits[len(digits)-4:])
}

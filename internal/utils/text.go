package utils

import (
	"strings"
	"unicode/utf8"
)

// TruncateText truncates text to maxLen characters, adding "..." if truncated.
// Newlines become spaces for single-line display. Counts runes, not bytes.
func TruncateText(text string, maxLen int) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxLen-3])) + "..."
}

// EscapeForLogging makes user supplied text safe for a single log line
func EscapeForLogging(text string, maxLen int) string {
	if utf8.RuneCountInString(text) > maxLen {
		text = string([]rune(text)[:maxLen]) + "..."
	}

	text = strings.ReplaceAll(text, "\n", "\\n")
	text = strings.ReplaceAll(text, "\r", "\\r")
	text = strings.ReplaceAll(text, "\t", "\\t")

	return text
}

// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxContentLength is the maximum number of characters in a post or comment.
const MaxContentLength = 280

// NormalizeContent trims surrounding whitespace and checks the length bounds
// shared by posts and comments. Length is counted in characters, not bytes.
func NormalizeContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", fmt.Errorf("content is required")
	}
	if !utf8.ValidString(content) {
		return "", fmt.Errorf("content must be valid UTF-8")
	}
	if n := utf8.RuneCountInString(content); n > MaxContentLength {
		return "", fmt.Errorf("content must not exceed %d characters (got %d)", MaxContentLength, n)
	}
	return content, nil
}

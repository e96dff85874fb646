package normalization

import (
	"strings"
)

func ParseInputString(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	return normalized
}

// ParseSearchQuery keeps inner spacing but lowercases and trims, so that
// multi-word searches match as typed.
func ParseSearchQuery(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

package util

import "strings"

// StripCodeFences removes a surrounding markdown code fence, if present.
// Vision models occasionally wrap plain-text output in ``` blocks.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

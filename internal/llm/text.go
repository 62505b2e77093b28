package llm

import "strings"

// StripCodeFence removes a surrounding Markdown code fence (```json or ```)
// that models sometimes wrap JSON output in.
func StripCodeFence(s string) string {
	clean := strings.TrimSpace(s)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}

// Package followup scans inbound message text for actionable
// sentences at ingestion time.
package followup

import "strings"

var keywords = []string{
	"todo", "please", "can you", "could you", "follow up", "follow-up",
	"remind", "need to",
}

func isBoundary(r rune) bool {
	return r == '\n' || r == '.' || r == '!' || r == '?'
}

// Extract splits text on sentence boundaries (runs of newline/./!/?
// collapse into one) and returns each trimmed segment containing an
// action keyword. Empty or whitespace-only input yields nothing.
func Extract(text string) []string {
	var tasks []string
	for _, segment := range strings.FieldsFunc(text, isBoundary) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		lower := strings.ToLower(segment)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				tasks = append(tasks, segment)
				break
			}
		}
	}
	return tasks
}

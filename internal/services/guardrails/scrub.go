package guardrails

import (
	"regexp"

	"github.com/ternarybob/consilium/internal/models"
)

const redacted = "[REDACTED]"

var piiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
	regexp.MustCompile(`\b0\d{1,2}-?\d{3,4}-?\d{4}\b`),
	regexp.MustCompile(`\b\d{6}-?\d{7}\b`),
	regexp.MustCompile(`\b\d{3,4}-\d{3,4}-\d{3,4}\b`),
	regexp.MustCompile(`(?:이름|성명)\s*[:：]\s*[가-힣]{2,4}`),
}

// ScrubText removes common PII tokens from counselor-facing output
func ScrubText(value string) string {
	scrubbed := value
	for _, pattern := range piiPatterns {
		scrubbed = pattern.ReplaceAllString(scrubbed, redacted)
	}
	return scrubbed
}

// ScrubObservations scrubs PII from trace events so the counselor timeline
// stays compliant. The input slice is not modified.
func ScrubObservations(observations []models.Observation) []models.Observation {
	scrubbed := make([]models.Observation, 0, len(observations))
	for _, item := range observations {
		item.Title = ScrubText(item.Title)
		item.Content = ScrubText(item.Content)
		scrubbed = append(scrubbed, item)
	}
	return scrubbed
}

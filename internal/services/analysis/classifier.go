// Package analysis provides heuristic question classification for routing
// and guardrails. The heuristics are intentionally conservative: when in
// doubt the classifier escalates so downstream components surface the
// physician-consultation message.
package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/consilium/internal/models"
)

// domainRule maps a keyword set to a question domain. Rules are evaluated in
// order; the first match wins.
type domainRule struct {
	domain   string
	keywords []string
}

var domainRules = []domainRule{
	{domain: models.DomainExercise, keywords: []string{"운동", "활동", "걷기", "조깅", "근력", "유산소"}},
	{domain: models.DomainDiet, keywords: []string{"식단", "음식", "칼로리", "식사", "영양", "탄수화물"}},
	{domain: models.DomainMedical, keywords: []string{"약", "처방", "복용", "약물", "증상", "통증"}},
	{domain: models.DomainLifestyle, keywords: []string{"음주", "흡연", "스트레스", "수면", "생활"}},
}

// Safety rules in strict precedence: escalate keywords, escalate patterns,
// caution keywords, caution patterns. First hit short-circuits.
var (
	escalateKeywords = []string{"약", "처방", "복용", "복용량", "응급", "심장", "약물"}
	cautionKeywords  = []string{"질환", "진단", "위험", "검사", "수치", "저혈당", "고혈당"}

	escalatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`부작용`),
		regexp.MustCompile(`통증`),
		regexp.MustCompile(`혈압이\s*높`),
		regexp.MustCompile(`혈당이\s*위험`),
	}
	cautionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`저혈당`),
		regexp.MustCompile(`고혈당`),
	}
)

// connectorTokens signal multi-part questions when combined with a question mark
var connectorTokens = []string{"그리고", "또", "동시에", "뿐만", "그러면", "만약"}

// compoundWordThreshold treats very long questions as compound context
const compoundWordThreshold = 30

// Classifier labels counselor prompts with domain, complexity, and safety
// flags. Deterministic and side-effect-free apart from the latency
// fail-safe: a classification that exceeds its budget is forcibly escalated,
// since a slow classifier is itself treated as an anomaly.
type Classifier struct {
	budget time.Duration
	logger arbor.ILogger
}

// NewClassifier creates a classifier with the given latency budget
func NewClassifier(budget time.Duration, logger arbor.ILogger) *Classifier {
	if budget <= 0 {
		budget = 2 * time.Second
	}
	return &Classifier{
		budget: budget,
		logger: logger,
	}
}

// Analyze classifies a question. Context is accepted for parity with the
// orchestration surface but does not influence classification.
func (c *Classifier) Analyze(question string, context string) models.QuestionAnalysis {
	start := time.Now()
	text := strings.TrimSpace(question)
	reasons := make([]string, 0, 4)

	domain := c.detectDomain(text, &reasons)
	complexity := c.estimateComplexity(text, &reasons)
	safety := c.detectSafety(text, &reasons)

	elapsed := time.Since(start)
	latencyMS := float64(elapsed.Microseconds()) / 1000.0
	if elapsed > c.budget {
		c.logger.Warn().
			Float64("latency_ms", latencyMS).
			Float64("budget_ms", float64(c.budget.Milliseconds())).
			Msg("Question analysis exceeded latency budget")
		// Defensive escalation if the classifier misbehaves
		safety = models.SafetyEscalate
		reasons = append(reasons, "Latency budget exceeded")
	}

	return models.QuestionAnalysis{
		Domain:     domain,
		Complexity: complexity,
		Safety:     safety,
		Reasons:    reasons,
		LatencyMS:  latencyMS,
	}
}

func (c *Classifier) detectDomain(text string, reasons *[]string) string {
	for _, rule := range domainRules {
		if containsAny(text, rule.keywords) {
			*reasons = append(*reasons, fmt.Sprintf("Domain keyword match: %s", rule.domain))
			return rule.domain
		}
	}
	*reasons = append(*reasons, "Defaulted to lifestyle domain")
	return models.DomainLifestyle
}

func (c *Classifier) estimateComplexity(text string, reasons *[]string) string {
	if strings.Contains(text, "?") && containsAny(text, connectorTokens) {
		*reasons = append(*reasons, "Detected multi-hop connectors")
		return models.ComplexityMultiHop
	}
	if strings.Count(text, "?") > 1 {
		*reasons = append(*reasons, "Multiple questions detected")
		return models.ComplexityCompound
	}
	if len(strings.Fields(text)) > compoundWordThreshold {
		*reasons = append(*reasons, "Long question assumes compound context")
		return models.ComplexityCompound
	}
	*reasons = append(*reasons, "Classified as simple question")
	return models.ComplexitySimple
}

func (c *Classifier) detectSafety(text string, reasons *[]string) models.SafetyLevel {
	for _, keyword := range escalateKeywords {
		if strings.Contains(text, keyword) {
			*reasons = append(*reasons, fmt.Sprintf("Escalate keyword hit: %s", keyword))
			return models.SafetyEscalate
		}
	}
	for _, pattern := range escalatePatterns {
		if pattern.MatchString(text) {
			*reasons = append(*reasons, fmt.Sprintf("Escalate pattern hit: %s", pattern.String()))
			return models.SafetyEscalate
		}
	}
	for _, keyword := range cautionKeywords {
		if strings.Contains(text, keyword) {
			*reasons = append(*reasons, fmt.Sprintf("Caution keyword hit: %s", keyword))
			return models.SafetyCaution
		}
	}
	for _, pattern := range cautionPatterns {
		if pattern.MatchString(text) {
			*reasons = append(*reasons, fmt.Sprintf("Caution pattern hit: %s", pattern.String()))
			return models.SafetyCaution
		}
	}
	*reasons = append(*reasons, "No safety flags detected")
	return models.SafetyClear
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

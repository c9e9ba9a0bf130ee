// Package guardrails maps classifier output to counselor-facing safety
// messaging and keeps answers and timelines free of PII.
package guardrails

import (
	"strings"

	"github.com/ternarybob/consilium/internal/models"
)

// EscalationSentence is appended to caution-level answers in both languages
const (
	EscalationSentenceKO = "의학적 판단이 필요한 주제입니다. 치료 결정은 반드시 담당 의사와 상의해 주세요."
	EscalationSentenceEN = "This topic requires medical supervision. Consult the attending physician for any treatment decisions."
)

// escalationCopy joins the localized escalation sentences
func escalationCopy() string {
	return EscalationSentenceKO + " " + EscalationSentenceEN
}

// AnswerOverride is the fixed reply used when a question escalates. All
// evidence and citations are suppressed alongside it.
const AnswerOverride = "현재 질문은 의학적 판단이 필요한 주제입니다. 일반적인 생활 정보를 제외한 구체적인 답변은 제공할 수 없으며, " +
	"필수 안내: 담당 의사와 즉시 상담해 주세요. (Consult the attending physician.)"

// BuildSafetyEnvelope maps classifier output to guardrail messaging
func BuildSafetyEnvelope(analysis models.QuestionAnalysis) models.SafetyEnvelope {
	switch analysis.Safety {
	case models.SafetyEscalate:
		return models.SafetyEnvelope{
			Level:          analysis.Safety,
			BannerTitle:    "의료 에스컬레이션 필요",
			BannerBody:     "이 질문은 의료 전문가의 직접적인 판단이 필요한 주제입니다.",
			EscalationCopy: escalationCopy(),
			AnswerOverride: AnswerOverride,
		}
	case models.SafetyCaution:
		return models.SafetyEnvelope{
			Level:          analysis.Safety,
			BannerTitle:    "의학적 주의가 필요한 내용",
			BannerBody:     "상담 시 근거 자료를 강조하며 의료진 확인이 필요함을 함께 안내하세요.",
			EscalationCopy: escalationCopy(),
		}
	default:
		return models.SafetyEnvelope{Level: analysis.Safety}
	}
}

// AppendCautionGuidance appends the escalation guidance to an answer when the
// classifier signals caution. Idempotent: guidance already present is never
// duplicated, and the join respects trailing punctuation.
func AppendCautionGuidance(answer string, envelope models.SafetyEnvelope) string {
	guidance := strings.TrimSpace(envelope.EscalationCopy)
	if guidance == "" {
		return answer
	}
	if strings.Contains(answer, guidance) {
		return answer
	}
	if strings.HasSuffix(answer, ".") {
		return answer + " " + guidance
	}
	return answer + ". " + guidance
}

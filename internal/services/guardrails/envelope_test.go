package guardrails

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/consilium/internal/models"
)

func TestBuildSafetyEnvelope_Escalate(t *testing.T) {
	envelope := BuildSafetyEnvelope(models.QuestionAnalysis{Safety: models.SafetyEscalate})

	assert.Equal(t, models.SafetyEscalate, envelope.Level)
	assert.NotEmpty(t, envelope.BannerTitle)
	assert.Contains(t, envelope.EscalationCopy, EscalationSentenceKO)
	assert.Contains(t, envelope.EscalationCopy, EscalationSentenceEN)
	require.NotEmpty(t, envelope.AnswerOverride)
	assert.Contains(t, envelope.AnswerOverride, "담당 의사")
}

func TestBuildSafetyEnvelope_Caution(t *testing.T) {
	envelope := BuildSafetyEnvelope(models.QuestionAnalysis{Safety: models.SafetyCaution})

	assert.Equal(t, models.SafetyCaution, envelope.Level)
	assert.NotEmpty(t, envelope.EscalationCopy)
	assert.Empty(t, envelope.AnswerOverride)
}

func TestBuildSafetyEnvelope_Clear(t *testing.T) {
	envelope := BuildSafetyEnvelope(models.QuestionAnalysis{Safety: models.SafetyClear})

	assert.Equal(t, models.SafetyClear, envelope.Level)
	assert.Empty(t, envelope.BannerTitle)
	assert.Empty(t, envelope.EscalationCopy)
	assert.Empty(t, envelope.AnswerOverride)
}

func TestAppendCautionGuidance_Idempotent(t *testing.T) {
	envelope := BuildSafetyEnvelope(models.QuestionAnalysis{Safety: models.SafetyCaution})

	once := AppendCautionGuidance("혈당 관리에는 규칙적인 식사가 도움이 됩니다", envelope)
	twice := AppendCautionGuidance(once, envelope)

	assert.Equal(t, once, twice)
	assert.Contains(t, once, EscalationSentenceKO)
}

func TestAppendCautionGuidance_TrailingPeriod(t *testing.T) {
	envelope := BuildSafetyEnvelope(models.QuestionAnalysis{Safety: models.SafetyCaution})

	joined := AppendCautionGuidance("규칙적인 식사가 도움이 됩니다.", envelope)

	assert.NotContains(t, joined, ".. ")
	assert.Contains(t, joined, "됩니다. 의학적")
}

func TestAppendCautionGuidance_ClearLeavesAnswer(t *testing.T) {
	envelope := BuildSafetyEnvelope(models.QuestionAnalysis{Safety: models.SafetyClear})

	assert.Equal(t, "answer", AppendCautionGuidance("answer", envelope))
}

package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/consilium/internal/common"
	"github.com/ternarybob/consilium/internal/models"
)

func newTestClassifier() *Classifier {
	return NewClassifier(2*time.Second, common.GetLogger())
}

func TestClassifier_Analyze(t *testing.T) {
	classifier := newTestClassifier()

	tests := []struct {
		name               string
		question           string
		expectedDomain     string
		expectedComplexity string
		expectedSafety     models.SafetyLevel
	}{
		{
			name:               "medication question escalates",
			question:           "약을 줄여도 되나요?",
			expectedDomain:     models.DomainMedical,
			expectedComplexity: models.ComplexitySimple,
			expectedSafety:     models.SafetyEscalate,
		},
		{
			name:               "standalone pain complaint escalates",
			question:           "무릎 통증 때문에 걷기가 힘들어요",
			expectedDomain:     models.DomainExercise,
			expectedComplexity: models.ComplexitySimple,
			expectedSafety:     models.SafetyEscalate,
		},
		{
			name:               "exercise question is clear",
			question:           "운동은 얼마나 해야 하나요?",
			expectedDomain:     models.DomainExercise,
			expectedComplexity: models.ComplexitySimple,
			expectedSafety:     models.SafetyClear,
		},
		{
			name:               "diet question",
			question:           "어떤 식단이 좋나요?",
			expectedDomain:     models.DomainDiet,
			expectedComplexity: models.ComplexitySimple,
			expectedSafety:     models.SafetyClear,
		},
		{
			name:               "blood sugar caution",
			question:           "혈당 수치가 높으면 어떻게 하나요?",
			expectedDomain:     models.DomainLifestyle,
			expectedComplexity: models.ComplexitySimple,
			expectedSafety:     models.SafetyCaution,
		},
		{
			name:               "connector plus question mark is multi-hop",
			question:           "운동을 하고 그리고 식단도 바꿔야 하나요?",
			expectedDomain:     models.DomainExercise,
			expectedComplexity: models.ComplexityMultiHop,
			expectedSafety:     models.SafetyClear,
		},
		{
			name:               "two question marks is compound",
			question:           "운동은 얼마나? 식사는 어떻게?",
			expectedDomain:     models.DomainExercise,
			expectedComplexity: models.ComplexityCompound,
			expectedSafety:     models.SafetyClear,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.Analyze(tt.question, "")
			assert.Equal(t, tt.expectedDomain, result.Domain)
			assert.Equal(t, tt.expectedComplexity, result.Complexity)
			assert.Equal(t, tt.expectedSafety, result.Safety)
			assert.NotEmpty(t, result.Reasons)
		})
	}
}

func TestClassifier_DomainOrder(t *testing.T) {
	classifier := newTestClassifier()

	// Exercise is checked before diet, so a question mentioning both lands on exercise
	result := classifier.Analyze("운동과 식단 중 무엇이 먼저인가요?", "")
	assert.Equal(t, models.DomainExercise, result.Domain)

	// No domain keyword defaults to lifestyle
	result = classifier.Analyze("오늘 기분이 어떤가요?", "")
	assert.Equal(t, models.DomainLifestyle, result.Domain)
	assert.Contains(t, result.Reasons, "Defaulted to lifestyle domain")
}

func TestClassifier_EscalatePrecedence(t *testing.T) {
	classifier := newTestClassifier()

	// Escalate keywords win over caution keywords regardless of order in text
	result := classifier.Analyze("검사 결과에 따라 약을 바꿔야 하나요?", "")
	assert.Equal(t, models.SafetyEscalate, result.Safety)
}

func TestClassifier_LatencyFailSafe(t *testing.T) {
	// A nanosecond budget is always exceeded, forcing escalation
	classifier := NewClassifier(time.Nanosecond, common.GetLogger())

	result := classifier.Analyze("운동은 얼마나 해야 하나요?", "")
	assert.Equal(t, models.SafetyEscalate, result.Safety)
	assert.Contains(t, result.Reasons, "Latency budget exceeded")
}

package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/models"
)

func newTestSelector() *Selector {
	return NewSelector(arbor.NewLogger())
}

func TestSelector_DecisionTable(t *testing.T) {
	selector := newTestSelector()

	tests := []struct {
		name       string
		question   string
		complexity string
		mode       string
		expected   models.StrategyName
	}{
		{
			name:       "simple question goes to vector",
			question:   "운동은 얼마나 해야 하나요?",
			complexity: models.ComplexitySimple,
			mode:       models.ModeLive,
			expected:   models.StrategyVector,
		},
		{
			name:       "simple with relationship keyword goes to graph",
			question:   "운동과 혈당의 관계가 궁금해요?",
			complexity: models.ComplexitySimple,
			mode:       models.ModeLive,
			expected:   models.StrategyGraph,
		},
		{
			name:       "simple with connector decomposes",
			question:   "운동하고 그리고 식단 조절도 해야 하나요?",
			complexity: models.ComplexitySimple,
			mode:       models.ModeLive,
			expected:   models.StrategyDecompose,
		},
		{
			name:       "simple with two question marks decomposes",
			question:   "운동은? 식사는?",
			complexity: models.ComplexitySimple,
			mode:       models.ModeLive,
			expected:   models.StrategyDecompose,
		},
		{
			name:       "multi-hop with relationship goes to graph",
			question:   "식단이 수면에 미치는 영향은 무엇인가요?",
			complexity: models.ComplexityMultiHop,
			mode:       models.ModeLive,
			expected:   models.StrategyGraph,
		},
		{
			name:       "multi-hop without markers goes to vector",
			question:   "혈당 조절 방법이 궁금합니다",
			complexity: models.ComplexityMultiHop,
			mode:       models.ModeLive,
			expected:   models.StrategyVector,
		},
		{
			name:       "compound decomposes",
			question:   "운동은 어떻게 하나요?",
			complexity: models.ComplexityCompound,
			mode:       models.ModeLive,
			expected:   models.StrategyDecompose,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := models.QuestionAnalysis{Complexity: tt.complexity}
			result := selector.Select(analysis, tt.question, tt.mode)
			assert.Equal(t, tt.expected, result.Name)
		})
	}
}

func TestSelector_ModeScaling(t *testing.T) {
	selector := newTestSelector()
	analysis := models.QuestionAnalysis{Complexity: models.ComplexitySimple}

	live := selector.Select(analysis, "운동은 얼마나 해야 하나요?", models.ModeLive)
	prep := selector.Select(analysis, "운동은 얼마나 해야 하나요?", models.ModePreparation)

	assert.Equal(t, 3, live.VectorK)
	assert.Equal(t, 5, prep.VectorK)
}

func TestSelector_ModeScalingComplex(t *testing.T) {
	selector := newTestSelector()
	analysis := models.QuestionAnalysis{Complexity: models.ComplexityMultiHop}

	live := selector.Select(analysis, "혈당 조절 방법이 궁금합니다", models.ModeLive)
	prep := selector.Select(analysis, "혈당 조절 방법이 궁금합니다", models.ModePreparation)

	assert.Equal(t, 5, live.VectorK)
	assert.Equal(t, 7, prep.VectorK)
}

func TestSelector_LongQuestionDecomposes(t *testing.T) {
	selector := newTestSelector()
	analysis := models.QuestionAnalysis{Complexity: models.ComplexitySimple}

	long := make([]rune, 0, 120)
	for i := 0; i < 120; i++ {
		long = append(long, '가')
	}
	result := selector.Select(analysis, string(long), models.ModeLive)

	assert.Equal(t, models.StrategyDecompose, result.Name)
	assert.Equal(t, 5, result.SubLimit)
}

func TestSelector_PreparationGraphK(t *testing.T) {
	selector := newTestSelector()
	analysis := models.QuestionAnalysis{Complexity: models.ComplexitySimple}

	result := selector.Select(analysis, "운동과 혈당의 관계?", models.ModePreparation)

	assert.Equal(t, models.StrategyGraph, result.Name)
	assert.Equal(t, 7, result.GraphK)
}

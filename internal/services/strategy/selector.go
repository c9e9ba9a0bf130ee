// Package strategy decides how a classified question is retrieved: direct
// vector search, graph traversal, or decomposition into sub-questions.
package strategy

import (
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/models"
)

var connectorTokens = []string{"그리고", "및", "또", "동시에", "고 ", " 고 ", "며", " 와 ", " 과 "}

var relationshipKeywords = []string{"관계", "영향", "연관", "비교", "차이", "상관", "함께", "동시에"}

// decomposeLengthThreshold marks long simple questions for decomposition
const decomposeLengthThreshold = 100

// Selector maps question analysis to a retrieval strategy with
// mode-scaled parameters.
type Selector struct {
	logger arbor.ILogger
}

func NewSelector(logger arbor.ILogger) *Selector {
	return &Selector{logger: logger}
}

// modeParams returns the top-k budget for the given retrieval mode.
// Preparation mode runs without a counselor waiting, so it fetches wider.
func modeParams(mode string) (vectorKSimple, vectorKComplex, graphK, subLimit int) {
	if mode == models.ModeLive {
		return 3, 5, 5, 5
	}
	return 5, 7, 7, 7
}

// Select applies the strategy decision table
func (s *Selector) Select(analysis models.QuestionAnalysis, question, mode string) models.Strategy {
	trimmed := strings.TrimSpace(question)
	hasConnector := containsAny(trimmed, connectorTokens)
	hasRelationship := containsAny(trimmed, relationshipKeywords)
	multipleQuestions := strings.Count(trimmed, "?") >= 2

	vectorKSimple, vectorKComplex, graphK, subLimit := modeParams(mode)

	var chosen models.Strategy
	switch analysis.Complexity {
	case models.ComplexitySimple:
		switch {
		case hasRelationship:
			chosen = models.Strategy{Name: models.StrategyGraph, GraphK: graphK}
		case hasConnector || multipleQuestions || len([]rune(trimmed)) >= decomposeLengthThreshold:
			chosen = models.Strategy{Name: models.StrategyDecompose, SubLimit: subLimit}
		default:
			chosen = models.Strategy{Name: models.StrategyVector, VectorK: vectorKSimple}
		}
	case models.ComplexityMultiHop:
		if hasRelationship || hasConnector {
			chosen = models.Strategy{Name: models.StrategyGraph, GraphK: graphK}
		} else {
			chosen = models.Strategy{Name: models.StrategyVector, VectorK: vectorKComplex}
		}
	default:
		// Compound and long questions get decomposed
		chosen = models.Strategy{Name: models.StrategyDecompose, SubLimit: subLimit}
	}

	s.logger.Debug().
		Str("strategy", string(chosen.Name)).
		Str("mode", mode).
		Str("complexity", analysis.Complexity).
		Msg("Retrieval strategy selected")
	return chosen
}

func containsAny(text string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

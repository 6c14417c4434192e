// internal/narrative/character.go
package narrative

import (
	"fmt"
	"strings"

	"github.com/Corphon/NarrativeDNA/internal/lexicon"
	"github.com/Corphon/NarrativeDNA/internal/models"
)

const (
	minNameOccurrences = 3
	minNameLength      = 3
	maxCandidates      = 10
	maxCharacterArcs   = 5
	// one candidate beyond the tracked arcs is still paired for relationships
	relationshipPool = maxCharacterArcs + 1
	growthPerMarker  = 5
	maxArcStrength   = 10
	maxEdgeStrength  = 10
)

// CharacterAnalyzer extracts recurring names and measures how they develop
// and which of them share sentences.
type CharacterAnalyzer struct {
	lex         *lexicon.Lexicon
	development []string
}

// NewCharacterAnalyzer 创建角色分析器
func NewCharacterAnalyzer(lex *lexicon.Lexicon) *CharacterAnalyzer {
	return &CharacterAnalyzer{lex: lex, development: lex.DevelopmentWords()}
}

// Analyze computes growth, the relationship matrix and per-character arcs.
// All three read the same candidate list.
func (a *CharacterAnalyzer) Analyze(c *Corpus) models.CharacterDevelopment {
	cast := a.Candidates(c.FullText)
	sentences := splitSentences(c.FullText)

	return models.CharacterDevelopment{
		ProtagonistGrowth:  fmt.Sprintf("%d%% completed", a.Growth(c.FullLower)),
		RelationshipMatrix: a.relationships(cast, sentences),
		CharacterArcs:      a.arcs(cast, sentences, c.FullLower),
	}
}

// Candidates returns capitalized tokens seen at least three times, in order of
// first appearance, excluding stop words, capped at ten.
func (a *CharacterAnalyzer) Candidates(text string) []string {
	counts := make(map[string]int)
	var order []string
	for _, token := range candidateTokens(text) {
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	names := make([]string, 0, maxCandidates)
	for _, token := range order {
		if counts[token] < minNameOccurrences || a.lex.IsStopWord(token) || len(token) < minNameLength {
			continue
		}
		names = append(names, token)
		if len(names) == maxCandidates {
			break
		}
	}
	return names
}

// Growth is the protagonist growth percentage in [0, 100].
func (a *CharacterAnalyzer) Growth(lower string) int {
	return clamp(countAll(lower, a.development)*growthPerMarker, 0, 100)
}

func (a *CharacterAnalyzer) relationships(cast, sentences []string) models.RelationshipMatrix {
	matrix := make(models.RelationshipMatrix)
	if len(cast) < 2 {
		return matrix
	}

	lowered := make([]string, len(cast))
	for i, name := range cast {
		lowered[i] = strings.ToLower(name)
	}

	for i := 0; i < min(maxCharacterArcs, len(cast)); i++ {
		for j := i + 1; j < min(relationshipPool, len(cast)); j++ {
			together := 0
			for _, sentence := range sentences {
				if strings.Contains(sentence, lowered[i]) && strings.Contains(sentence, lowered[j]) {
					together++
				}
			}
			if together > 0 {
				matrix[models.PairKey(cast[i], cast[j])] = models.RelationshipEdge{
					Strength: min(maxEdgeStrength, together),
					Type:     models.RelationshipConnected,
				}
			}
		}
	}
	return matrix
}

func (a *CharacterAnalyzer) arcs(cast, sentences []string, fullLower string) []models.CharacterArc {
	arcs := make([]models.CharacterArc, 0, maxCharacterArcs)
	for _, name := range cast[:min(maxCharacterArcs, len(cast))] {
		lowered := strings.ToLower(name)
		markers := 0
		for _, sentence := range sentences {
			if strings.Contains(sentence, lowered) && containsAny(sentence, a.development) {
				markers++
			}
		}
		arcs = append(arcs, models.CharacterArc{
			Name:         name,
			ArcStrength:  min(maxArcStrength, markers),
			MentionCount: strings.Count(fullLower, lowered),
		})
	}
	return arcs
}

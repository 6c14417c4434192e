// internal/narrative/insight.go
package narrative

import (
	"strings"
)

// FallbackInsight is emitted when no rule matches.
const FallbackInsight = "Unique narrative structure — forge your own path!"

// InsightRule emits Insight when every condition holds. Zero thresholds are
// not checked.
type InsightRule struct {
	MinScenes  int      // scene count >= MinScenes
	WordsAbove int      // word count > WordsAbove
	Requires   []string // each must occur in the lowercased full text
	Insight    string
}

// DefaultInsightRules are evaluated in declaration order.
var DefaultInsightRules = []InsightRule{
	{
		MinScenes: 10,
		Requires:  []string{"mystery"},
		Insight:   "Your structure resembles Agatha Christie's mysteries with multiple scenes building tension",
	},
	{
		WordsAbove: 5000,
		Requires:   []string{"character"},
		Insight:    "Character dynamics similar to ensemble narratives like 'Game of Thrones'",
	},
	{
		Requires: []string{"love", "conflict"},
		Insight:  "Romance with conflict elements reminiscent of Jane Austen's style",
	},
}

// InsightGenerator turns aggregate statistics into comparative commentary.
type InsightGenerator struct {
	rules []InsightRule
}

// NewInsightGenerator 创建洞察生成器
func NewInsightGenerator(rules []InsightRule) *InsightGenerator {
	return &InsightGenerator{rules: append([]InsightRule(nil), rules...)}
}

// Generate returns at least one insight.
func (g *InsightGenerator) Generate(c *Corpus) []string {
	insights := []string{}
	for _, rule := range g.rules {
		if rule.matches(len(c.Scenes), c.WordCount, c.FullLower) {
			insights = append(insights, rule.Insight)
		}
	}
	if len(insights) == 0 {
		insights = append(insights, FallbackInsight)
	}
	return insights
}

func (r InsightRule) matches(scenes, words int, lower string) bool {
	if r.MinScenes > 0 && scenes < r.MinScenes {
		return false
	}
	if r.WordsAbove > 0 && words <= r.WordsAbove {
		return false
	}
	for _, word := range r.Requires {
		if !strings.Contains(lower, word) {
			return false
		}
	}
	return true
}

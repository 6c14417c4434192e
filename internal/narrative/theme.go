// internal/narrative/theme.go
package narrative

import (
	"github.com/Corphon/NarrativeDNA/internal/lexicon"
	"github.com/Corphon/NarrativeDNA/internal/models"
)

const consistencyScale = 1000

// ThemeScore is the raw keyword tally of one theme.
type ThemeScore struct {
	Theme models.Theme
	Score int
}

// ThemeAnalyzer picks the dominant theme and tracks it scene by scene.
type ThemeAnalyzer struct {
	themes []lexicon.ThemeCategory
}

// NewThemeAnalyzer 创建主题分析器
func NewThemeAnalyzer(lex *lexicon.Lexicon) *ThemeAnalyzer {
	return &ThemeAnalyzer{themes: lex.Themes()}
}

// Scores tallies every theme over lowercased text, in declaration order.
func (a *ThemeAnalyzer) Scores(lower string) []ThemeScore {
	scores := make([]ThemeScore, len(a.themes))
	for i, category := range a.themes {
		scores[i] = ThemeScore{Theme: category.Theme, Score: countAll(lower, category.Keywords)}
	}
	return scores
}

// Analyze reports the core theme, how densely it appears and where.
func (a *ThemeAnalyzer) Analyze(c *Corpus) models.ThemeConsistency {
	result := models.ThemeConsistency{
		CoreTheme:     models.ThemeNone,
		ThemeMentions: []models.ThemeMention{},
	}

	core := -1
	best := 0
	for i, s := range a.Scores(c.FullLower) {
		if s.Score > best {
			core, best = i, s.Score
		}
	}
	if core < 0 {
		return result
	}

	category := a.themes[core]
	result.CoreTheme = category.Theme
	result.ConsistencyScore = clamp(roundHalfUp(best*consistencyScale, max(1, c.WordCount)), 0, 100)

	for _, scene := range c.Scenes {
		if n := countAll(scene.Lower, category.Keywords); n > 0 {
			result.ThemeMentions = append(result.ThemeMentions, models.ThemeMention{
				SceneIndex: scene.Index,
				Title:      scene.Title,
				Mentions:   n,
			})
		}
	}
	return result
}

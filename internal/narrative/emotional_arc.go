// internal/narrative/emotional_arc.go
package narrative

import (
	"github.com/Corphon/NarrativeDNA/internal/lexicon"
	"github.com/Corphon/NarrativeDNA/internal/models"
)

const (
	tensionPerKeyword = 10
	tensionBoost      = 30
	maxTension        = 100

	// NoPeakIdentified is the peak moment of a story without scenes.
	NoPeakIdentified = "No peak identified"
)

// EmotionalArcAnalyzer scores tension per scene and tags its dominant emotion.
type EmotionalArcAnalyzer struct {
	emotions []lexicon.EmotionCategory
	tension  []string
	boosters []string
}

// NewEmotionalArcAnalyzer 创建情感弧线分析器
func NewEmotionalArcAnalyzer(lex *lexicon.Lexicon) *EmotionalArcAnalyzer {
	return &EmotionalArcAnalyzer{
		emotions: lex.Emotions(),
		tension:  lex.EmotionKeywords(models.EmotionTension),
		boosters: lex.TensionBoosters(),
	}
}

// Analyze builds the arc over the chronologically ordered scenes.
func (a *EmotionalArcAnalyzer) Analyze(c *Corpus) models.EmotionalArc {
	arc := models.EmotionalArc{
		PeakMoment:      NoPeakIdentified,
		EmotionalPoints: make([]models.EmotionalPoint, 0, len(c.Scenes)),
	}
	if len(c.Scenes) == 0 {
		return arc
	}

	sum, peak := 0, -1
	for _, scene := range c.Scenes {
		score := a.SceneTension(scene.Lower)
		sum += score
		// strict comparison keeps the earliest scene on ties
		if score > peak {
			peak = score
			arc.PeakMoment = scene.Title
		}
		arc.EmotionalPoints = append(arc.EmotionalPoints, models.EmotionalPoint{
			SceneIndex:      scene.Index,
			Title:           scene.Title,
			TensionScore:    score,
			DominantEmotion: a.DominantEmotion(scene.Lower),
		})
	}
	arc.TensionScore = sum / len(c.Scenes)
	return arc
}

// SceneTension scores lowercased scene text in [0, 100].
func (a *EmotionalArcAnalyzer) SceneTension(lower string) int {
	score := tensionPerKeyword * countAll(lower, a.tension)
	if containsAny(lower, a.boosters) {
		score += tensionBoost
	}
	return clamp(score, 0, maxTension)
}

// DominantEmotion picks the category with the most keyword hits; ties go to
// the category declared first, no hits at all is neutral.
func (a *EmotionalArcAnalyzer) DominantEmotion(lower string) models.Emotion {
	best, bestCount := models.EmotionNeutral, 0
	for _, category := range a.emotions {
		if n := countAll(lower, category.Keywords); n > bestCount {
			best, bestCount = category.Emotion, n
		}
	}
	return best
}

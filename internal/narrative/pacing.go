// internal/narrative/pacing.go
package narrative

import (
	"fmt"

	"github.com/Corphon/NarrativeDNA/internal/lexicon"
	"github.com/Corphon/NarrativeDNA/internal/models"
)

const (
	// DefaultRatio is reported when no pacing indicator occurs at all.
	DefaultRatio = "50/50"

	slowSceneMinWords = 100
	minPacingScore    = 10
	maxPacingScore    = 100
)

// PacingCounts are the raw indicator tallies over the full text.
type PacingCounts struct {
	Action      int
	Dialogue    int
	Description int
}

// PacingAnalyzer balances action and dialogue against description.
type PacingAnalyzer struct {
	action      []string
	dialogue    []string
	description []string
}

// NewPacingAnalyzer 创建节奏分析器
func NewPacingAnalyzer(lex *lexicon.Lexicon) *PacingAnalyzer {
	return &PacingAnalyzer{
		action:      lex.ActionWords(),
		dialogue:    lex.DialogueMarkers(),
		description: lex.DescriptionWords(),
	}
}

// Count tallies the indicators. Dialogue markers are matched on the original
// text, keywords on the lowercased text.
func (a *PacingAnalyzer) Count(c *Corpus) PacingCounts {
	return PacingCounts{
		Action:      countAll(c.FullLower, a.action),
		Dialogue:    countAll(c.FullText, a.dialogue),
		Description: countAll(c.FullLower, a.description),
	}
}

// Analyze computes the ratio string, slow sections and pacing score.
func (a *PacingAnalyzer) Analyze(c *Corpus) models.PacingAnalysis {
	counts := a.Count(c)
	return models.PacingAnalysis{
		ActionVsDialogueRatio: Ratio(counts),
		SlowSections:          a.slowSections(c),
		PacingScore:           clamp(counts.Action*2+counts.Dialogue/2, minPacingScore, maxPacingScore),
	}
}

// Ratio renders "A/B" where A is the rounded action plus dialogue share and
// B the remainder. Each share is rounded half up; A is capped at 100 so the
// two sides always sum to 100.
func Ratio(counts PacingCounts) string {
	total := counts.Action + counts.Dialogue + counts.Description
	if total <= 0 {
		return DefaultRatio
	}
	action := roundHalfUp(counts.Action*100, total)
	dialogue := roundHalfUp(counts.Dialogue*100, total)
	combined := min(100, action+dialogue)
	return fmt.Sprintf("%d/%d", combined, 100-combined)
}

func (a *PacingAnalyzer) slowSections(c *Corpus) []string {
	slow := []string{}
	for _, scene := range c.Scenes {
		if wordCount(scene.Lower) > slowSceneMinWords && countAll(scene.Lower, a.action) == 0 {
			slow = append(slow, fmt.Sprintf("Scene %d: %s", scene.Index, scene.Title))
		}
	}
	return slow
}

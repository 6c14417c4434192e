// internal/narrative/normalizer.go
package narrative

import (
	"slices"
	"strings"

	"github.com/Corphon/NarrativeDNA/internal/models"
)

// CanonicalScene is one scene after markup removal, in chronological position.
type CanonicalScene struct {
	Index int // 1-based, after sorting
	Title string
	Text  string
	Lower string
}

// Corpus is the canonical form every analyzer reads.
type Corpus struct {
	Scenes    []CanonicalScene
	FullText  string
	FullLower string
	WordCount int
}

// Normalize orders scenes by creation time (stable, so ties keep arrival
// order), strips markup and joins the non-blank scene texts into the full text.
// It never rejects input.
func Normalize(scenes []models.Scene) *Corpus {
	ordered := slices.Clone(scenes)
	slices.SortStableFunc(ordered, func(a, b models.Scene) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	corpus := &Corpus{Scenes: make([]CanonicalScene, 0, len(ordered))}
	parts := make([]string, 0, len(ordered))
	for i, scene := range ordered {
		text := stripMarkup(scene.Content)
		corpus.Scenes = append(corpus.Scenes, CanonicalScene{
			Index: i + 1,
			Title: scene.Title,
			Text:  text,
			Lower: strings.ToLower(text),
		})
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	corpus.FullText = strings.Join(parts, " ")
	corpus.FullLower = strings.ToLower(corpus.FullText)
	corpus.WordCount = wordCount(corpus.FullText)
	return corpus
}

package narrative

import (
	"strings"
	"time"

	"github.com/Corphon/NarrativeDNA/internal/lexicon"
	"github.com/Corphon/NarrativeDNA/internal/models"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func scene(id, title, content string, minute int) models.Scene {
	return models.Scene{
		ID:        id,
		Title:     title,
		Content:   content,
		CreatedAt: baseTime.Add(time.Duration(minute) * time.Minute),
		Status:    models.SceneStatusDraft,
	}
}

func corpusOf(contents ...string) *Corpus {
	scenes := make([]models.Scene, len(contents))
	for i, content := range contents {
		scenes[i] = scene("s"+string(rune('a'+i)), "Scene "+string(rune('A'+i)), content, i)
	}
	return Normalize(scenes)
}

func repeat(word string, n int) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func defaultLexicon() *lexicon.Lexicon {
	return lexicon.Default()
}

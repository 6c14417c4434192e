package narrative

import (
	"testing"

	"github.com/Corphon/NarrativeDNA/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_OrdersByCreationTimeStably(t *testing.T) {
	scenes := []models.Scene{
		scene("3", "Third", "c", 20),
		scene("1a", "First", "a", 0),
		scene("2", "Second", "b", 10),
		scene("1b", "Also first", "a2", 0),
	}

	corpus := Normalize(scenes)

	require.Len(t, corpus.Scenes, 4)
	titles := make([]string, 0, 4)
	for i, s := range corpus.Scenes {
		assert.Equal(t, i+1, s.Index)
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"First", "Also first", "Second", "Third"}, titles)
	assert.Equal(t, "a a2 b c", corpus.FullText)
	assert.Equal(t, "3", scenes[0].ID, "input slice is not reordered")
}

func TestNormalize_StripsMarkup(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"simple tags", "<p>Hello <b>world</b></p>", "Hello world"},
		{"attributes", `<span class="x">Hi</span>`, "Hi"},
		{"no nesting assumed", "<<b>x>", "x>"},
		{"entities kept", "Tom &amp; Jerry", "Tom &amp; Jerry"},
		{"empty brackets kept", "a <> b", "a <> b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corpus := corpusOf(tt.content)
			assert.Equal(t, tt.want, corpus.Scenes[0].Text)
		})
	}
}

func TestNormalize_BlankSceneKeepsIndex(t *testing.T) {
	corpus := corpusOf("Hello", "<br/>  ", "  World ")

	require.Len(t, corpus.Scenes, 3)
	assert.Equal(t, 2, corpus.Scenes[1].Index)
	assert.Equal(t, "  ", corpus.Scenes[1].Text)
	assert.Equal(t, "Hello World", corpus.FullText)
	assert.Equal(t, "hello world", corpus.FullLower)
	assert.Equal(t, 2, corpus.WordCount)
}

func TestNormalize_EmptyInput(t *testing.T) {
	corpus := Normalize(nil)

	assert.Empty(t, corpus.Scenes)
	assert.Equal(t, "", corpus.FullText)
	assert.Equal(t, 0, corpus.WordCount)
}

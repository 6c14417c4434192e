package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Corphon/NarrativeDNA/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const minimal = `
emotions:
  - name: Tension
    keywords: [Danger]
themes:
  - name: power
    keywords: [Rule]
pacing:
  action: [RAN]
  dialogue: ['"']
  description: [dark]
stop_words: [The]
development_words: [Learned]
`

func TestDefault(t *testing.T) {
	lex := Default()

	require.NoError(t, lex.Validate())
	assert.Same(t, lex, Default())

	emotions := lex.Emotions()
	require.Len(t, emotions, 5)
	assert.Equal(t, models.EmotionTension, emotions[0].Emotion)
	assert.Equal(t, models.EmotionLove, emotions[4].Emotion)

	themes := lex.Themes()
	require.Len(t, themes, 7)
	assert.Equal(t, models.ThemeLove, themes[0].Theme)
	assert.Equal(t, models.ThemeJustice, themes[6].Theme)
	assert.Contains(t, lex.ThemeKeywords(models.ThemeRedemption), "second chance")

	assert.Equal(t, []string{"climax", "confrontation", "revelation"}, lex.TensionBoosters())
	assert.Equal(t, []string{`"`, "'"}, lex.DialogueMarkers())
	assert.Len(t, lex.DevelopmentWords(), 10)
	assert.True(t, lex.IsStopWord("The"))
	assert.False(t, lex.IsStopWord("the"))
}

func TestParse_LowercasesScoringKeywords(t *testing.T) {
	lex, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, []string{"danger"}, lex.EmotionKeywords(models.EmotionTension))
	assert.Equal(t, []string{"rule"}, lex.ThemeKeywords(models.ThemePower))
	assert.Equal(t, []string{"ran"}, lex.ActionWords())
	assert.Equal(t, []string{"learned"}, lex.DevelopmentWords())
	assert.Nil(t, lex.EmotionKeywords(models.EmotionJoy))
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed yaml", "emotions: [unclosed"},
		{"neutral emotion", "emotions:\n  - name: neutral\n    keywords: [x]\n"},
		{"unknown theme", "emotions:\n  - name: joy\n    keywords: [x]\nthemes:\n  - name: heists\n    keywords: [x]\n"},
		{"duplicate emotion", "emotions:\n  - name: joy\n    keywords: [x]\n  - name: joy\n    keywords: [y]\n"},
		{"empty keywords", "emotions:\n  - name: joy\n    keywords: []\n"},
		{"missing tables", "emotions:\n  - name: joy\n    keywords: [x]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	lex := Default()

	words := lex.ActionWords()
	words[0] = "mutated"
	themes := lex.Themes()
	themes[0].Keywords[0] = "mutated"

	assert.NotEqual(t, "mutated", lex.ActionWords()[0])
	assert.NotEqual(t, "mutated", lex.Themes()[0].Keywords[0])
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o644))

	lex, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, lex.Themes(), 1)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestMarshalYAML_RoundTrip(t *testing.T) {
	out, err := yaml.Marshal(Default())
	require.NoError(t, err)

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, Default().Themes(), again.Themes())
	assert.Equal(t, Default().Emotions(), again.Emotions())
	assert.True(t, again.IsStopWord("Where"))
}

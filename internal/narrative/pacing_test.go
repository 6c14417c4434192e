package narrative

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name   string
		counts PacingCounts
		want   string
	}{
		{"no indicators", PacingCounts{}, DefaultRatio},
		{"even split", PacingCounts{Action: 1, Dialogue: 1, Description: 1}, "66/34"},
		{"rounded shares capped", PacingCounts{Action: 1, Dialogue: 199}, "100/0"},
		{"description only", PacingCounts{Description: 5}, "0/100"},
		{"action heavy", PacingCounts{Action: 3, Description: 1}, "75/25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ratio(tt.counts))
		})
	}
}

func TestPacingAnalyzer_Count(t *testing.T) {
	a := NewPacingAnalyzer(defaultLexicon())

	got := a.Count(corpusOf(`"Run!" she said. He didn't. The room was dark and they fought.`))

	assert.Equal(t, PacingCounts{Action: 1, Dialogue: 3, Description: 2}, got)
}

func TestPacingAnalyzer_Score(t *testing.T) {
	a := NewPacingAnalyzer(defaultLexicon())

	tests := []struct {
		name string
		text string
		want int
	}{
		{"floor", "the cat sat", 10},
		{"action and dialogue", repeat("ran", 10) + " " + strings.Repeat(`"`, 30), 35},
		{"ceiling", repeat("battle", 60), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Analyze(corpusOf(tt.text)).PacingScore)
		})
	}
}

func TestPacingAnalyzer_SlowSections(t *testing.T) {
	a := NewPacingAnalyzer(defaultLexicon())
	corpus := corpusOf(
		repeat("cat", 101),
		repeat("cat", 100),
		repeat("cat", 100)+" ran",
	)

	got := a.Analyze(corpus)

	assert.Equal(t, []string{"Scene 1: Scene A"}, got.SlowSections)
}

func TestPacingAnalyzer_EmptyCorpus(t *testing.T) {
	a := NewPacingAnalyzer(defaultLexicon())

	got := a.Analyze(Normalize(nil))

	assert.Equal(t, DefaultRatio, got.ActionVsDialogueRatio)
	assert.Equal(t, 10, got.PacingScore)
	assert.NotNil(t, got.SlowSections)
	assert.Empty(t, got.SlowSections)
}

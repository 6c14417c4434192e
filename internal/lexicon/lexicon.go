// internal/lexicon/lexicon.go

// Package lexicon holds the fixed keyword tables the narrative analyzers score
// against. The default tables are embedded YAML; a replacement file can be
// loaded at startup. A Lexicon never changes after it is built.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Corphon/NarrativeDNA/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDocument []byte

var (
	defaultLexicon *Lexicon
	defaultOnce    sync.Once
)

// EmotionCategory is one emotion and the keywords that signal it.
type EmotionCategory struct {
	Emotion  models.Emotion
	Keywords []string
}

// ThemeCategory is one theme and the keywords that signal it.
type ThemeCategory struct {
	Theme    models.Theme
	Keywords []string
}

// Lexicon 分析器使用的关键词表
type Lexicon struct {
	emotions    []EmotionCategory
	boosters    []string
	themes      []ThemeCategory
	action      []string
	dialogue    []string
	description []string
	stopWords   map[string]struct{}
	stopList    []string
	development []string
}

type category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type pacing struct {
	Action      []string `yaml:"action"`
	Dialogue    []string `yaml:"dialogue"`
	Description []string `yaml:"description"`
}

// document is the on-disk shape of a lexicon file.
type document struct {
	Emotions         []category `yaml:"emotions"`
	TensionBoosters  []string   `yaml:"tension_boosters"`
	Themes           []category `yaml:"themes"`
	Pacing           pacing     `yaml:"pacing"`
	StopWords        []string   `yaml:"stop_words"`
	DevelopmentWords []string   `yaml:"development_words"`
}

// Default returns the embedded lexicon. It is parsed once per process.
func Default() *Lexicon {
	defaultOnce.Do(func() {
		lex, err := Parse(defaultDocument)
		if err != nil {
			panic(fmt.Sprintf("lexicon: embedded default is invalid: %v", err))
		}
		defaultLexicon = lex
	})
	return defaultLexicon
}

// Load reads a lexicon from a YAML file.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	lex, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lex, nil
}

// Parse builds a lexicon from YAML. Scoring keywords are lowercased because
// every analyzer matches against lowercased text; stop words keep their case.
func Parse(data []byte) (*Lexicon, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}

	lex := &Lexicon{
		boosters:    lowerAll(doc.TensionBoosters),
		action:      lowerAll(doc.Pacing.Action),
		dialogue:    nonEmpty(doc.Pacing.Dialogue),
		description: lowerAll(doc.Pacing.Description),
		stopWords:   make(map[string]struct{}, len(doc.StopWords)),
		development: lowerAll(doc.DevelopmentWords),
	}

	seenEmotion := make(map[models.Emotion]bool)
	for _, c := range doc.Emotions {
		emotion := models.Emotion(strings.ToLower(strings.TrimSpace(c.Name)))
		if !emotion.Valid() || emotion == models.EmotionNeutral {
			return nil, fmt.Errorf("unknown emotion category %q", c.Name)
		}
		if seenEmotion[emotion] {
			return nil, fmt.Errorf("duplicate emotion category %q", c.Name)
		}
		seenEmotion[emotion] = true
		keywords := lowerAll(c.Keywords)
		if len(keywords) == 0 {
			return nil, fmt.Errorf("emotion category %q has no keywords", c.Name)
		}
		lex.emotions = append(lex.emotions, EmotionCategory{Emotion: emotion, Keywords: keywords})
	}

	seenTheme := make(map[models.Theme]bool)
	for _, c := range doc.Themes {
		theme := models.Theme(strings.ToLower(strings.TrimSpace(c.Name)))
		if !theme.Valid() {
			return nil, fmt.Errorf("unknown theme category %q", c.Name)
		}
		if seenTheme[theme] {
			return nil, fmt.Errorf("duplicate theme category %q", c.Name)
		}
		seenTheme[theme] = true
		keywords := lowerAll(c.Keywords)
		if len(keywords) == 0 {
			return nil, fmt.Errorf("theme category %q has no keywords", c.Name)
		}
		lex.themes = append(lex.themes, ThemeCategory{Theme: theme, Keywords: keywords})
	}

	for _, w := range nonEmpty(doc.StopWords) {
		if _, dup := lex.stopWords[w]; dup {
			continue
		}
		lex.stopWords[w] = struct{}{}
		lex.stopList = append(lex.stopList, w)
	}

	if err := lex.Validate(); err != nil {
		return nil, err
	}
	return lex, nil
}

// Validate checks that every table the analyzers depend on is populated.
func (l *Lexicon) Validate() error {
	switch {
	case len(l.emotions) == 0:
		return fmt.Errorf("lexicon has no emotion categories")
	case len(l.themes) == 0:
		return fmt.Errorf("lexicon has no theme categories")
	case len(l.action) == 0:
		return fmt.Errorf("lexicon has no action keywords")
	case len(l.dialogue) == 0:
		return fmt.Errorf("lexicon has no dialogue markers")
	case len(l.description) == 0:
		return fmt.Errorf("lexicon has no description keywords")
	case len(l.development) == 0:
		return fmt.Errorf("lexicon has no development words")
	}
	return nil
}

// Emotions returns the emotion categories in declaration order.
func (l *Lexicon) Emotions() []EmotionCategory {
	out := make([]EmotionCategory, len(l.emotions))
	for i, c := range l.emotions {
		out[i] = EmotionCategory{Emotion: c.Emotion, Keywords: clone(c.Keywords)}
	}
	return out
}

// EmotionKeywords returns the keywords of one emotion, or nil.
func (l *Lexicon) EmotionKeywords(e models.Emotion) []string {
	for _, c := range l.emotions {
		if c.Emotion == e {
			return clone(c.Keywords)
		}
	}
	return nil
}

// TensionBoosters returns the words that add a flat bonus to a scene's tension.
func (l *Lexicon) TensionBoosters() []string { return clone(l.boosters) }

// Themes returns the theme categories in declaration order.
func (l *Lexicon) Themes() []ThemeCategory {
	out := make([]ThemeCategory, len(l.themes))
	for i, c := range l.themes {
		out[i] = ThemeCategory{Theme: c.Theme, Keywords: clone(c.Keywords)}
	}
	return out
}

// ThemeKeywords returns the keywords of one theme, or nil.
func (l *Lexicon) ThemeKeywords(t models.Theme) []string {
	for _, c := range l.themes {
		if c.Theme == t {
			return clone(c.Keywords)
		}
	}
	return nil
}

func (l *Lexicon) ActionWords() []string      { return clone(l.action) }
func (l *Lexicon) DialogueMarkers() []string  { return clone(l.dialogue) }
func (l *Lexicon) DescriptionWords() []string { return clone(l.description) }
func (l *Lexicon) DevelopmentWords() []string { return clone(l.development) }

// IsStopWord reports whether a capitalized token is excluded from name extraction.
func (l *Lexicon) IsStopWord(word string) bool {
	_, ok := l.stopWords[word]
	return ok
}

// MarshalYAML renders the lexicon back into its file format.
func (l *Lexicon) MarshalYAML() (interface{}, error) {
	doc := document{
		TensionBoosters: clone(l.boosters),
		Pacing: pacing{
			Action:      clone(l.action),
			Dialogue:    clone(l.dialogue),
			Description: clone(l.description),
		},
		StopWords:        clone(l.stopList),
		DevelopmentWords: clone(l.development),
	}
	for _, c := range l.emotions {
		doc.Emotions = append(doc.Emotions, category{Name: string(c.Emotion), Keywords: clone(c.Keywords)})
	}
	for _, c := range l.themes {
		doc.Themes = append(doc.Themes, category{Name: string(c.Theme), Keywords: clone(c.Keywords)})
	}
	return doc, nil
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// nonEmpty keeps entries verbatim; quote markers must not be trimmed or folded.
func nonEmpty(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func clone(words []string) []string {
	out := make([]string, len(words))
	copy(out, words)
	return out
}

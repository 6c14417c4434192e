// internal/narrative/analyzer.go

// Package narrative computes the narrative profile of a multi-scene story.
// Every analysis is a deterministic function of the scenes and the lexicon;
// an Analyzer holds no per-call state and is safe for concurrent use.
package narrative

import (
	"fmt"
	"time"

	apperrors "github.com/Corphon/NarrativeDNA/internal/errors"
	"github.com/Corphon/NarrativeDNA/internal/lexicon"
	"github.com/Corphon/NarrativeDNA/internal/models"
)

// Analyzer runs the normalizer and the five analyzers and assembles the profile.
type Analyzer struct {
	emotions   *EmotionalArcAnalyzer
	characters *CharacterAnalyzer
	themes     *ThemeAnalyzer
	pacing     *PacingAnalyzer
	insights   *InsightGenerator
	now        func() time.Time
}

type options struct {
	lexicon *lexicon.Lexicon
	rules   []InsightRule
	now     func() time.Time
}

// Option configures an Analyzer.
type Option func(*options)

// WithLexicon replaces the embedded default lexicon.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(o *options) {
		if lex != nil {
			o.lexicon = lex
		}
	}
}

// WithInsightRules replaces the default comparative insight rules.
func WithInsightRules(rules []InsightRule) Option {
	return func(o *options) { o.rules = rules }
}

// WithClock sets the source of the analysis timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// NewAnalyzer 创建叙事分析器
func NewAnalyzer(opts ...Option) *Analyzer {
	o := options{
		lexicon: lexicon.Default(),
		rules:   DefaultInsightRules,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Analyzer{
		emotions:   NewEmotionalArcAnalyzer(o.lexicon),
		characters: NewCharacterAnalyzer(o.lexicon),
		themes:     NewThemeAnalyzer(o.lexicon),
		pacing:     NewPacingAnalyzer(o.lexicon),
		insights:   NewInsightGenerator(o.rules),
		now:        o.now,
	}
}

// Analyze computes the narrative profile of scenes. Arrival order does not
// matter; scenes are ordered by creation time. Thin or empty content yields
// zeroed fields, never an error. The only failure is a ComputationError for
// a structurally invalid scene.
func (a *Analyzer) Analyze(scenes []models.Scene) (*models.NarrativeProfile, error) {
	if err := checkStructure(scenes); err != nil {
		return nil, err
	}

	corpus := Normalize(scenes)

	return &models.NarrativeProfile{
		EmotionalArc:         a.emotions.Analyze(corpus),
		CharacterDevelopment: a.characters.Analyze(corpus),
		ThemeConsistency:     a.themes.Analyze(corpus),
		PacingAnalysis:       a.pacing.Analyze(corpus),
		ComparativeInsights:  a.insights.Generate(corpus),
		AnalysisTimestamp:    a.now(),
	}, nil
}

func checkStructure(scenes []models.Scene) error {
	for i, scene := range scenes {
		switch {
		case scene.ID == "":
			return apperrors.NewComputationError(fmt.Sprintf("scene %d is missing an id", i+1), nil)
		case scene.CreatedAt.IsZero():
			return apperrors.NewComputationError(fmt.Sprintf("scene %q is missing created_at", scene.ID), nil)
		case scene.Status != "" && !scene.Status.Valid():
			return apperrors.NewComputationError(fmt.Sprintf("scene %q has unknown status %q", scene.ID, scene.Status), nil)
		}
	}
	return nil
}

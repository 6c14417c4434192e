// internal/models/narrative.go
package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Emotion 场景的主导情绪
type Emotion string

const (
	EmotionTension Emotion = "tension"
	EmotionJoy     Emotion = "joy"
	EmotionSadness Emotion = "sadness"
	EmotionAnger   Emotion = "anger"
	EmotionLove    Emotion = "love"
	EmotionNeutral Emotion = "neutral"
)

// Valid reports whether e is a declared emotion, neutral included.
func (e Emotion) Valid() bool {
	switch e {
	case EmotionTension, EmotionJoy, EmotionSadness, EmotionAnger, EmotionLove, EmotionNeutral:
		return true
	}
	return false
}

// Theme 故事主题
type Theme string

const (
	ThemeNone       Theme = ""
	ThemeLove       Theme = "love"
	ThemeBetrayal   Theme = "betrayal"
	ThemeRedemption Theme = "redemption"
	ThemePower      Theme = "power"
	ThemeIdentity   Theme = "identity"
	ThemeFreedom    Theme = "freedom"
	ThemeJustice    Theme = "justice"
)

// Valid reports whether t is one of the seven declared themes.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLove, ThemeBetrayal, ThemeRedemption, ThemePower, ThemeIdentity, ThemeFreedom, ThemeJustice:
		return true
	}
	return false
}

// NoClearTheme is the label reported when no theme keyword occurs.
const NoClearTheme = "No clear theme"

// Title returns the reported label: the title-cased theme name, or NoClearTheme.
func (t Theme) Title() string {
	if t == ThemeNone {
		return NoClearTheme
	}
	// cases.Caser is stateful, one per call
	return cases.Title(language.English).String(string(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t Theme) MarshalText() ([]byte, error) {
	return []byte(t.Title()), nil
}

// UnmarshalText accepts both the tag and the reported label.
func (t *Theme) UnmarshalText(text []byte) error {
	raw := strings.ToLower(strings.TrimSpace(string(text)))
	if raw == "" || raw == strings.ToLower(NoClearTheme) {
		*t = ThemeNone
		return nil
	}
	*t = Theme(raw)
	return nil
}

// EmotionalPoint 单个场景的情绪读数
type EmotionalPoint struct {
	SceneIndex      int     `json:"scene_index" yaml:"scene_index"`
	Title           string  `json:"title" yaml:"title"`
	TensionScore    int     `json:"tension_score" yaml:"tension_score"`
	DominantEmotion Emotion `json:"dominant_emotion" yaml:"dominant_emotion"`
}

// EmotionalArc 全篇情感弧线
type EmotionalArc struct {
	TensionScore    int              `json:"tension_score" yaml:"tension_score"`
	PeakMoment      string           `json:"peak_moment" yaml:"peak_moment"`
	EmotionalPoints []EmotionalPoint `json:"emotional_points" yaml:"emotional_points"`
}

// CharacterArc 单个角色的发展强度
type CharacterArc struct {
	Name         string `json:"name" yaml:"name"`
	ArcStrength  int    `json:"arc_strength" yaml:"arc_strength"`
	MentionCount int    `json:"mention_count" yaml:"mention_count"`
}

// RelationshipConnected is the only relationship type the co-occurrence model infers.
const RelationshipConnected = "connected"

// RelationshipEdge 两个角色之间的关系
type RelationshipEdge struct {
	Strength int    `json:"strength" yaml:"strength"`
	Type     string `json:"type" yaml:"type"`
}

// RelationshipMatrix maps a canonical pair key ("A-B") to its edge.
type RelationshipMatrix map[string]RelationshipEdge

// PairKey builds the canonical key for an ordered pair.
func PairKey(a, b string) string {
	return a + "-" + b
}

// Lookup finds the edge between a and b regardless of argument order.
func (m RelationshipMatrix) Lookup(a, b string) (RelationshipEdge, bool) {
	if edge, ok := m[PairKey(a, b)]; ok {
		return edge, true
	}
	edge, ok := m[PairKey(b, a)]
	return edge, ok
}

// CharacterDevelopment 角色发展分析
type CharacterDevelopment struct {
	ProtagonistGrowth  string             `json:"protagonist_growth" yaml:"protagonist_growth"`
	RelationshipMatrix RelationshipMatrix `json:"relationship_matrix" yaml:"relationship_matrix"`
	CharacterArcs      []CharacterArc     `json:"character_arcs" yaml:"character_arcs"`
}

// ThemeMention 核心主题在某个场景中的出现次数
type ThemeMention struct {
	SceneIndex int    `json:"scene_index" yaml:"scene_index"`
	Title      string `json:"title" yaml:"title"`
	Mentions   int    `json:"mentions" yaml:"mentions"`
}

// ThemeConsistency 主题一致性分析
type ThemeConsistency struct {
	CoreTheme        Theme          `json:"core_theme" yaml:"-"`
	ConsistencyScore int            `json:"consistency_score" yaml:"consistency_score"`
	ThemeMentions    []ThemeMention `json:"theme_mentions" yaml:"theme_mentions"`
}

// MarshalYAML flattens the theme tag like the JSON encoding does.
func (t ThemeConsistency) MarshalYAML() (interface{}, error) {
	return struct {
		CoreTheme        string         `yaml:"core_theme"`
		ConsistencyScore int            `yaml:"consistency_score"`
		ThemeMentions    []ThemeMention `yaml:"theme_mentions"`
	}{t.CoreTheme.Title(), t.ConsistencyScore, t.ThemeMentions}, nil
}

// PacingAnalysis 节奏分析
type PacingAnalysis struct {
	ActionVsDialogueRatio string   `json:"action_vs_dialogue_ratio" yaml:"action_vs_dialogue_ratio"`
	SlowSections          []string `json:"slow_sections" yaml:"slow_sections"`
	PacingScore           int      `json:"pacing_score" yaml:"pacing_score"`
}

// NarrativeProfile 叙事DNA：完整的分析结果
type NarrativeProfile struct {
	EmotionalArc         EmotionalArc         `json:"emotional_arc" yaml:"emotional_arc"`
	CharacterDevelopment CharacterDevelopment `json:"character_development" yaml:"character_development"`
	ThemeConsistency     ThemeConsistency     `json:"theme_consistency" yaml:"theme_consistency"`
	PacingAnalysis       PacingAnalysis       `json:"pacing_analysis" yaml:"pacing_analysis"`
	ComparativeInsights  []string             `json:"comparative_insights" yaml:"comparative_insights"`
	AnalysisTimestamp    time.Time            `json:"analysis_timestamp" yaml:"analysis_timestamp"`
}

// QuickInsights 快速统计，不做完整分析
type QuickInsights struct {
	WordCount          int                 `json:"word_count" yaml:"word_count"`
	CharacterCount     int                 `json:"character_count" yaml:"character_count"`
	SceneCount         int                 `json:"scene_count" yaml:"scene_count"`
	AvgWordsPerScene   int                 `json:"avg_words_per_scene" yaml:"avg_words_per_scene"`
	StatusDistribution map[SceneStatus]int `json:"status_distribution" yaml:"status_distribution"`
	Suggestions        []string            `json:"suggestions" yaml:"suggestions"`
}

// AnalysisReport 保存的历史分析记录
type AnalysisReport struct {
	ID         string            `json:"id"`
	Project    ProjectInfo       `json:"project"`
	SceneCount int               `json:"scene_count"`
	WordCount  int               `json:"word_count"`
	Profile    *NarrativeProfile `json:"profile"`
	CreatedAt  time.Time         `json:"created_at"`
}

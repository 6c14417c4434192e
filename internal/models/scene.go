// internal/models/scene.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// SceneStatus 场景的写作状态
type SceneStatus string

const (
	SceneStatusDraft      SceneStatus = "draft"
	SceneStatusWritten    SceneStatus = "written"
	SceneStatusSuggestion SceneStatus = "suggestion"
)

// Valid reports whether s is one of the declared statuses.
func (s SceneStatus) Valid() bool {
	switch s {
	case SceneStatusDraft, SceneStatusWritten, SceneStatusSuggestion:
		return true
	}
	return false
}

// ParseSceneStatus maps a raw tag to a status. The empty tag means draft.
func ParseSceneStatus(raw string) (SceneStatus, error) {
	tag := SceneStatus(strings.ToLower(strings.TrimSpace(raw)))
	if tag == "" {
		return SceneStatusDraft, nil
	}
	if !tag.Valid() {
		return "", fmt.Errorf("unknown scene status %q", raw)
	}
	return tag, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SceneStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseSceneStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Scene 表示故事中的一个场景（故事节点）
type Scene struct {
	ID        string      `json:"id" yaml:"id"`
	Title     string      `json:"title" yaml:"title"`
	Content   string      `json:"content" yaml:"content"` // 可能包含HTML标记
	CreatedAt time.Time   `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time   `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Status    SceneStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Tags      []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ProjectInfo 故事项目的元数据，仅用于日志和报告标记
type ProjectInfo struct {
	ID              string    `json:"id" yaml:"id"`
	Title           string    `json:"title" yaml:"title"`
	Description     string    `json:"description,omitempty" yaml:"description,omitempty"`
	Genre           string    `json:"genre,omitempty" yaml:"genre,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	TargetWordCount int       `json:"target_word_count,omitempty" yaml:"target_word_count,omitempty"`
}

// AnalysisRequest 分析请求：场景列表加项目信息
type AnalysisRequest struct {
	Nodes       []Scene     `json:"nodes" yaml:"nodes"`
	ProjectInfo ProjectInfo `json:"project_info" yaml:"project_info"`
}

// WordCount returns the whitespace token count over the raw content of every scene.
func (r *AnalysisRequest) WordCount() int {
	total := 0
	for _, node := range r.Nodes {
		total += len(strings.Fields(node.Content))
	}
	return total
}

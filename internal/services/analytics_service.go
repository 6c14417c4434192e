// internal/services/analytics_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/Corphon/NarrativeDNA/internal/errors"
	"github.com/Corphon/NarrativeDNA/internal/models"
	"github.com/Corphon/NarrativeDNA/internal/narrative"
	"github.com/Corphon/NarrativeDNA/internal/utils"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMinWordCount  = 100
	DefaultMaxConcurrent = 4
	DefaultMaxBatchSize  = 10

	shortSceneWords = 200
)

// Quick insight suggestions.
const (
	SuggestExpandScenes  = "Consider expanding scenes - average length is quite short"
	SuggestFinishDrafts  = "You have more draft scenes than completed ones"
	SuggestConnectScenes = "Try creating connected scenes to build your story"
)

// AnalyticsOptions 分析服务配置
type AnalyticsOptions struct {
	MinWordCount  int
	MaxConcurrent int
	MaxBatchSize  int
}

// AnalyticsService 故事叙事分析服务
type AnalyticsService struct {
	analyzer     *narrative.Analyzer
	reports      *ReportService
	metrics      *utils.AnalysisMetrics
	logger       *utils.Logger
	semaphore    chan struct{}
	minWordCount int
	maxBatchSize int
}

// NewAnalyticsService 创建分析服务。reports 可以为 nil（不保存报告）。
func NewAnalyticsService(analyzer *narrative.Analyzer, reports *ReportService, metrics *utils.AnalysisMetrics, opts AnalyticsOptions) *AnalyticsService {
	if analyzer == nil {
		analyzer = narrative.NewAnalyzer()
	}
	if metrics == nil {
		metrics = utils.NewAnalysisMetrics()
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultMaxBatchSize
	}
	if opts.MinWordCount < 0 {
		opts.MinWordCount = DefaultMinWordCount
	}

	return &AnalyticsService{
		analyzer:     analyzer,
		reports:      reports,
		metrics:      metrics,
		logger:       utils.GetLogger(),
		semaphore:    make(chan struct{}, opts.MaxConcurrent),
		minWordCount: opts.MinWordCount,
		maxBatchSize: opts.MaxBatchSize,
	}
}

// ValidateRequest 检查请求是否有足够的内容进行分析
func (s *AnalyticsService) ValidateRequest(req *models.AnalysisRequest) error {
	if req == nil || len(req.Nodes) == 0 {
		return apperrors.NewValidationError("At least one story node is required", nil)
	}
	if req.WordCount() < s.minWordCount {
		return apperrors.NewValidationError(
			fmt.Sprintf("Story needs at least %d words for meaningful analysis", s.minWordCount), nil)
	}
	return nil
}

// Analyze 计算叙事画像。项目信息只用于日志和报告存储。
func (s *AnalyticsService) Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.NarrativeProfile, error) {
	if req == nil {
		req = &models.AnalysisRequest{}
	}

	// 获取并发许可
	select {
	case s.semaphore <- struct{}{}:
	case <-ctx.Done():
		return nil, apperrors.NewTimeoutError("analysis was cancelled while waiting for a slot", ctx.Err())
	}
	defer func() { <-s.semaphore }()

	s.metrics.AnalysisStarted()
	start := time.Now()
	words := req.WordCount()

	profile, err := s.analyzer.Analyze(req.Nodes)
	s.metrics.RecordAnalysis(len(req.Nodes), words, time.Since(start), err)
	if err != nil {
		s.logger.Warn("Story analysis failed", map[string]interface{}{
			"project": req.ProjectInfo.ID,
			"error":   err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Analyzed story", map[string]interface{}{
		"project":     req.ProjectInfo.ID,
		"title":       req.ProjectInfo.Title,
		"scenes":      len(req.Nodes),
		"words":       words,
		"core_theme":  profile.ThemeConsistency.CoreTheme.Title(),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	s.storeReport(req, profile)
	return profile, nil
}

// ValidateAndAnalyze runs ValidateRequest and then Analyze.
func (s *AnalyticsService) ValidateAndAnalyze(ctx context.Context, req *models.AnalysisRequest) (*models.NarrativeProfile, error) {
	if err := s.ValidateRequest(req); err != nil {
		return nil, err
	}
	return s.Analyze(ctx, req)
}

// AnalyzeBatch 并行分析多个独立的故事，结果与输入顺序一致。任一失败会取消其余分析。
func (s *AnalyticsService) AnalyzeBatch(ctx context.Context, reqs []*models.AnalysisRequest) ([]*models.NarrativeProfile, error) {
	if len(reqs) == 0 {
		return nil, apperrors.NewValidationError("At least one story is required", nil)
	}
	if len(reqs) > s.maxBatchSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Batch may contain at most %d stories, got %d", s.maxBatchSize, len(reqs)), nil)
	}

	profiles := make([]*models.NarrativeProfile, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cap(s.semaphore))

	for i, req := range reqs {
		g.Go(func() error {
			profile, err := s.ValidateAndAnalyze(gctx, req)
			if err != nil {
				return apperrors.WrapError(err, fmt.Sprintf("story %d", i+1), apperrors.ErrorTypeError)
			}
			profiles[i] = profile
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// QuickInsights 不做完整分析，只计算基本统计和建议
func (s *AnalyticsService) QuickInsights(req *models.AnalysisRequest) (*models.QuickInsights, error) {
	if req == nil || len(req.Nodes) == 0 {
		return nil, apperrors.NewValidationError("At least one story node is required", nil)
	}

	insights := &models.QuickInsights{
		SceneCount:         len(req.Nodes),
		StatusDistribution: make(map[models.SceneStatus]int),
		Suggestions:        []string{},
	}
	for _, node := range req.Nodes {
		insights.WordCount += len(strings.Fields(node.Content))
		insights.CharacterCount += utf8.RuneCountInString(node.Content)
		status := node.Status
		if status == "" {
			status = models.SceneStatusDraft
		}
		insights.StatusDistribution[status]++
	}
	insights.AvgWordsPerScene = insights.WordCount / insights.SceneCount

	if insights.AvgWordsPerScene < shortSceneWords {
		insights.Suggestions = append(insights.Suggestions, SuggestExpandScenes)
	}
	if insights.StatusDistribution[models.SceneStatusDraft] > insights.StatusDistribution[models.SceneStatusWritten] {
		insights.Suggestions = append(insights.Suggestions, SuggestFinishDrafts)
	}
	if insights.SceneCount == 1 {
		insights.Suggestions = append(insights.Suggestions, SuggestConnectScenes)
	}
	return insights, nil
}

// Reports returns the report service, or nil when history is disabled.
func (s *AnalyticsService) Reports() *ReportService {
	return s.reports
}

// MaxBatchSize is the largest batch AnalyzeBatch accepts.
func (s *AnalyticsService) MaxBatchSize() int {
	return s.maxBatchSize
}

// MaxConcurrent is the number of analyses allowed to run at once.
func (s *AnalyticsService) MaxConcurrent() int {
	return cap(s.semaphore)
}

func (s *AnalyticsService) storeReport(req *models.AnalysisRequest, profile *models.NarrativeProfile) {
	if s.reports == nil || req.ProjectInfo.ID == "" {
		return
	}
	if _, err := s.reports.Save(req, profile); err != nil {
		s.logger.Warn("Failed to store analysis report", map[string]interface{}{
			"project": req.ProjectInfo.ID,
			"error":   err.Error(),
		})
	}
}

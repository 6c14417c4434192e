package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "github.com/Corphon/NarrativeDNA/internal/errors"
	"github.com/Corphon/NarrativeDNA/internal/models"
	"github.com/Corphon/NarrativeDNA/internal/narrative"
	"github.com/Corphon/NarrativeDNA/internal/storage"
	"github.com/Corphon/NarrativeDNA/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sceneTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func node(id, content string, status models.SceneStatus, minute int) models.Scene {
	return models.Scene{
		ID:        id,
		Title:     "Scene " + id,
		Content:   content,
		CreatedAt: sceneTime.Add(time.Duration(minute) * time.Minute),
		Status:    status,
	}
}

func storyRequest(projectID string) *models.AnalysisRequest {
	return &models.AnalysisRequest{
		Nodes: []models.Scene{
			node("1", "Alice fought Bob in the dark. "+words(60), models.SceneStatusWritten, 0),
			node("2", "Alice realized the danger. Bob would betray her. "+words(60), models.SceneStatusDraft, 1),
		},
		ProjectInfo: models.ProjectInfo{ID: projectID, Title: "Duel"},
	}
}

type fixture struct {
	svc     *AnalyticsService
	metrics *utils.MetricsCollector
	reports *ReportService
}

func newFixture(t *testing.T, maxConcurrent int) fixture {
	t.Helper()
	fs, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })

	collector := utils.NewMetricsCollector()
	reports := NewReportService(fs)
	svc := NewAnalyticsService(
		narrative.NewAnalyzer(),
		reports,
		utils.NewAnalysisMetricsWith(collector, utils.NewLoggerWithWriters(nil, nil, utils.ERROR)),
		AnalyticsOptions{MinWordCount: DefaultMinWordCount, MaxConcurrent: maxConcurrent},
	)
	return fixture{svc: svc, metrics: collector, reports: reports}
}

func TestValidateRequest(t *testing.T) {
	f := newFixture(t, 1)

	tests := []struct {
		name    string
		req     *models.AnalysisRequest
		wantErr string
	}{
		{"nil request", nil, "At least one story node is required"},
		{"no nodes", &models.AnalysisRequest{}, "At least one story node is required"},
		{"too short", &models.AnalysisRequest{Nodes: []models.Scene{node("1", words(99), "", 0)}},
			"Story needs at least 100 words for meaningful analysis"},
		{"enough words across scenes", &models.AnalysisRequest{Nodes: []models.Scene{
			node("1", words(50), "", 0), node("2", words(50), "", 1),
		}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.ValidateRequest(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsValidationError(err))
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestAnalyze_RecordsMetricsAndReport(t *testing.T) {
	f := newFixture(t, 2)

	profile, err := f.svc.Analyze(context.Background(), storyRequest("duel-1"))
	require.NoError(t, err)

	assert.Equal(t, models.ThemeBetrayal, profile.ThemeConsistency.CoreTheme)
	assert.Equal(t, int64(1), f.metrics.GetCounterValue("analyses_total"))
	assert.Equal(t, int64(0), f.metrics.GetGauge("analyses_in_flight"))

	latest, err := f.reports.LatestReport("duel-1")
	require.NoError(t, err)
	assert.Equal(t, "Duel", latest.Project.Title)
	assert.Equal(t, 2, latest.SceneCount)
	assert.Equal(t, profile.ThemeConsistency, latest.Profile.ThemeConsistency)
}

func TestAnalyze_SkipsReportWithoutProject(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.svc.Analyze(context.Background(), storyRequest(""))
	require.NoError(t, err)

	files, err := f.reports.storage.ListDirs(reportsDir)
	assert.Error(t, err, "nothing was written")
	assert.Empty(t, files)
}

func TestAnalyze_ComputationErrorPropagates(t *testing.T) {
	f := newFixture(t, 1)
	req := storyRequest("p")
	req.Nodes[0].ID = ""

	_, err := f.svc.Analyze(context.Background(), req)

	require.Error(t, err)
	assert.True(t, apperrors.IsComputationError(err))
	assert.Equal(t, int64(1), f.metrics.GetCounterValue("analyses_failed"))
}

func TestAnalyze_WaitsForSlotAndHonoursCancellation(t *testing.T) {
	f := newFixture(t, 1)
	f.svc.semaphore <- struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.svc.Analyze(ctx, storyRequest("p"))

	require.Error(t, err)
	assert.True(t, apperrors.IsTimeoutError(err))

	<-f.svc.semaphore
	_, err = f.svc.Analyze(context.Background(), storyRequest("p"))
	assert.NoError(t, err)
}

func TestAnalyze_ConcurrentCallsShareAnalyzer(t *testing.T) {
	f := newFixture(t, 3)

	var wg sync.WaitGroup
	errs := make([]error, 12)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Analyze(context.Background(), storyRequest(fmt.Sprintf("p%d", i%3)))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(12), f.metrics.GetCounterValue("analyses_total"))
}

func TestAnalyzeBatch(t *testing.T) {
	f := newFixture(t, 2)
	love := storyRequest("b2")
	love.Nodes[1].Content = "Their love and romance. " + words(80)

	profiles, err := f.svc.AnalyzeBatch(context.Background(), []*models.AnalysisRequest{storyRequest("b1"), love})
	require.NoError(t, err)

	require.Len(t, profiles, 2)
	assert.Equal(t, models.ThemeBetrayal, profiles[0].ThemeConsistency.CoreTheme)
	assert.Equal(t, models.ThemeLove, profiles[1].ThemeConsistency.CoreTheme)
}

func TestAnalyzeBatch_FailsOnInvalidStory(t *testing.T) {
	f := newFixture(t, 2)
	short := &models.AnalysisRequest{Nodes: []models.Scene{node("1", "too short", "", 0)}}

	_, err := f.svc.AnalyzeBatch(context.Background(), []*models.AnalysisRequest{storyRequest("b1"), short})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Contains(t, err.Error(), "story 2")

	_, err = f.svc.AnalyzeBatch(context.Background(), nil)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestAnalyzeBatch_RejectsOversizedBatch(t *testing.T) {
	svc := NewAnalyticsService(nil, nil,
		utils.NewAnalysisMetricsWith(utils.NewMetricsCollector(), utils.NewLoggerWithWriters(nil, nil, utils.ERROR)),
		AnalyticsOptions{MinWordCount: DefaultMinWordCount, MaxConcurrent: 2, MaxBatchSize: 2})
	reqs := []*models.AnalysisRequest{storyRequest(""), storyRequest(""), storyRequest("")}

	_, err := svc.AnalyzeBatch(context.Background(), reqs)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Contains(t, err.Error(), "at most 2 stories, got 3")

	profiles, err := svc.AnalyzeBatch(context.Background(), reqs[:2])
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
	assert.Equal(t, 2, svc.MaxBatchSize())
}

func TestQuickInsights(t *testing.T) {
	f := newFixture(t, 1)

	tests := []struct {
		name        string
		nodes       []models.Scene
		wantAvg     int
		wantStatus  map[models.SceneStatus]int
		suggestions []string
	}{
		{
			name:        "single short draft",
			nodes:       []models.Scene{node("1", "Héllo there", "", 0)},
			wantAvg:     2,
			wantStatus:  map[models.SceneStatus]int{models.SceneStatusDraft: 1},
			suggestions: []string{SuggestExpandScenes, SuggestFinishDrafts, SuggestConnectScenes},
		},
		{
			name: "long written scenes",
			nodes: []models.Scene{
				node("1", words(250), models.SceneStatusWritten, 0),
				node("2", words(250), models.SceneStatusSuggestion, 1),
			},
			wantAvg:     250,
			wantStatus:  map[models.SceneStatus]int{models.SceneStatusWritten: 1, models.SceneStatusSuggestion: 1},
			suggestions: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.QuickInsights(&models.AnalysisRequest{Nodes: tt.nodes})
			require.NoError(t, err)

			assert.Equal(t, len(tt.nodes), got.SceneCount)
			assert.Equal(t, tt.wantAvg, got.AvgWordsPerScene)
			assert.Equal(t, tt.wantStatus, got.StatusDistribution)
			assert.Equal(t, tt.suggestions, got.Suggestions)
		})
	}
}

func TestQuickInsights_CountsCharacters(t *testing.T) {
	f := newFixture(t, 1)

	got, err := f.svc.QuickInsights(&models.AnalysisRequest{Nodes: []models.Scene{node("1", "Héllo there", "", 0)}})
	require.NoError(t, err)

	assert.Equal(t, 2, got.WordCount)
	assert.Equal(t, 11, got.CharacterCount)

	_, err = f.svc.QuickInsights(&models.AnalysisRequest{})
	assert.True(t, apperrors.IsValidationError(err))
}

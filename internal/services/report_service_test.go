package services

import (
	"testing"
	"time"

	apperrors "github.com/Corphon/NarrativeDNA/internal/errors"
	"github.com/Corphon/NarrativeDNA/internal/models"
	"github.com/Corphon/NarrativeDNA/internal/narrative"
	"github.com/Corphon/NarrativeDNA/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReportService(t *testing.T) *ReportService {
	t.Helper()
	fs, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })
	return NewReportService(fs)
}

func TestReportService_NewestFirst(t *testing.T) {
	s := newReportService(t)
	clock := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	profile, err := narrative.NewAnalyzer().Analyze(storyRequest("p1").Nodes)
	require.NoError(t, err)

	var saved []*models.AnalysisReport
	for i := 0; i < 3; i++ {
		req := storyRequest("p1")
		req.ProjectInfo.Title = []string{"first", "second", "third"}[i]
		report, err := s.Save(req, profile)
		require.NoError(t, err)
		saved = append(saved, report)
		clock = clock.Add(time.Duration(i+1) * time.Second)
	}

	reports, err := s.ListReports("p1")
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "third", reports[0].Project.Title)
	assert.Equal(t, "first", reports[2].Project.Title)
	assert.Equal(t, saved[2].ID, reports[0].ID)
	assert.NotEqual(t, saved[0].ID, saved[1].ID)

	latest, err := s.LatestReport("p1")
	require.NoError(t, err)
	assert.Equal(t, "third", latest.Project.Title)
	assert.Equal(t, 2, latest.SceneCount)
}

func TestReportService_EmptyProject(t *testing.T) {
	s := newReportService(t)

	reports, err := s.ListReports("nobody")
	require.NoError(t, err)
	assert.Empty(t, reports)

	_, err = s.LatestReport("nobody")
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestReportService_RejectsInvalidProjectIDs(t *testing.T) {
	s := newReportService(t)

	for _, id := range []string{"", "../etc", "a/b", "with space"} {
		_, err := s.ListReports(id)
		assert.True(t, apperrors.IsValidationError(err), id)

		req := storyRequest(id)
		_, err = s.Save(req, &models.NarrativeProfile{})
		assert.True(t, apperrors.IsValidationError(err), id)
	}
}

func TestReportService_SameTickKeepsBothReports(t *testing.T) {
	s := newReportService(t)
	clock := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	profile := &models.NarrativeProfile{}
	first, err := s.Save(storyRequest("tick"), profile)
	require.NoError(t, err)
	second, err := s.Save(storyRequest("tick"), profile)
	require.NoError(t, err)

	reports, err := s.ListReports("tick")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, []string{reports[0].ID, reports[1].ID})
}

func TestCompareStamps(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"numeric not lexical", "999-x.json", "1000-x.json", -1},
		{"newer first argument", "1000-x.json", "999-x.json", 1},
		{"same name", "5-a.json", "5-a.json", 0},
		{"same stamp ordered by id", "5-a.json", "5-b.json", -1},
		{"stamp without id", "999.json", "1000.json", -1},
		{"unparsable names", "a.json", "b.json", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compareStamps(tt.a, tt.b))
		})
	}
}

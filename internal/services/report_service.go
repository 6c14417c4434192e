// internal/services/report_service.go
package services

import (
	"cmp"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Corphon/NarrativeDNA/internal/errors"
	"github.com/Corphon/NarrativeDNA/internal/models"
	"github.com/Corphon/NarrativeDNA/internal/storage"
)

const reportsDir = "reports"

var projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ReportService 保存和读取每个项目的分析历史
type ReportService struct {
	storage *storage.FileStorage
	now     func() time.Time
}

// NewReportService 创建报告服务
func NewReportService(fs *storage.FileStorage) *ReportService {
	return &ReportService{storage: fs, now: time.Now}
}

// ValidateProjectID rejects ids that cannot be used as a directory name.
func ValidateProjectID(projectID string) error {
	if !projectIDPattern.MatchString(projectID) {
		return apperrors.NewValidationError(fmt.Sprintf("invalid project id %q", projectID), nil)
	}
	return nil
}

// Save stores profile as the newest report of the request's project.
func (s *ReportService) Save(req *models.AnalysisRequest, profile *models.NarrativeProfile) (*models.AnalysisReport, error) {
	projectID := req.ProjectInfo.ID
	if err := ValidateProjectID(projectID); err != nil {
		return nil, err
	}

	created := s.now().UTC()
	report := &models.AnalysisReport{
		ID:         uuid.NewString(),
		Project:    req.ProjectInfo,
		SceneCount: len(req.Nodes),
		WordCount:  req.WordCount(),
		Profile:    profile,
		CreatedAt:  created,
	}

	filename := reportFilename(created, report.ID)
	if err := s.storage.SaveJSONFile(path.Join(reportsDir, projectID), filename, report); err != nil {
		return nil, apperrors.NewProcessingError("failed to save analysis report", err)
	}
	return report, nil
}

// ListReports returns every stored report of a project, newest first.
func (s *ReportService) ListReports(projectID string) ([]*models.AnalysisReport, error) {
	if err := ValidateProjectID(projectID); err != nil {
		return nil, err
	}

	dir := path.Join(reportsDir, projectID)
	files, err := s.storage.ListFiles(dir, ".json")
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to list analysis reports", err)
	}
	slices.SortFunc(files, func(a, b string) int {
		return compareStamps(b, a)
	})

	reports := make([]*models.AnalysisReport, 0, len(files))
	for _, name := range files {
		var report models.AnalysisReport
		if err := s.storage.LoadJSONFile(dir, name, &report); err != nil {
			return nil, apperrors.NewProcessingError(fmt.Sprintf("failed to read report %s", name), err)
		}
		reports = append(reports, &report)
	}
	return reports, nil
}

// LatestReport returns the newest report of a project.
func (s *ReportService) LatestReport(projectID string) (*models.AnalysisReport, error) {
	reports, err := s.ListReports(projectID)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no reports for project %s", projectID), nil)
	}
	return reports[0], nil
}

// reportFilename is "<unix_nano>-<id>.json"; the id keeps saves within one
// clock tick apart.
func reportFilename(created time.Time, id string) string {
	return strconv.FormatInt(created.UnixNano(), 10) + "-" + id + ".json"
}

// compareStamps orders report names by their numeric timestamp prefix, then by name.
func compareStamps(a, b string) int {
	na, errA := stampOf(a)
	nb, errB := stampOf(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return cmp.Or(cmp.Compare(na, nb), strings.Compare(a, b))
}

func stampOf(name string) (int64, error) {
	stamp, _, _ := strings.Cut(strings.TrimSuffix(name, ".json"), "-")
	return strconv.ParseInt(stamp, 10, 64)
}

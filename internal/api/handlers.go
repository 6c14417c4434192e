// internal/api/handlers.go
package api

import (
	"time"

	apperrors "github.com/Corphon/NarrativeDNA/internal/errors"
	"github.com/Corphon/NarrativeDNA/internal/models"
	"github.com/Corphon/NarrativeDNA/internal/services"
	"github.com/Corphon/NarrativeDNA/internal/utils"
	"github.com/gin-gonic/gin"
)

const serviceName = "narrative_dna_analyzer"

// Handler 处理API请求
type Handler struct {
	Analytics *services.AnalyticsService // 分析服务
	Reports   *services.ReportService    // 报告服务，未启用时为 nil
	Metrics   *utils.AnalysisMetrics     // 指标
	Response  *ResponseHelper            // 响应助手
	WebSocket *WebSocketHub              // 实时分析连接
	startedAt time.Time
}

// BatchRequest 批量分析请求
type BatchRequest struct {
	Stories []*models.AnalysisRequest `json:"stories"`
}

// BatchResponse 批量分析结果，顺序与请求一致
type BatchResponse struct {
	Profiles []*models.NarrativeProfile `json:"profiles"`
	Count    int                        `json:"count"`
}

// NewHandler 创建API处理器
func NewHandler(analytics *services.AnalyticsService, metrics *utils.AnalysisMetrics, hub *WebSocketHub) *Handler {
	return &Handler{
		Analytics: analytics,
		Reports:   analytics.Reports(),
		Metrics:   metrics,
		Response:  NewResponseHelper(metrics),
		WebSocket: hub,
		startedAt: time.Now(),
	}
}

// Index 服务信息
func (h *Handler) Index(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"service": serviceName,
		"version": "1.0.0",
		"docs":    "/api/v1/analytics/health",
	}, "Narrative DNA analysis service")
}

// Health 全局健康检查
func (h *Handler) Health(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"websockets":     h.WebSocket.Count(),
	})
}

// AnalyticsHealth 分析服务健康检查
func (h *Handler) AnalyticsHealth(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"service":         serviceName,
		"status":          "operational",
		"max_concurrent":  h.Analytics.MaxConcurrent(),
		"max_batch_size":  h.Analytics.MaxBatchSize(),
		"reports_enabled": h.Reports != nil,
	}, "Analytics service is healthy")
}

// AnalyzeStory 完整的叙事DNA分析
func (h *Handler) AnalyzeStory(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, ErrorInvalidJSON, "Invalid request body", err.Error())
		return
	}

	profile, err := h.Analytics.ValidateAndAnalyze(c.Request.Context(), &req)
	if err != nil {
		h.Response.HandleServiceError(c, "analytics", err)
		return
	}
	h.Response.Success(c, profile, "Story analyzed successfully")
}

// QuickInsights 快速洞察（不做完整分析）
func (h *Handler) QuickInsights(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, ErrorInvalidJSON, "Invalid request body", err.Error())
		return
	}

	insights, err := h.Analytics.QuickInsights(&req)
	if err != nil {
		h.Response.HandleServiceError(c, "quick_insights", err)
		return
	}
	h.Response.Success(c, insights, "Quick insights generated successfully")
}

// AnalyzeBatch 批量分析多个故事
func (h *Handler) AnalyzeBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, ErrorInvalidJSON, "Invalid request body", err.Error())
		return
	}

	profiles, err := h.Analytics.AnalyzeBatch(c.Request.Context(), req.Stories)
	if err != nil {
		h.Response.HandleServiceError(c, "batch", err)
		return
	}
	h.Response.Success(c, BatchResponse{Profiles: profiles, Count: len(profiles)})
}

// ListReports 项目的分析历史（最新在前）
func (h *Handler) ListReports(c *gin.Context) {
	if !h.reportsEnabled(c) {
		return
	}
	reports, err := h.Reports.ListReports(c.Param("project_id"))
	if err != nil {
		h.reportError(c, err)
		return
	}
	h.Response.Success(c, gin.H{"reports": reports, "count": len(reports)})
}

// LatestReport 项目最新的分析报告
func (h *Handler) LatestReport(c *gin.Context) {
	if !h.reportsEnabled(c) {
		return
	}
	report, err := h.Reports.LatestReport(c.Param("project_id"))
	if err != nil {
		h.reportError(c, err)
		return
	}
	h.Response.Success(c, report)
}

// GetMetrics 指标快照
func (h *Handler) GetMetrics(c *gin.Context) {
	h.Response.Success(c, h.Metrics.Collector().Snapshot())
}

func (h *Handler) reportsEnabled(c *gin.Context) bool {
	if h.Reports == nil {
		h.Response.NotFound(c, ErrorReportsDisabled, "Report history is disabled")
		return false
	}
	return true
}

func (h *Handler) reportError(c *gin.Context, err error) {
	switch {
	case apperrors.IsValidationError(err):
		h.Response.BadRequest(c, ErrorInvalidProjectID, err.Error())
	case apperrors.IsNotFoundError(err):
		h.Response.NotFound(c, ErrorReportNotFound, err.Error())
	default:
		h.Response.HandleServiceError(c, "reports", err)
	}
}

// internal/api/router.go
package api

import (
	"github.com/Corphon/NarrativeDNA/internal/config"
	"github.com/Corphon/NarrativeDNA/internal/di"
	"github.com/Corphon/NarrativeDNA/internal/services"
	"github.com/Corphon/NarrativeDNA/internal/utils"
	"github.com/gin-gonic/gin"
)

// 容器中的服务名称
const (
	ServiceAnalytics   = "analytics"
	ServiceMetrics     = "metrics"
	ServiceWebSocket   = "websocket"
	ServiceRateLimiter = "rate_limiter"
)

// NewRouter 配置HTTP路由。服务只从容器获取，不在这里创建。
func NewRouter(cfg *config.Config, container *di.Container) (*gin.Engine, error) {
	analyticsService, err := di.Resolve[*services.AnalyticsService](container, ServiceAnalytics)
	if err != nil {
		return nil, err
	}
	metrics, err := di.Resolve[*utils.AnalysisMetrics](container, ServiceMetrics)
	if err != nil {
		return nil, err
	}
	hub, err := di.Resolve[*WebSocketHub](container, ServiceWebSocket)
	if err != nil {
		return nil, err
	}
	limiter, err := di.Resolve[*RateLimiter](container, ServiceRateLimiter)
	if err != nil {
		return nil, err
	}

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := NewHandler(analyticsService, metrics, hub)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(CORSMiddleware(cfg.CORSOrigins))
	r.Use(AccessLogMiddleware(utils.GetLogger(), metrics))

	rateLimited := RateLimitByUser(limiter, handler.Response, cfg.AnalysisRateLimit, cfg.AnalysisRateWindow)

	r.GET("/", handler.Index)
	r.GET("/health", handler.Health)

	// WebSocket 支持
	r.GET("/ws/analyze", hub.AnalyzeWebSocket)

	// ===============================
	// API路由组
	// ===============================
	v1 := r.Group("/api/v1")
	{
		analytics := v1.Group("/analytics")
		{
			analytics.POST("/analyze", rateLimited, handler.AnalyzeStory)
			analytics.POST("/quick-insights", handler.QuickInsights)
			analytics.POST("/batch", rateLimited, handler.AnalyzeBatch)
			analytics.GET("/health", handler.AnalyticsHealth)

			reports := analytics.Group("/reports/:project_id")
			{
				reports.GET("", handler.ListReports)
				reports.GET("/latest", handler.LatestReport)
			}
		}

		v1.GET("/metrics", handler.GetMetrics)
	}

	return r, nil
}

// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Corphon/NarrativeDNA/internal/api"
	"github.com/Corphon/NarrativeDNA/internal/config"
	"github.com/Corphon/NarrativeDNA/internal/di"
	"github.com/Corphon/NarrativeDNA/internal/lexicon"
	"github.com/Corphon/NarrativeDNA/internal/narrative"
	"github.com/Corphon/NarrativeDNA/internal/services"
	"github.com/Corphon/NarrativeDNA/internal/storage"
	"github.com/Corphon/NarrativeDNA/internal/utils"
)

// 容器中的基础服务名称（HTTP 相关名称见 api 包）
const (
	ServiceLexicon  = "lexicon"
	ServiceAnalyzer = "analyzer"
	ServiceStorage  = "storage"
	ServiceReports  = "reports"
)

const (
	shutdownTimeout = 30 * time.Second
	metricsInterval = 5 * time.Minute
)

// server 是 http.Server 的最小接口，便于测试替换
type server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App 应用程序实例
type App struct {
	config    *config.Config
	container *di.Container
	server    server
	stopChan  chan os.Signal
}

var (
	instance   *App
	instanceMu sync.Mutex
)

// GetApp 获取全局应用实例
func GetApp() *App {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance == nil {
		instance = &App{
			container: di.GetContainer(),
			stopChan:  make(chan os.Signal, 1),
		}
	}
	return instance
}

// InitServices 按依赖顺序创建所有服务并注册到容器
func InitServices(cfg *config.Config, container *di.Container) error {
	lex := lexicon.Default()
	if cfg.LexiconFile != "" {
		loaded, err := lexicon.Load(cfg.LexiconFile)
		if err != nil {
			return fmt.Errorf("load lexicon: %w", err)
		}
		lex = loaded
	}
	container.Register(ServiceLexicon, lex)

	analyzer := narrative.NewAnalyzer(narrative.WithLexicon(lex))
	container.Register(ServiceAnalyzer, analyzer)

	metrics := utils.NewAnalysisMetrics()
	container.Register(api.ServiceMetrics, metrics)

	var reports *services.ReportService
	if cfg.ReportsEnabled {
		fs, err := storage.NewFileStorage(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("create storage: %w", err)
		}
		container.Register(ServiceStorage, fs)
		reports = services.NewReportService(fs)
		container.Register(ServiceReports, reports)
	}

	analytics := services.NewAnalyticsService(analyzer, reports, metrics, services.AnalyticsOptions{
		MinWordCount:  cfg.MinWordCount,
		MaxConcurrent: cfg.MaxConcurrentAnalyses,
		MaxBatchSize:  cfg.MaxBatchSize,
	})
	container.Register(api.ServiceAnalytics, analytics)
	limiter := api.NewRateLimiter()
	container.Register(api.ServiceWebSocket, api.NewWebSocketHub(analytics, api.WebSocketOptions{
		Origins:    cfg.CORSOrigins,
		Limiter:    limiter,
		RateLimit:  cfg.AnalysisRateLimit,
		RateWindow: cfg.AnalysisRateWindow,
	}))
	container.Register(api.ServiceRateLimiter, limiter)

	utils.GetLogger().Info("Services initialized", map[string]interface{}{
		"services":        container.GetNames(),
		"reports_enabled": cfg.ReportsEnabled,
		"lexicon_file":    cfg.LexiconFile,
	})
	return nil
}

// Initialize 初始化服务和HTTP服务器
func (a *App) Initialize(cfg *config.Config) error {
	a.config = cfg
	if a.container == nil {
		a.container = di.GetContainer()
	}

	if err := InitServices(cfg, a.container); err != nil {
		return fmt.Errorf("初始化服务失败: %w", err)
	}

	router, err := api.NewRouter(cfg, a.container)
	if err != nil {
		return fmt.Errorf("设置路由失败: %w", err)
	}

	a.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run 启动服务器并阻塞直到收到停止信号或服务器出错
func Run() error {
	return GetApp().Run()
}

// Run 启动服务器并阻塞直到收到停止信号或服务器出错
func (a *App) Run() error {
	if a.server == nil {
		return errors.New("app is not initialized")
	}
	logger := utils.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if metrics, err := di.Resolve[*utils.AnalysisMetrics](a.container, api.ServiceMetrics); err == nil {
		go metrics.StartMetricsCollection(ctx, metricsInterval)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	if a.config != nil {
		logger.Info("Server started", map[string]interface{}{"port": a.config.Port})
	}

	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.stopChan)

	var runErr error
	select {
	case sig := <-a.stopChan:
		logger.Info("Shutting down server", map[string]interface{}{"signal": sig.String()})
	case runErr = <-serverErr:
		logger.Error("Server failed", map[string]interface{}{"error": runErr.Error()})
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("服务器强制关闭: %w", err)
	}

	a.cleanup()
	logger.Info("Server stopped", nil)
	return runErr
}

// cleanup 释放容器中的资源（WebSocket 连接、限流器、文件存储）
func (a *App) cleanup() {
	if a.container == nil {
		return
	}
	if err := a.container.Close(); err != nil {
		utils.GetLogger().Warn("Cleanup finished with errors", map[string]interface{}{"error": err.Error()})
	}
}

// GetConfig 获取应用配置
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetDIContainer 获取依赖注入容器
func GetDIContainer() *di.Container {
	return di.GetContainer()
}

// IsDebugMode 检查是否为调试模式
func IsDebugMode() bool {
	instanceMu.Lock()
	app := instance
	instanceMu.Unlock()

	return app != nil && app.config != nil && app.config.DebugMode
}

// cmd/server/main.go
package main

import (
	"log"
	"path/filepath"

	"github.com/Corphon/NarrativeDNA/internal/app"
	"github.com/Corphon/NarrativeDNA/internal/config"
	"github.com/Corphon/NarrativeDNA/internal/utils"
)

func main() {
	log.Println("🚀 启动 Narrative DNA 分析服务...")

	// 1. 加载配置并创建目录
	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	log.Printf("✅ 配置加载完成，端口: %s，环境: %s", cfg.Port, cfg.Environment)

	// 2. 初始化日志系统
	if err := utils.InitLogger(filepath.Join(cfg.LogDir, "app.log"), utils.ParseLogLevel(cfg.LogLevel)); err != nil {
		log.Fatalf("初始化日志系统失败: %v", err)
	}
	defer utils.GetLogger().Close()
	logger := utils.GetLogger()

	// 3. 初始化服务和路由
	application := app.GetApp()
	if err := application.Initialize(cfg); err != nil {
		logger.Fatal("Failed to initialize application", map[string]interface{}{"error": err.Error()})
	}
	logger.Info("Application initialized", map[string]interface{}{
		"port":        cfg.Port,
		"debug":       cfg.DebugMode,
		"reports":     cfg.ReportsEnabled,
		"concurrency": cfg.MaxConcurrentAnalyses,
	})
	log.Printf("🔗 访问地址: http://localhost:%s", cfg.Port)

	// 4. 运行直到收到 SIGINT/SIGTERM
	if err := application.Run(); err != nil {
		logger.Error("Server exited with error", map[string]interface{}{"error": err.Error()})
		return
	}
	log.Println("✅ 服务器优雅关闭完成")
}

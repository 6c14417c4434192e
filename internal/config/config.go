// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// 当前配置的单例实例
var (
	currentConfig *Config
	configMutex   sync.RWMutex
)

// Config 包含应用程序的所有配置
type Config struct {
	// 基础配置
	Port        string `env:"PORT" envDefault:"8080" json:"port"`
	Environment string `env:"ENVIRONMENT" envDefault:"development" json:"environment"`
	DebugMode   bool   `env:"DEBUG_MODE" envDefault:"true" json:"debug_mode"`
	DataDir     string `env:"DATA_DIR" envDefault:"data" json:"data_dir"`
	LogDir      string `env:"LOG_DIR" envDefault:"logs" json:"log_dir"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" json:"log_level"`

	// 分析相关配置
	LexiconFile           string        `env:"LEXICON_FILE" json:"lexicon_file,omitempty"`
	MinWordCount          int           `env:"MIN_WORD_COUNT" envDefault:"100" json:"min_word_count"`
	MaxConcurrentAnalyses int           `env:"MAX_CONCURRENT_ANALYSES" envDefault:"4" json:"max_concurrent_analyses"`
	AnalysisRateLimit     int           `env:"ANALYSIS_RATE_LIMIT" envDefault:"10" json:"analysis_rate_limit"`
	AnalysisRateWindow    time.Duration `env:"ANALYSIS_RATE_WINDOW" envDefault:"1h" json:"analysis_rate_window"`
	MaxBatchSize          int           `env:"MAX_BATCH_SIZE" envDefault:"10" json:"max_batch_size"`
	ReportsEnabled        bool          `env:"REPORTS_ENABLED" envDefault:"true" json:"reports_enabled"`

	// HTTP
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*" json:"cors_origins"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 尝试加载.env文件（可选）
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.MinWordCount < 0 {
		return fmt.Errorf("MIN_WORD_COUNT must not be negative, got %d", c.MinWordCount)
	}
	if c.MaxConcurrentAnalyses <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_ANALYSES must be positive, got %d", c.MaxConcurrentAnalyses)
	}
	if c.AnalysisRateLimit <= 0 {
		return fmt.Errorf("ANALYSIS_RATE_LIMIT must be positive, got %d", c.AnalysisRateLimit)
	}
	if c.AnalysisRateWindow <= 0 {
		return fmt.Errorf("ANALYSIS_RATE_WINDOW must be positive, got %s", c.AnalysisRateWindow)
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("MAX_BATCH_SIZE must be positive, got %d", c.MaxBatchSize)
	}
	if c.IsProduction() && c.DebugMode {
		return fmt.Errorf("DEBUG_MODE must be disabled in production")
	}
	return nil
}

// IsProduction reports whether the service runs in the production environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// EnsureDirs 确保数据和日志目录存在
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建目录失败 %s: %w", dir, err)
		}
	}
	return nil
}

// InitConfig 加载配置并设置为当前配置
func InitConfig() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	configMutex.Lock()
	currentConfig = cfg
	configMutex.Unlock()
	return cfg, nil
}

// GetCurrentConfig 返回当前配置的副本
func GetCurrentConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if currentConfig == nil {
		// 未初始化时退回到环境变量
		cfg, err := Load()
		if err != nil {
			return &Config{Port: "8080", DataDir: "data", LogDir: "logs", LogLevel: "info",
				MinWordCount: 100, MaxConcurrentAnalyses: 4, AnalysisRateLimit: 10,
				AnalysisRateWindow: time.Hour, MaxBatchSize: 10, CORSOrigins: []string{"*"}}
		}
		return cfg
	}

	configCopy := *currentConfig
	configCopy.CORSOrigins = append([]string(nil), currentConfig.CORSOrigins...)
	return &configCopy
}

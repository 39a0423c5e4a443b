package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ==================== 配置结构 ====================

// Config 进程级配置
// 启动时加载一次，之后只读；凭证不允许在请求中途变化
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Report ReportConfig `mapstructure:"report"`
	WB     WBConfig     `mapstructure:"wb"`
	Ozon   OzonConfig   `mapstructure:"ozon"`
	Yandex YandexConfig `mapstructure:"yandex"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug / info / warn / error
	Format string `mapstructure:"format"` // json / console
}

// ReportConfig 聚合管线配置
type ReportConfig struct {
	// ConcurrencyLimit 同时在途的平台请求上限，防止触发单平台限流
	ConcurrencyLimit int `mapstructure:"concurrency_limit"`
	// FetchTimeout 单次平台调用的超时
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	// RetryCount 失败后追加的重试次数（固定间隔，非指数退避）
	RetryCount int `mapstructure:"retry_count"`
}

// WBConfig Wildberries 配置
type WBConfig struct {
	BaseURL  string      `mapstructure:"base_url"`
	Accounts []WBAccount `mapstructure:"accounts"`
}

// WBAccount WB 卖家账号：仅需 API Key
type WBAccount struct {
	PA     string `mapstructure:"pa"`
	APIKey string `mapstructure:"api_key"`
}

// OzonConfig Ozon 配置
type OzonConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Accounts []OzonAccount `mapstructure:"accounts"`
}

// OzonAccount Ozon 卖家账号：API Key + Client Id
type OzonAccount struct {
	PA       string `mapstructure:"pa"`
	APIKey   string `mapstructure:"api_key"`
	ClientID string `mapstructure:"client_id"`
}

// YandexConfig Yandex Market 配置
type YandexConfig struct {
	BaseURL  string          `mapstructure:"base_url"`
	Accounts []YandexAccount `mapstructure:"accounts"`
}

// YandexAccount Yandex 卖家账号：API Key + Campaign Id + Business Id
type YandexAccount struct {
	PA         string `mapstructure:"pa"`
	APIKey     string `mapstructure:"api_key"`
	CampaignID string `mapstructure:"campaign_id"`
	BusinessID string `mapstructure:"business_id"`
}

// ==================== 加载 ====================

// Load 读取配置文件并套用环境变量覆盖 (前缀 MP_)
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("MP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 零值会让平台调用没有超时约束，直接拒绝启动
	if cfg.Report.FetchTimeout <= 0 {
		return nil, fmt.Errorf("report.fetch_timeout 必须为正值, 当前为 %v", cfg.Report.FetchTimeout)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	// 报表全量拉取可能较慢，写超时放宽
	v.SetDefault("server.write_timeout", 5*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("report.concurrency_limit", 6)
	v.SetDefault("report.fetch_timeout", 60*time.Second)
	v.SetDefault("report.retry_count", 1)

	v.SetDefault("wb.base_url", "https://statistics-api.wildberries.ru")
	v.SetDefault("ozon.base_url", "https://api-seller.ozon.ru")
	v.SetDefault("yandex.base_url", "https://api.partner.market.yandex.ru")
}

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mp_report_v1/internal/config"
	"mp_report_v1/internal/controller"
	"mp_report_v1/internal/marketplace"
	"mp_report_v1/internal/registry"
	"mp_report_v1/internal/router"
	"mp_report_v1/internal/service"
	"mp_report_v1/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	// 1. 加载配置（凭证只在启动时读取一次）
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 2. 初始化日志
	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer zlog.Sync()

	// 3. 初始化依赖
	deps := initDependencies(cfg, zlog)
	if deps.Registry.Empty() {
		zlog.Warn("所有平台都没有配置账号，报表将全部为空表")
	}

	// 4. 初始化路由并启动服务
	r := router.SetupRouter(deps.ReportCtl, zlog)
	startServer(r, cfg, zlog)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	Registry   *registry.Registry
	Aggregator *service.AggregatorService
	Report     *service.ReportService
	ReportCtl  *controller.ReportController
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, zlog *zap.Logger) *Dependencies {
	reg := registry.New(cfg, zlog)

	// 三个平台客户端共用超时 / 重试配置，各自携带平台 BaseURL
	opts := func(baseURL string) marketplace.Options {
		return marketplace.Options{
			BaseURL:    baseURL,
			Timeout:    cfg.Report.FetchTimeout,
			RetryCount: cfg.Report.RetryCount,
		}
	}
	clients := []marketplace.Client{
		marketplace.NewWBClient(opts(cfg.WB.BaseURL)),
		marketplace.NewOzonClient(opts(cfg.Ozon.BaseURL)),
		marketplace.NewYandexClient(opts(cfg.Yandex.BaseURL)),
	}

	aggregator := service.NewAggregatorService(reg, clients, cfg.Report.ConcurrencyLimit, zlog)
	report := service.NewReportService()

	return &Dependencies{
		Registry:   reg,
		Aggregator: aggregator,
		Report:     report,
		ReportCtl:  controller.NewReportController(aggregator, report, zlog),
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务并等待退出信号
func startServer(r *gin.Engine, cfg *config.Config, zlog *zap.Logger) {
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 异步启动服务
	go func() {
		zlog.Info("服务启动", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatal("服务强制关闭", zap.Error(err))
	}

	zlog.Info("服务已退出")
}

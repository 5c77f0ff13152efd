package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/wordcount/aggregate"
	"github.com/BaSui01/wordcount/api/handlers"
	"github.com/BaSui01/wordcount/config"
	"github.com/BaSui01/wordcount/internal/metrics"
	"github.com/BaSui01/wordcount/internal/server"
	"github.com/BaSui01/wordcount/internal/telemetry"
)

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 是 WordCount 的主服务器
type Server struct {
	cfg      *config.Config
	loader   *config.Loader
	logger   *zap.Logger
	logLevel zap.AtomicLevel

	// 服务器管理器
	httpManager    *server.Manager
	metricsManager *server.Manager

	// 聚合与 Handlers
	orchestrator     *aggregate.Orchestrator
	healthHandler    *handlers.HealthHandler
	wordCountHandler *handlers.WordCountHandler

	// 指标
	registry         *prometheus.Registry
	metricsCollector *metrics.Collector

	// 配置热更新
	reloader *config.Reloader
}

// NewServer 组装服务器的全部组件，不监听任何端口
func NewServer(cfg *config.Config, loader *config.Loader, logger *zap.Logger, level zap.AtomicLevel, otelProviders *telemetry.Providers) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		loader:   loader,
		logger:   logger,
		logLevel: level,
		registry: prometheus.NewRegistry(),
	}

	// 1. 指标收集器
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.metricsCollector = metrics.NewCollectorWithRegisterer("wordcount", s.registry, logger)

	// 2. 聚合器
	s.orchestrator = aggregate.New(aggregateConfig(cfg.WordCount), logger,
		aggregate.WithObserver(&metricsObserver{collector: s.metricsCollector}),
		aggregate.WithTracer(otelProviders.AggregateTracer()),
	)

	// 3. Handlers
	s.healthHandler = handlers.NewHealthHandler(logger)
	s.healthHandler.RegisterCheck(handlers.AggregatorHealthCheck(s.orchestrator))
	s.wordCountHandler = handlers.NewWordCountHandler(s.orchestrator, cfg.WordCount.MaxBodyBytes, logger)

	// 4. 热更新
	if cfg.WordCount.HotReload {
		if err := s.initReloader(); err != nil {
			return nil, fmt.Errorf("failed to init config reloader: %w", err)
		}
	}

	return s, nil
}

// aggregateConfig 把配置文件中的聚合参数转换为 Orchestrator 配置
func aggregateConfig(wc config.WordCountConfig) aggregate.Config {
	return aggregate.Config{
		Workers:    wc.Workers,
		ChunkSize:  wc.ChunkSize,
		Shards:     wc.Shards,
		JobTimeout: wc.JobTimeout,
	}
}

// initReloader 配置文件变化时更新聚合参数与日志级别，进行中的任务不受影响
func (s *Server) initReloader() error {
	reloader, err := config.NewReloader(s.loader, s.cfg, s.logger)
	if err != nil {
		return err
	}

	reloader.OnReload(func(old, updated *config.Config) {
		s.orchestrator.Reconfigure(aggregateConfig(updated.WordCount))
		s.logLevel.SetLevel(parseLevel(updated.Log.Level))

		if old.Server.BindAddress != updated.Server.BindAddress ||
			old.Server.MetricsAddress != updated.Server.MetricsAddress ||
			old.WordCount.MaxBodyBytes != updated.WordCount.MaxBodyBytes {
			s.logger.Warn("server settings changed, restart required to apply them")
		}
	})

	s.reloader = reloader
	return nil
}

// =============================================================================
// 🌐 路由与中间件
// =============================================================================

// Handler 返回带完整中间件链的 API handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// 健康检查端点
	mux.HandleFunc("/health", s.healthHandler.HandleHealth)
	mux.HandleFunc("/healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("/ready", s.healthHandler.HandleReady)
	mux.HandleFunc("/version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	// API 路由
	mux.HandleFunc("/wordcount", s.wordCountHandler.HandleWordCount)

	return Chain(mux,
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		OTelTracing(),
		MetricsMiddleware(s.metricsCollector),
		RequestLogger(s.logger),
		CORS(s.cfg.Server.CORSAllowedOrigins),
	)
}

// MetricsHandler 返回 /metrics 的 handler
func (s *Server) MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(s.logger.Named("promhttp")),
	}))
	return mux
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start 启动所有服务（非阻塞）
func (s *Server) Start() error {
	s.httpManager = server.NewManager(s.Handler(), server.APIConfig(s.cfg.Server), s.logger)
	if err := s.httpManager.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if s.cfg.Server.MetricsEnabled {
		s.metricsManager = server.NewManager(s.MetricsHandler(), server.MetricsConfig(s.cfg.Server), s.logger)
		if err := s.metricsManager.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	if s.reloader != nil {
		if err := s.reloader.Start(context.Background()); err != nil {
			return fmt.Errorf("failed to start config reloader: %w", err)
		}
	}

	s.logger.Info("All servers started",
		zap.String("bind_address", s.httpManager.ListenAddr()),
		zap.Bool("metrics_enabled", s.cfg.Server.MetricsEnabled),
		zap.Bool("hot_reload_enabled", s.reloader != nil),
	)
	return nil
}

// =============================================================================
// 🛑 关闭流程
// =============================================================================

// WaitForShutdown 等待关闭信号、ctx 结束或服务器异常退出
func (s *Server) WaitForShutdown(ctx context.Context) error {
	if s.httpManager == nil {
		return nil
	}
	return s.httpManager.WaitForShutdown(ctx)
}

// Shutdown 优雅关闭所有服务
func (s *Server) Shutdown(ctx context.Context) {
	s.logger.Info("Starting graceful shutdown...")

	// 1. 停止配置热更新
	if s.reloader != nil {
		if err := s.reloader.Stop(); err != nil {
			s.logger.Error("Config reloader shutdown error", zap.Error(err))
		}
	}

	// 2. 关闭 HTTP 服务器，等待进行中的请求完成；未成功监听的管理器无需关闭
	if s.httpManager != nil && s.httpManager.IsRunning() {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	// 3. 关闭 Metrics 服务器
	if s.metricsManager != nil && s.metricsManager.IsRunning() {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	s.logger.Info("Graceful shutdown completed")
}

// =============================================================================
// 📊 聚合指标观察者
// =============================================================================

// metricsObserver 把聚合任务事件转发给 Prometheus 收集器
type metricsObserver struct {
	collector *metrics.Collector
}

func (o *metricsObserver) JobStarted(string) {
	o.collector.JobStarted()
}

func (o *metricsObserver) StateChanged(_ string, from, to aggregate.State) {
	o.collector.RecordStateTransition(from.String(), to.String())
}

func (o *metricsObserver) JobFinished(stats aggregate.JobStats) {
	o.collector.RecordAggregation(stats.Status, stats.Duration, stats.Tokens, stats.DistinctWords, stats.Workers, stats.Chunks)
	o.collector.RecordWorkerPanics(stats.TasksPanicked)
}

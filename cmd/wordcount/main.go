// =============================================================================
// WordCount 主入口
// =============================================================================
// 完整服务入口点，包含词频统计 HTTP 服务、健康检查、Prometheus 指标
//
// 使用方法:
//
//	wordcount serve                          # 启动服务
//	wordcount serve --config config.yaml     # 指定配置文件
//	wordcount serve --bind-address :9000     # 覆盖监听地址
//	wordcount health --addr http://127.0.0.1:8080
//	wordcount version                        # 显示版本信息
// =============================================================================

// @title WordCount API
// @version 1.0.0
// @description Concurrent word frequency service: whitespace tokenization, case-insensitive counting.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

package main

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/wordcount/config"
	"github.com/BaSui01/wordcount/internal/telemetry"
	"github.com/BaSui01/wordcount/internal/tlsutil"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "wordcount",
		Usage:   "concurrent word frequency service",
		Version: Version,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the word count server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to config file (YAML)",
						EnvVars: []string{"WORDCOUNT_CONFIG"},
					},
					&cli.StringFlag{
						Name:  "bind-address",
						Usage: "Override server.bind_address (host:port)",
					},
				},
				Action: runServe,
			},
			{
				Name:  "health",
				Usage: "Check server health",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Value: "http://" + config.DefaultBindAddress,
						Usage: "Server base URL",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Value: 5 * time.Second,
						Usage: "Request timeout",
					},
					&cli.StringFlag{
						Name:  "ca-file",
						Usage: "PEM bundle used to verify an https server",
					},
				},
				Action: runHealthCheck,
			},
			{
				Name:   "version",
				Usage:  "Show version information",
				Action: printVersion,
			},
		},
	}
}

// =============================================================================
// 🖥️ serve 命令
// =============================================================================

func runServe(c *cli.Context) error {
	configPath := c.String("config")
	loader := config.NewLoader()
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}
	if addr := c.String("bind-address"); addr != "" {
		loader = loader.WithValidator(func(cfg *config.Config) error {
			cfg.Server.BindAddress = addr
			return nil
		})
	}

	cfg, err := loader.Load()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to load config: %v", err), 1)
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("Invalid config: %v", err), 1)
	}

	logger, level, err := initLogger(cfg.Log)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to init logger: %v", err), 1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting WordCount",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	otelProviders, err := telemetry.Init(cfg, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	srv, err := NewServer(cfg, loader, logger, level, otelProviders)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to build server: %v", err), 1)
	}
	if err := srv.Start(); err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		srv.Shutdown(context.Background())
		return cli.Exit(fmt.Sprintf("Failed to start server: %v", err), 1)
	}

	waitErr := srv.WaitForShutdown(c.Context)
	srv.Shutdown(context.Background())

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := otelProviders.Shutdown(flushCtx); err != nil {
		logger.Warn("telemetry shutdown error", zap.Error(err))
	}

	logger.Info("WordCount stopped")
	if waitErr != nil {
		return cli.Exit(fmt.Sprintf("server exited: %v", waitErr), 1)
	}
	return nil
}

// =============================================================================
// 🏥 健康检查命令
// =============================================================================

func runHealthCheck(c *cli.Context) error {
	var roots *x509.CertPool
	if caFile := c.String("ca-file"); caFile != "" {
		pem, err := os.ReadFile(caFile)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Health check failed: read CA file: %v", err), 1)
		}
		roots = x509.NewCertPool()
		if !roots.AppendCertsFromPEM(pem) {
			return cli.Exit("Health check failed: no certificates in CA file", 1)
		}
	}

	client := tlsutil.SecureHTTPClient(c.Duration("timeout"), roots)
	if err := checkHealth(c.Context, client, c.String("addr")); err != nil {
		return cli.Exit(fmt.Sprintf("Health check failed: %v", err), 1)
	}

	fmt.Fprintln(c.App.Writer, "OK")
	return nil
}

// checkHealth 请求 {addr}/health，要求 200 且响应体为 OK
func checkHealth(ctx context.Context, client *http.Client, addr string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(addr, "/")+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if strings.TrimSpace(string(body)) != "OK" {
		return fmt.Errorf("unexpected body %q", body)
	}
	return nil
}

// =============================================================================
// 📋 版本
// =============================================================================

func printVersion(c *cli.Context) error {
	w := c.App.Writer
	fmt.Fprintf(w, "WordCount %s\n", Version)
	fmt.Fprintf(w, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
	return nil
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

// initLogger 构建 logger，返回的 AtomicLevel 供热更新调整日志级别
func initLogger(cfg config.LogConfig) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	zapConfig := zap.Config{
		Level:             level,
		Development:       cfg.Format == "console",
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.EnableStacktrace,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, level, err
	}
	return logger, level, nil
}

// parseLevel 解析日志级别，无法识别时使用 info
func parseLevel(s string) zapcore.Level {
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

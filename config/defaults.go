// =============================================================================
// 📦 WordCount 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import (
	"runtime"
	"time"
)

// DefaultBindAddress HTTP 服务默认监听地址
const DefaultBindAddress = "127.0.0.1:8080"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		WordCount: DefaultWordCountConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		BindAddress:     DefaultBindAddress,
		MetricsAddress:  "127.0.0.1:9091",
		MetricsEnabled:  true,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// DefaultWordCountConfig 返回默认聚合配置
func DefaultWordCountConfig() WordCountConfig {
	return WordCountConfig{
		Workers:      runtime.NumCPU(),
		ChunkSize:    0,
		Shards:       32,
		JobTimeout:   30 * time.Second,
		MaxBodyBytes: 10 << 20, // 10MB
		HotReload:    false,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "wordcount",
		SampleRate:   0.1,
	}
}

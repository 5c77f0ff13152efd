// 配置加载器与默认配置测试。
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Loader 测试 ---

func TestLoader_LoadDefaults(t *testing.T) {
	// 不指定配置文件，应该返回默认值
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.BindAddress)
	assert.Equal(t, 32, cfg.WordCount.Shards)
	assert.NoError(t, cfg.Validate())
}

func TestLoader_LoadFromYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  bind_address: "0.0.0.0:9000"
  read_timeout: 60s
  cors_allowed_origins:
    - "https://example.com"

wordcount:
  workers: 3
  chunk_size: 4096
  shards: 8
  job_timeout: 2s
  max_body_bytes: 2048

log:
  level: "debug"
  format: "console"
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := NewLoader().
		WithConfigPath(configPath).
		Load()
	require.NoError(t, err)

	// 验证 YAML 值覆盖了默认值
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.BindAddress)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORSAllowedOrigins)

	assert.Equal(t, 3, cfg.WordCount.Workers)
	assert.Equal(t, 4096, cfg.WordCount.ChunkSize)
	assert.Equal(t, 8, cfg.WordCount.Shards)
	assert.Equal(t, 2*time.Second, cfg.WordCount.JobTimeout)
	assert.Equal(t, int64(2048), cfg.WordCount.MaxBodyBytes)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	// 未出现在 YAML 中的字段保留默认值
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "wordcount", cfg.Telemetry.ServiceName)
}

func TestLoader_LoadFromEnv(t *testing.T) {
	t.Setenv("WORDCOUNT_SERVER_BIND_ADDRESS", "127.0.0.1:7777")
	t.Setenv("WORDCOUNT_SERVER_METRICS_ENABLED", "false")
	t.Setenv("WORDCOUNT_WORDCOUNT_WORKERS", "5")
	t.Setenv("WORDCOUNT_WORDCOUNT_JOB_TIMEOUT", "750ms")
	t.Setenv("WORDCOUNT_WORDCOUNT_MAX_BODY_BYTES", "1024")
	t.Setenv("WORDCOUNT_LOG_LEVEL", "warn")
	t.Setenv("WORDCOUNT_LOG_OUTPUT_PATHS", "stdout, /tmp/wordcount.log")
	t.Setenv("WORDCOUNT_TELEMETRY_SAMPLE_RATE", "0.5")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7777", cfg.Server.BindAddress)
	assert.False(t, cfg.Server.MetricsEnabled)
	assert.Equal(t, 5, cfg.WordCount.Workers)
	assert.Equal(t, 750*time.Millisecond, cfg.WordCount.JobTimeout)
	assert.Equal(t, int64(1024), cfg.WordCount.MaxBodyBytes)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"stdout", "/tmp/wordcount.log"}, cfg.Log.OutputPaths)
	assert.Equal(t, 0.5, cfg.Telemetry.SampleRate)
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  bind_address: "127.0.0.1:8888"
wordcount:
  workers: 2
  shards: 4
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	// 设置环境变量（应该覆盖 YAML）
	t.Setenv("WORDCOUNT_SERVER_BIND_ADDRESS", "127.0.0.1:9999")
	t.Setenv("WORDCOUNT_WORDCOUNT_WORKERS", "6")

	cfg, err := NewLoader().
		WithConfigPath(configPath).
		Load()
	require.NoError(t, err)

	// 环境变量应该覆盖 YAML
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.BindAddress)
	assert.Equal(t, 6, cfg.WordCount.Workers)
	// YAML 值应该保留（没有被环境变量覆盖）
	assert.Equal(t, 4, cfg.WordCount.Shards)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("MYAPP_SERVER_BIND_ADDRESS", "localhost:6666")
	t.Setenv("MYAPP_WORDCOUNT_SHARDS", "64")

	cfg, err := NewLoader().
		WithEnvPrefix("MYAPP").
		Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:6666", cfg.Server.BindAddress)
	assert.Equal(t, 64, cfg.WordCount.Shards)
}

func TestLoader_InvalidEnvValue(t *testing.T) {
	t.Setenv("WORDCOUNT_WORDCOUNT_WORKERS", "many")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORDCOUNT_WORDCOUNT_WORKERS")
}

func TestLoader_WithValidator(t *testing.T) {
	validator := func(cfg *Config) error {
		if cfg.WordCount.Workers > 1000 {
			return assert.AnError
		}
		return nil
	}

	t.Setenv("WORDCOUNT_WORDCOUNT_WORKERS", "5000")

	_, err := NewLoader().
		WithValidator(validator).
		Load()
	assert.ErrorIs(t, err, assert.AnError)
}

func TestLoader_NonExistentFile(t *testing.T) {
	// 指定不存在的文件，应该使用默认值（不报错）
	cfg, err := NewLoader().
		WithConfigPath("/non/existent/path/config.yaml").
		Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultBindAddress, cfg.Server.BindAddress)
}

func TestLoader_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
server:
  bind_address: [invalid
  this is not valid yaml
`
	require.NoError(t, os.WriteFile(configPath, []byte(invalidYAML), 0644))

	_, err := NewLoader().
		WithConfigPath(configPath).
		Load()
	assert.Error(t, err)
}

// --- Config 方法测试 ---

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name:    "bind address without port",
			modify:  func(c *Config) { c.Server.BindAddress = "localhost" },
			wantErr: "bind_address",
		},
		{
			name:    "bind address port out of range",
			modify:  func(c *Config) { c.Server.BindAddress = "127.0.0.1:70000" },
			wantErr: "bind_address",
		},
		{
			name:    "metrics address checked only when enabled",
			modify:  func(c *Config) { c.Server.MetricsAddress = "bad" },
			wantErr: "metrics_address",
		},
		{
			name: "metrics disabled ignores address",
			modify: func(c *Config) {
				c.Server.MetricsEnabled = false
				c.Server.MetricsAddress = "bad"
			},
		},
		{
			name:    "tls cert without key",
			modify:  func(c *Config) { c.Server.TLSCertFile = "cert.pem" },
			wantErr: "tls_cert_file",
		},
		{
			name:    "zero workers",
			modify:  func(c *Config) { c.WordCount.Workers = 0 },
			wantErr: "workers",
		},
		{
			name:    "negative chunk size",
			modify:  func(c *Config) { c.WordCount.ChunkSize = -1 },
			wantErr: "chunk_size",
		},
		{
			name:    "zero shards",
			modify:  func(c *Config) { c.WordCount.Shards = 0 },
			wantErr: "shards",
		},
		{
			name:    "zero body limit",
			modify:  func(c *Config) { c.WordCount.MaxBodyBytes = 0 },
			wantErr: "max_body_bytes",
		},
		{
			name:    "unknown log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "log format",
		},
		{
			name:    "sample rate above one",
			modify:  func(c *Config) { c.Telemetry.SampleRate = 1.5 },
			wantErr: "sample_rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateReportsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WordCount.Workers = 0
	cfg.WordCount.Shards = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers must be positive")
	assert.Contains(t, err.Error(), "shards must be positive")
}

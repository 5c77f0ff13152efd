package config

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Reloader 监听配置文件，变化时重新加载并校验，通知订阅者。
// 校验失败的新配置被丢弃，继续使用当前配置。
type Reloader struct {
	loader  *Loader
	watcher *FileWatcher
	logger  *zap.Logger

	mu        sync.RWMutex
	current   *Config
	listeners []func(old, updated *Config)
}

// NewReloader 创建 Reloader，initial 为当前生效的配置。
func NewReloader(loader *Loader, initial *Config, logger *zap.Logger, opts ...WatcherOption) (*Reloader, error) {
	if loader.ConfigPath() == "" {
		return nil, fmt.Errorf("hot reload requires a config file path")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "config_reloader"))

	opts = append([]WatcherOption{WithWatcherLogger(logger)}, opts...)
	watcher, err := NewFileWatcher([]string{loader.ConfigPath()}, opts...)
	if err != nil {
		return nil, err
	}

	r := &Reloader{
		loader:  loader,
		watcher: watcher,
		logger:  logger,
		current: initial,
	}
	watcher.OnChange(func(evt FileEvent) {
		if evt.Op == FileOpRemove {
			r.logger.Warn("config file removed, keeping current config", zap.String("path", evt.Path))
			return
		}
		if err := r.Reload(); err != nil {
			r.logger.Error("config reload failed", zap.Error(err))
		}
	})
	return r, nil
}

// OnReload 注册配置变更回调。
func (r *Reloader) OnReload(fn func(old, updated *Config)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Reload 立即重新加载配置。
func (r *Reloader) Reload() error {
	cfg, err := r.loader.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	old := r.current
	r.current = cfg
	listeners := make([]func(old, updated *Config), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	r.logger.Info("config reloaded",
		zap.Int("workers", cfg.WordCount.Workers),
		zap.Int("chunk_size", cfg.WordCount.ChunkSize),
		zap.Int("shards", cfg.WordCount.Shards),
		zap.String("log_level", cfg.Log.Level))

	for _, fn := range listeners {
		fn(old, cfg)
	}
	return nil
}

// Start 开始监听配置文件。
func (r *Reloader) Start(ctx context.Context) error {
	return r.watcher.Start(ctx)
}

// Stop 停止监听。
func (r *Reloader) Stop() error {
	return r.watcher.Stop()
}

// Package aggregate 把文本切块后交给有界 worker 组并发计数，汇合后生成一次快照。
package aggregate

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/wordcount/counter"
	"github.com/BaSui01/wordcount/internal/ctxkeys"
	"github.com/BaSui01/wordcount/internal/pool"
	"github.com/BaSui01/wordcount/tokenizer"
	"github.com/BaSui01/wordcount/types"
)

// 任务结束状态，用于日志、指标标签
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

// worker 每处理 cancelCheckInterval 个 token 检查一次 context
const cancelCheckInterval = 1024

// =============================================================================
// 🎯 配置
// =============================================================================

// Config 聚合参数
type Config struct {
	// 每个任务的最大并发 worker 数
	Workers int `json:"workers"`
	// 分块字节数，0 表示 ceil(len(text)/Workers)
	ChunkSize int `json:"chunk_size"`
	// 计数器分片数
	Shards int `json:"shards"`
	// 单个任务的超时，0 表示只受调用方 context 约束
	JobTimeout time.Duration `json:"job_timeout"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:    runtime.NumCPU(),
		ChunkSize:  0,
		Shards:     counter.DefaultShards,
		JobTimeout: 30 * time.Second,
	}
}

func (c Config) normalized() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ChunkSize < 0 {
		c.ChunkSize = 0
	}
	if c.Shards <= 0 {
		c.Shards = counter.DefaultShards
	}
	if c.JobTimeout < 0 {
		c.JobTimeout = 0
	}
	return c
}

// JobStats 单个聚合任务的执行统计
type JobStats struct {
	JobID         string        `json:"job_id"`
	Workers       int           `json:"workers"`
	Chunks        int           `json:"chunks"`
	Tokens        int           `json:"tokens"`
	DistinctWords int           `json:"distinct_words"`
	Duration      time.Duration `json:"duration"`
	Status        string        `json:"status"`

	// worker 组的任务结果：完成、失败（含 panic）、panic
	TasksCompleted int `json:"tasks_completed"`
	TasksFailed    int `json:"tasks_failed"`
	TasksPanicked  int `json:"tasks_panicked"`
}

// Observer 接收任务生命周期事件。实现必须是并发安全的。
type Observer interface {
	JobStarted(jobID string)
	StateChanged(jobID string, from, to State)
	JobFinished(stats JobStats)
}

// =============================================================================
// 🧮 Orchestrator
// =============================================================================

// Orchestrator 为每个请求创建独立的聚合任务。本身不保存任何计数状态，
// 可被多个请求并发使用。
type Orchestrator struct {
	cfg         atomic.Pointer[Config]
	logger      *zap.Logger
	observers   []Observer
	tracer      trace.Tracer
	instruments *instruments

	// 测试注入：在每个分块开始计数前调用
	beforeChunk func(ctx context.Context, index int) error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver 注册任务观察者
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		o.observers = append(o.observers, obs)
	}
}

// WithTracer 替换默认的全局 tracer
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = tracer
	}
}

// New 创建 Orchestrator
func New(cfg Config, logger *zap.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		logger: logger.With(zap.String("component", "aggregate")),
		tracer: otel.Tracer(instrumentationName),
	}
	o.Reconfigure(cfg)

	inst, err := defaultInstruments()
	if err != nil {
		o.logger.Warn("otel instruments unavailable, falling back to noop", zap.Error(err))
		inst = noopInstruments()
	}
	o.instruments = inst

	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Reconfigure 原子替换聚合参数，只影响之后开始的任务
func (o *Orchestrator) Reconfigure(cfg Config) {
	n := cfg.normalized()
	o.cfg.Store(&n)
}

// Config 返回当前生效的聚合参数
func (o *Orchestrator) Config() Config {
	return *o.cfg.Load()
}

// Run 统计 text 的词频。失败时不返回任何部分结果。
func (o *Orchestrator) Run(ctx context.Context, text string) (counter.FrequencyTable, error) {
	table, _, err := o.RunWithStats(ctx, text)
	return table, err
}

// RunWithStats 与 Run 相同，并返回任务统计
func (o *Orchestrator) RunWithStats(ctx context.Context, text string) (counter.FrequencyTable, JobStats, error) {
	cfg := o.Config()
	start := time.Now()

	j := &job{
		id:     uuid.NewString(),
		text:   text,
		cfg:    cfg,
		owner:  o,
		state:  StateIdle,
		logger: o.logger,

		observers:   o.observers,
		healthCheck: ctxkeys.IsHealthCheck(ctx),
	}
	// 健康检查任务照常执行，但不通知观察者、不记录指标
	if j.healthCheck {
		j.observers = nil
	}
	j.logger = o.logger.With(zap.String("job_id", j.id))
	if reqID, ok := ctxkeys.RequestID(ctx); ok {
		j.logger = j.logger.With(zap.String("request_id", reqID))
	}

	ctx = ctxkeys.WithJobID(ctx, j.id)
	if cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.JobTimeout)
		defer cancel()
	}

	ctx, span := o.tracer.Start(ctx, "aggregate.Run",
		trace.WithAttributes(
			attribute.String("wordcount.job_id", j.id),
			attribute.Int("wordcount.text_bytes", len(text)),
		))
	defer span.End()

	for _, obs := range j.observers {
		obs.JobStarted(j.id)
	}

	table, err := j.run(ctx)

	stats := JobStats{
		JobID:    j.id,
		Workers:  j.workers,
		Chunks:   len(j.chunks),
		Tokens:   int(j.tokens.Load()),
		Duration: time.Since(start),
		Status:   StatusOK,

		TasksCompleted: int(j.tasks.Completed),
		TasksFailed:    int(j.tasks.Failed),
		TasksPanicked:  int(j.tasks.Panicked),
	}
	if err != nil {
		stats.Status = statusOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		j.logger.Warn("aggregation job failed",
			zap.String("status", stats.Status),
			zap.Int("workers", stats.Workers),
			zap.Int("chunks", stats.Chunks),
			zap.Int("tasks_failed", stats.TasksFailed),
			zap.Int("tasks_panicked", stats.TasksPanicked),
			zap.Duration("duration", stats.Duration),
			zap.Error(err))
	} else {
		stats.DistinctWords = len(table)
		span.SetAttributes(
			attribute.Int("wordcount.workers", stats.Workers),
			attribute.Int("wordcount.chunks", stats.Chunks),
			attribute.Int("wordcount.tokens", stats.Tokens),
			attribute.Int("wordcount.distinct_words", stats.DistinctWords),
		)
		j.logger.Debug("aggregation job completed",
			zap.Int("workers", stats.Workers),
			zap.Int("chunks", stats.Chunks),
			zap.Int("tokens", stats.Tokens),
			zap.Int("distinct_words", stats.DistinctWords),
			zap.Duration("duration", stats.Duration))
	}

	if !j.healthCheck {
		o.instruments.record(ctx, stats)
	}
	for _, obs := range j.observers {
		obs.JobFinished(stats)
	}

	if err != nil {
		return nil, stats, err
	}
	return table, stats, nil
}

func statusOf(err error) string {
	switch types.GetErrorCode(err) {
	case types.ErrCanceled, types.ErrTimeout:
		return StatusCanceled
	default:
		return StatusFailed
	}
}

// =============================================================================
// 🔄 单个聚合任务
// =============================================================================

type job struct {
	id     string
	text   string
	cfg    Config
	owner  *Orchestrator
	logger *zap.Logger

	observers   []Observer
	healthCheck bool

	state   State
	chunks  []string
	workers int
	counter *counter.Counter
	tokens  atomic.Int64
	tasks   pool.GroupStats
}

func (j *job) transition(to State) error {
	from := j.state
	if !CanTransition(from, to) {
		return invalidTransition(from, to)
	}
	j.state = to
	for _, obs := range j.observers {
		obs.StateChanged(j.id, from, to)
	}
	return nil
}

// fail 进入 Failed 并丢弃计数器，保证不会泄露部分结果
func (j *job) fail(err error) error {
	j.counter = nil
	if terr := j.transition(StateFailed); terr != nil {
		return errors.Join(err, terr)
	}
	return err
}

func (j *job) run(ctx context.Context) (counter.FrequencyTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, j.fail(classify(err))
	}

	// Idle → Splitting
	if err := j.transition(StateSplitting); err != nil {
		return nil, err
	}
	j.chunks = tokenizer.Chunks(j.text, j.chunkSize())
	j.workers = min(j.cfg.Workers, len(j.chunks))
	j.counter = counter.New(j.cfg.Shards)

	// Splitting → WorkersRunning，空输入不启动任何 worker
	if err := j.transition(StateWorkersRunning); err != nil {
		return nil, j.fail(err)
	}
	if err := j.fanOut(ctx); err != nil {
		return nil, j.fail(classify(err))
	}

	// WorkersRunning → Joined → SnapshotReady
	if err := j.transition(StateJoined); err != nil {
		return nil, j.fail(err)
	}
	table := j.counter.Snapshot()
	if err := j.transition(StateSnapshotReady); err != nil {
		return nil, j.fail(err)
	}
	return table, nil
}

func (j *job) chunkSize() int {
	if j.cfg.ChunkSize > 0 {
		return j.cfg.ChunkSize
	}
	return (len(j.text) + j.cfg.Workers - 1) / j.cfg.Workers
}

func (j *job) fanOut(ctx context.Context) error {
	if len(j.chunks) == 0 {
		return nil
	}

	g, _ := pool.NewGroup(ctx, pool.GroupConfig{
		MaxWorkers: j.workers,
		PanicHandler: func(r any) {
			j.logger.Error("worker panicked", zap.Any("panic", r), zap.Stack("stack"))
		},
	})
	defer func() { j.tasks = g.Stats() }()

	for i, chunk := range j.chunks {
		if err := g.Go(func(ctx context.Context) error {
			return j.countChunk(ctx, i, chunk)
		}); err != nil {
			return err
		}
	}
	return g.Wait()
}

func (j *job) countChunk(ctx context.Context, index int, chunk string) error {
	if hook := j.owner.beforeChunk; hook != nil {
		if err := hook(ctx, index); err != nil {
			return err
		}
	}

	n := 0
	for tok := range tokenizer.Tokens(chunk) {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		j.counter.Increment(tok)
		n++
	}
	j.tokens.Add(int64(n))
	return nil
}

// classify 把 worker 或 context 错误映射为结构化错误
func classify(err error) error {
	var te *types.Error
	if errors.As(err, &te) {
		return err
	}
	switch {
	case errors.Is(err, pool.ErrTaskPanicked):
		return types.NewAggregationError("worker crashed", err)
	case errors.Is(err, context.DeadlineExceeded):
		return types.NewTimeoutError("aggregation job timed out", err)
	case errors.Is(err, context.Canceled):
		return types.NewCanceledError("aggregation job canceled", err)
	default:
		return types.NewAggregationError("aggregation failed", err)
	}
}

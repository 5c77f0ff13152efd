// Package pool provides a bounded worker group for per-job fan-out.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

var (
	ErrGroupClosed  = errors.New("worker group is closed")
	ErrTaskPanicked = errors.New("task panicked")
)

// Task represents a unit of work.
type Task func(ctx context.Context) error

// GroupConfig configures a Group.
type GroupConfig struct {
	MaxWorkers   int       `json:"max_workers"`
	PanicHandler func(any) `json:"-"`
}

// Group 在 errgroup 之上限制并发数，捕获任务 panic 并统计执行情况。
// 第一个失败的任务会取消 Group 派生的 context，Wait 返回该错误。
// 一个 Group 只服务一次 fan-out：Wait 之后不能再提交任务。
type Group struct {
	eg           *errgroup.Group
	ctx          context.Context
	panicHandler func(any)
	closed       atomic.Bool

	// Metrics
	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	panicked  atomic.Int64
	active    atomic.Int32
}

// NewGroup 创建 Group，返回的 context 会在任一任务失败或 ctx 取消时结束。
func NewGroup(ctx context.Context, config GroupConfig) (*Group, context.Context) {
	eg, gctx := errgroup.WithContext(ctx)
	if config.MaxWorkers > 0 {
		eg.SetLimit(config.MaxWorkers)
	}
	return &Group{
		eg:           eg,
		ctx:          gctx,
		panicHandler: config.PanicHandler,
	}, gctx
}

// Go 提交任务。达到并发上限时阻塞，直到有 worker 空出。
func (g *Group) Go(task Task) error {
	if g.closed.Load() {
		return ErrGroupClosed
	}
	g.submitted.Add(1)
	g.eg.Go(func() error {
		// 已取消的 Group 不再启动新任务
		if err := g.ctx.Err(); err != nil {
			g.failed.Add(1)
			return err
		}

		g.active.Add(1)
		err := g.execute(task)
		g.active.Add(-1)

		if err != nil {
			g.failed.Add(1)
		} else {
			g.completed.Add(1)
		}
		return err
	})
	return nil
}

func (g *Group) execute(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			g.panicked.Add(1)
			if g.panicHandler != nil {
				g.panicHandler(r)
			}
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return task(g.ctx)
}

// Wait 等待所有已提交的任务结束，返回第一个非 nil 错误。
func (g *Group) Wait() error {
	g.closed.Store(true)
	return g.eg.Wait()
}

// Stats returns group statistics.
func (g *Group) Stats() GroupStats {
	return GroupStats{
		Active:    int(g.active.Load()),
		Submitted: g.submitted.Load(),
		Completed: g.completed.Load(),
		Failed:    g.failed.Load(),
		Panicked:  g.panicked.Load(),
	}
}

// GroupStats contains group statistics.
type GroupStats struct {
	Active    int   `json:"active"`
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Panicked  int64 `json:"panicked"`
}

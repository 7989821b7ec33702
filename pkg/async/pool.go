package async

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"CampusClient/config"
	"CampusClient/pkg/logger"

	"github.com/panjf2000/ants/v2"
)

var (
	global   *ants.Pool
	globalMu sync.Mutex
	cfgCopy  config.AsyncConfig
)

// ErrNotInitialized 表示协程池尚未初始化。
var ErrNotInitialized = errors.New("async pool not initialized")

// Pool 返回全局协程池（未初始化时为 nil）。
func Pool() *ants.Pool { return global }

// ReplaceGlobal 设置全局协程池。
func ReplaceGlobal(p *ants.Pool) { global = p }

// Build 根据配置创建协程池实例。
func Build(cfg config.AsyncConfig) (*ants.Pool, error) {
	opts := []ants.Option{
		ants.WithMaxBlockingTasks(cfg.MaxBlockingTasks),
		ants.WithExpiryDuration(cfg.ExpiryDuration),
		ants.WithPanicHandler(func(p any) {
			if logger.L() != nil {
				logger.Error(context.Background(), "async task panic",
					logger.Any("panic", p),
					logger.String("stack", string(debug.Stack())),
				)
			}
		}),
	}
	if cfg.Nonblocking {
		opts = append(opts, ants.WithNonblocking(true))
	}

	return ants.NewPool(cfg.PoolSize, opts...)
}

// Init 初始化全局协程池（仅需在进程启动时调用一次）。
func Init(cfg config.AsyncConfig) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global != nil {
		return nil
	}

	p, err := Build(cfg)
	if err != nil {
		return err
	}

	global = p
	cfgCopy = cfg
	return nil
}

// Submit 将任务投递到全局协程池。
func Submit(task func()) error {
	if global == nil {
		return ErrNotInitialized
	}
	return global.Submit(task)
}

// Release 优雅释放协程池资源（等待任务执行完）。
func Release() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global == nil {
		return nil
	}

	var err error
	if cfgCopy.ReleaseTimeout > 0 {
		err = global.ReleaseTimeout(cfgCopy.ReleaseTimeout)
	} else {
		global.Release()
	}
	global = nil
	return err
}

// RunSafe 安全的异步任务：带超时上下文与 panic 保护。
// 说明：task 内部必须尊重 ctx 取消，超时后任务应尽快退出。
func RunSafe(ctx context.Context, task func(ctx context.Context), timeout time.Duration) {
	if task == nil {
		return
	}

	if timeout <= 0 {
		timeout = time.Minute
	}

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)

	wrap := func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				if logger.L() != nil {
					logger.Error(runCtx, "async task panic",
						logger.Any("panic", r),
						logger.String("stack", string(debug.Stack())),
					)
				}
			}
		}()

		task(runCtx)
	}

	if err := Submit(wrap); err != nil {
		cancel()
		if logger.L() != nil {
			logger.Error(ctx, "async submit failed",
				logger.ErrorField("error", err),
				logger.Duration("timeout", timeout),
			)
		}
	}
}

package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kline-window-monitor/internal/model"
)

// Checker 执行一次窗口检查，自行处理所有错误
type Checker interface {
	Check(ctx context.Context, req model.CheckRequest)
}

// CheckerFunc 允许普通函数作为 Checker
type CheckerFunc func(ctx context.Context, req model.CheckRequest)

func (f CheckerFunc) Check(ctx context.Context, req model.CheckRequest) {
	f(ctx, req)
}

// Scheduler 驱动每秒一次的窗口检查循环
//
// 单一控制流：tick -> 判断窗口 -> 依次执行检查 -> 休眠。
// 同一时刻最多只有一个检查在执行，markers 不需要加锁。
type Scheduler struct {
	windows WindowConfig
	checker Checker
	markers Markers
	logger  *zap.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option 用于替换时钟和休眠 (测试时使用)
type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Scheduler) { s.sleep = sleep }
}

// NewScheduler 创建调度器
func NewScheduler(windows WindowConfig, checker Checker, logger *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		windows: windows,
		checker: checker,
		logger:  logger,
		now:     time.Now,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run 运行调度循环直到 ctx 被取消，返回 ctx.Err()
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Window scheduler started",
		zap.Ints("AcceptedSeconds", s.windows.AcceptedSeconds),
		zap.Int("LeadMinutes", s.windows.LeadMinutes),
		zap.Int("TrailMinutes", s.windows.TrailMinutes))

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info("Window scheduler stopped")
			return err
		}

		start := s.now()
		s.Tick(ctx, start)
		elapsed := s.now().Sub(start)

		if err := s.sleep(ctx, SleepDuration(elapsed)); err != nil {
			s.logger.Info("Window scheduler stopped")
			return err
		}
	}
}

// Tick 处理一个时刻，返回触发的检查数量
func (s *Scheduler) Tick(ctx context.Context, now time.Time) int {
	reqs := s.windows.Evaluate(now, &s.markers)
	for _, req := range reqs {
		if ctx.Err() != nil {
			break
		}
		s.runCheck(ctx, req)
	}
	return len(reqs)
}

// runCheck 隔离单次检查，检查中的 panic 不会终止循环
func (s *Scheduler) runCheck(ctx context.Context, req model.CheckRequest) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Window check panicked",
				zap.String("Window", req.Label), zap.Any("Panic", r))
		}
	}()
	s.checker.Check(ctx, req)
}

// Markers 返回当前的触发记录，只能在 Run 返回后或同一 goroutine 中调用
func (s *Scheduler) Markers() Markers {
	return s.markers
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package scheduler

import (
	"time"

	"kline-window-monitor/internal/model"
	"kline-window-monitor/internal/service"
)

const (
	// TickPeriod 调度循环的目标周期
	TickPeriod = time.Second
	// MinSleep 单次循环的最短休眠，工作耗时超过周期时也不会忙等
	MinSleep = time.Millisecond
)

// WindowConfig 定义检查窗口
//
// 循环每秒醒来一次，但只在 AcceptedSeconds 中的秒数触发，
// 允许实际的 tick 漂移几秒时仍能在窗口内命中至少一次。
type WindowConfig struct {
	AcceptedSeconds []int
	LeadMinutes     int // 整点前的分钟数，5 表示从 55 分开始
	TrailMinutes    int // 整点后的分钟数，5 表示到 05 分为止 (含)
}

// DefaultWindowConfig 秒数 {0,3,5}，窗口为 xx:55 ~ xx:05
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		AcceptedSeconds: []int{0, 3, 5},
		LeadMinutes:     5,
		TrailMinutes:    5,
	}
}

// NewWindowConfig 从配置构造窗口
func NewWindowConfig(cfg service.ScheduleConfig) WindowConfig {
	secs := make([]int, len(cfg.AcceptedSeconds))
	copy(secs, cfg.AcceptedSeconds)
	return WindowConfig{
		AcceptedSeconds: secs,
		LeadMinutes:     cfg.LeadMinutes,
		TrailMinutes:    cfg.TrailMinutes,
	}
}

func (w WindowConfig) acceptedSecond(sec int) bool {
	for _, s := range w.AcceptedSeconds {
		if s == sec {
			return true
		}
	}
	return false
}

func (w WindowConfig) beforeBoundary(minute int) bool {
	return minute >= 60-w.LeadMinutes
}

func (w WindowConfig) afterBoundary(minute int) bool {
	return minute <= w.TrailMinutes
}

// InHourlyWindow 当前 UTC 秒数可接受，且分钟在整点前后窗口内
func (w WindowConfig) InHourlyWindow(t time.Time) bool {
	t = t.UTC()
	if !w.acceptedSecond(t.Second()) {
		return false
	}
	return w.beforeBoundary(t.Minute()) || w.afterBoundary(t.Minute())
}

// InDailyWindow 当前 UTC 秒数可接受，且处于 23:55 ~ 00:05 (UTC)
func (w WindowConfig) InDailyWindow(t time.Time) bool {
	t = t.UTC()
	if !w.acceptedSecond(t.Second()) {
		return false
	}
	return (t.Hour() == 23 && w.beforeBoundary(t.Minute())) ||
		(t.Hour() == 0 && w.afterBoundary(t.Minute()))
}

// In 按窗口类型判断
func (w WindowConfig) In(kind model.WindowKind, t time.Time) bool {
	switch kind {
	case model.WindowHourly:
		return w.InHourlyWindow(t)
	case model.WindowDaily:
		return w.InDailyWindow(t)
	}
	return false
}

// Occurrence 返回窗口内某一时刻所属的边界时刻 (最近的整点 / 最近的 UTC 零点)
// 同一次窗口内的所有时刻返回同一个值
func (w WindowConfig) Occurrence(kind model.WindowKind, t time.Time) time.Time {
	t = t.UTC()
	switch kind {
	case model.WindowDaily:
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if t.Hour() >= 12 {
			return midnight.AddDate(0, 0, 1)
		}
		return midnight
	default:
		hour := t.Truncate(time.Hour)
		if t.Minute() >= 30 {
			return hour.Add(time.Hour)
		}
		return hour
	}
}

// Markers 记录每种窗口最近一次触发的时刻 (UTC)
// 只由调度循环读写，不加锁
type Markers struct {
	LastHourly time.Time
	LastDaily  time.Time
}

func (m *Markers) last(kind model.WindowKind) time.Time {
	if kind == model.WindowDaily {
		return m.LastDaily
	}
	return m.LastHourly
}

func (m *Markers) mark(kind model.WindowKind, t time.Time) {
	if kind == model.WindowDaily {
		m.LastDaily = t
		return
	}
	m.LastHourly = t
}

// due 同一次窗口内只触发一次
func (w WindowConfig) due(kind model.WindowKind, now time.Time, m *Markers) bool {
	last := m.last(kind)
	if last.IsZero() {
		return true
	}
	return !w.Occurrence(kind, last).Equal(w.Occurrence(kind, now))
}

// Evaluate 判断 now 需要触发哪些检查，并立即更新 markers
// markers 在检查执行前更新，检查失败也不会在同一窗口内重复触发
func (w WindowConfig) Evaluate(now time.Time, m *Markers) []model.CheckRequest {
	now = now.UTC()
	var reqs []model.CheckRequest
	for _, kind := range []model.WindowKind{model.WindowHourly, model.WindowDaily} {
		if !w.In(kind, now) || !w.due(kind, now, m) {
			continue
		}
		m.mark(kind, now)
		reqs = append(reqs, model.NewCheckRequest(kind, now))
	}
	return reqs
}

// SleepDuration 返回本次循环应休眠的时长: max(TickPeriod - elapsed, MinSleep)
func SleepDuration(elapsed time.Duration) time.Duration {
	d := TickPeriod - elapsed
	if d < MinSleep {
		return MinSleep
	}
	return d
}

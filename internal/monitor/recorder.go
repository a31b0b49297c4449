package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"kline-window-monitor/internal/model"
	"kline-window-monitor/internal/service"
	"kline-window-monitor/pkg/ta"
)

// KlineFetcher 拉取最近的 K 线 (最新在前)
type KlineFetcher interface {
	FetchKlines(ctx context.Context, interval string) ([]model.Candle, error)
}

// Sink 是检查结果的写入目标，一次调用写入的行必须作为整体落盘
type Sink interface {
	Append(lines []string) error
}

// RecorderConfig 定义了写入 journal 的内容
type RecorderConfig struct {
	Symbol string
	Rows   int // 每次检查写入的 K 线条数
}

// Recorder 执行一次检查：拉取 K 线，格式化，追加到 journal
// 所有错误都在这里消化，调度循环不会因为一次失败的检查而中断
type Recorder struct {
	fetcher KlineFetcher
	sink    Sink
	calc    *ta.TACalculator
	cfg     RecorderConfig
	logger  *zap.Logger
}

// NewRecorder calc 为空时不写汇总行
func NewRecorder(fetcher KlineFetcher, sink Sink, calc *ta.TACalculator, cfg RecorderConfig, logger *zap.Logger) *Recorder {
	if cfg.Rows <= 0 {
		cfg.Rows = 3
	}
	return &Recorder{
		fetcher: fetcher,
		sink:    sink,
		calc:    calc,
		cfg:     cfg,
		logger:  logger,
	}
}

// Check 实现 scheduler 的检查回调
func (r *Recorder) Check(ctx context.Context, req model.CheckRequest) {
	logger := r.logger.With(zap.String("Window", req.Label), zap.String("Interval", req.Interval))
	logger.Info("Running window check", zap.Time("At", req.At))

	started := time.Now()
	candles, err := r.fetcher.FetchKlines(ctx, req.Interval)
	if err == nil && len(candles) == 0 {
		err = errors.New("exchange returned no candles")
	}

	if err != nil && ctx.Err() != nil {
		// 监控被停止，不算检查失败，也不写 journal
		logger.Info("Check aborted, monitoring stopped", zap.Error(err))
		return
	}

	var lines []string
	if err != nil {
		logger.Warn("Window check failed", zap.Error(err))
		lines = FormatFailure(req, err)
	} else {
		lines = FormatReport(req, r.cfg.Symbol, candles, r.cfg.Rows)
		if summary, ok := r.summarize(candles, logger); ok {
			// 汇总行放在结尾空行之前
			lines = append(lines[:len(lines)-1], summary.String(), "")
		}
	}

	if appendErr := r.sink.Append(lines); appendErr != nil {
		logger.Error("Failed to append check result to journal", zap.Error(appendErr))
		return
	}

	logger.Info("Window check recorded",
		zap.Bool("Success", err == nil),
		zap.Int("Candles", len(candles)),
		zap.Duration("Elapsed", time.Since(started)))
}

func (r *Recorder) summarize(candles []model.Candle, logger *zap.Logger) (ta.Summary, bool) {
	if r.calc == nil {
		return ta.Summary{}, false
	}
	summary, err := r.calc.Summarize(candles)
	if err != nil {
		logger.Debug("Summary skipped", zap.Error(err))
		return ta.Summary{}, false
	}
	return summary, true
}

// FormatReport 生成一次成功检查的 journal 块，以空行结尾
// candles 按交易所顺序 (最新在前)，只写入前 rows 根
func FormatReport(req model.CheckRequest, symbol string, candles []model.Candle, rows int) []string {
	if rows > len(candles) {
		rows = len(candles)
	}
	lines := make([]string, 0, rows+4)
	lines = append(lines,
		fmt.Sprintf("=== %s | %s ===", req.Kind.Title(), symbol),
		fmt.Sprintf("Check time: %s UTC | %s UTC+8",
			service.FormatTime(req.At, time.UTC), service.FormatTime(req.At, model.DisplayZone)),
		fmt.Sprintf("Interval: %s", req.Interval),
	)
	for i, c := range candles[:rows] {
		lines = append(lines, FormatCandle(i+1, c))
	}
	return append(lines, "")
}

// FormatCandle 格式化单根 K 线，时间使用 UTC+8
func FormatCandle(n int, c model.Candle) string {
	return fmt.Sprintf("#%d %s UTC+8 | O: %s H: %s L: %s C: %s V: %s",
		n, service.FormatTime(c.Time, model.DisplayZone),
		c.Open.String(), c.High.String(), c.Low.String(), c.Close.String(), c.Volume.String())
}

// FormatFailure 生成一次失败检查的 journal 块：一行带时间戳的错误信息加结尾空行
func FormatFailure(req model.CheckRequest, err error) []string {
	// 错误信息可能带有响应体中的换行，压成一行
	msg := strings.Join(strings.Fields(err.Error()), " ")
	return []string{
		fmt.Sprintf("[%s UTC] %s check failed: %s", service.FormatTime(req.At, time.UTC), req.Label, msg),
		"",
	}
}

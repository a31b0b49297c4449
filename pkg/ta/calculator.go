package ta

import (
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"kline-window-monitor/internal/model"
)

// Summary 是一次检查拉取到的全部 K 线的汇总
type Summary struct {
	Count     int
	SMAClose  float64         // 全部 K 线收盘价的简单均线
	High      decimal.Decimal // 区间最高价
	Low       decimal.Decimal // 区间最低价
	ChangePct decimal.Decimal // 最新收盘价相对最早开盘价的涨跌幅 (%)
}

func (s Summary) String() string {
	return fmt.Sprintf("Summary: candles=%d sma_close=%.2f range=%s-%s change=%s%%",
		s.Count, s.SMAClose, s.Low.String(), s.High.String(), s.ChangePct.StringFixed(2))
}

// TACalculator 负责在 K 线上计算汇总指标
type TACalculator struct {
	MinHistoryLen int // 计算均线所需的最小 K 线数量
	Logger        *zap.Logger
}

// NewTACalculator 初始化技术指标计算器
func NewTACalculator(logger *zap.Logger) *TACalculator {
	return &TACalculator{
		MinHistoryLen: 2,
		Logger:        logger,
	}
}

// Summarize 计算汇总，candles 按交易所顺序传入 (最新在前)
func (tc *TACalculator) Summarize(candles []model.Candle) (Summary, error) {
	if len(candles) < tc.MinHistoryLen {
		return Summary{}, fmt.Errorf("need at least %d candles for summary, got %d", tc.MinHistoryLen, len(candles))
	}

	// talib 需要按时间正序的收盘价序列
	closePrices := make([]float64, len(candles))
	high, low := candles[0].High, candles[0].Low
	for i, c := range candles {
		closePrices[len(candles)-1-i] = c.Close.InexactFloat64()
		high = decimal.Max(high, c.High)
		low = decimal.Min(low, c.Low)
	}

	// --- 均线 (周期为全部 K 线) ---
	maResult := talib.Sma(closePrices, len(closePrices))

	newest, oldest := candles[0], candles[len(candles)-1]
	change := decimal.Zero
	if !oldest.Open.IsZero() {
		change = newest.Close.Sub(oldest.Open).Div(oldest.Open).Mul(decimal.NewFromInt(100)).Round(2)
	}

	summary := Summary{
		Count:     len(candles),
		SMAClose:  maResult[len(maResult)-1], // 取最新值
		High:      high,
		Low:       low,
		ChangePct: change,
	}
	tc.Logger.Debug("Summary calculated", zap.Int("Count", summary.Count), zap.Float64("SMA", summary.SMAClose))
	return summary, nil
}

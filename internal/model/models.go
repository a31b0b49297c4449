package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisplayZone 是 journal 中展示 K 线时间使用的固定时区 (UTC+8)
var DisplayZone = time.FixedZone("UTC+8", 8*60*60)

// Candle 代表交易所返回的一根 K 线，创建后不再修改
type Candle struct {
	Time   time.Time // 开盘时间 (已转换到 DisplayZone)
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

// WindowKind 检查窗口的类型
type WindowKind string

const (
	WindowHourly WindowKind = "hourly" // 整点前后
	WindowDaily  WindowKind = "daily"  // UTC 零点前后
)

// Interval 返回交易所使用的 K 线周期参数
func (k WindowKind) Interval() string {
	switch k {
	case WindowHourly:
		return "60"
	case WindowDaily:
		return "D"
	}
	return ""
}

// Label 是写入 journal 的窗口名称
func (k WindowKind) Label() string {
	return string(k)
}

// Title 用于 journal 中每个检查块的标题行
func (k WindowKind) Title() string {
	switch k {
	case WindowHourly:
		return "Hourly check (1h candles)"
	case WindowDaily:
		return "Daily check (1d candles)"
	}
	return string(k) + " check"
}

// CheckRequest 是调度器触发的一次检查
type CheckRequest struct {
	Kind     WindowKind
	Interval string    // 交易所周期参数，例如 "60", "D"
	At       time.Time // 触发时刻 (UTC)
	Label    string
}

// NewCheckRequest 根据窗口类型构造检查请求
func NewCheckRequest(kind WindowKind, at time.Time) CheckRequest {
	return CheckRequest{
		Kind:     kind,
		Interval: kind.Interval(),
		At:       at.UTC(),
		Label:    kind.Label(),
	}
}

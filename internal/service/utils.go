package service

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// 交易所返回的价格和数量都是字符串，统一转换为 decimal，避免浮点误差
func StringToDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "invalid decimal %q", s)
	}
	return d, nil
}

func StringToInt64(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid integer %q", s)
	}
	return v, nil
}

// 毫秒时间戳 -> 指定时区的时间
func MillisToTime(ms int64, loc *time.Location) time.Time {
	return time.UnixMilli(ms).In(loc)
}

// 统一的时间展示格式，journal 中 UTC 与 UTC+8 时间都使用它
const DisplayLayout = "2006-01-02 15:04:05"

func FormatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DisplayLayout)
}

func IntToString(v int) string {
	return strconv.Itoa(v)
}

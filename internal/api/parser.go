package api

import (
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"kline-window-monitor/internal/model"
	"kline-window-monitor/internal/service"
)

// 每根 K 线数组至少包含 [startTime, open, high, low, close, volume]
const minKlineFields = 6

// ParseKlines 解析 Bybit kline 响应，不做任何 I/O
//
// 响应格式: {"retCode":0,"retMsg":"OK","result":{"list":[["1704067200000","42000.5",...], ...]}}
// list 中最新的 K 线在前，返回值保持相同顺序。
func ParseKlines(body []byte) ([]model.Candle, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("invalid JSON payload")
	}

	// retCode 存在且非 0 说明交易所拒绝了请求 (HTTP 状态仍为 200)
	if retCode := gjson.GetBytes(body, "retCode"); retCode.Exists() && retCode.Int() != 0 {
		return nil, errors.Errorf("exchange error %d: %s", retCode.Int(), gjson.GetBytes(body, "retMsg").String())
	}

	list := gjson.GetBytes(body, "result.list")
	if !list.IsArray() {
		return nil, errors.New("payload missing result.list")
	}

	rows := list.Array()
	candles := make([]model.Candle, 0, len(rows))
	for i, row := range rows {
		candle, err := parseKlineRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "kline %d", i)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func parseKlineRow(row gjson.Result) (model.Candle, error) {
	if !row.IsArray() {
		return model.Candle{}, errors.Errorf("expected array, got %s", row.Type)
	}
	fields := row.Array()
	if len(fields) < minKlineFields {
		return model.Candle{}, errors.Errorf("expected at least %d fields, got %d", minKlineFields, len(fields))
	}

	ms, err := service.StringToInt64(fields[0].String())
	if err != nil {
		return model.Candle{}, errors.Wrap(err, "start time")
	}

	open, err := service.StringToDecimal(fields[1].String())
	if err != nil {
		return model.Candle{}, errors.Wrap(err, "open")
	}
	high, err := service.StringToDecimal(fields[2].String())
	if err != nil {
		return model.Candle{}, errors.Wrap(err, "high")
	}
	low, err := service.StringToDecimal(fields[3].String())
	if err != nil {
		return model.Candle{}, errors.Wrap(err, "low")
	}
	closePrice, err := service.StringToDecimal(fields[4].String())
	if err != nil {
		return model.Candle{}, errors.Wrap(err, "close")
	}
	volume, err := service.StringToDecimal(fields[5].String())
	if err != nil {
		return model.Candle{}, errors.Wrap(err, "volume")
	}

	return model.Candle{
		Time:   service.MillisToTime(ms, model.DisplayZone),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}

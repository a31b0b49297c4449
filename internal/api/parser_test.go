package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kline-window-monitor/internal/model"
)

const sampleKlineBody = `{
	"retCode": 0,
	"retMsg": "OK",
	"result": {
		"category": "spot",
		"symbol": "BTCUSDT",
		"list": [
			["1704067200000", "42283.58", "42554.57", "42261.02", "42475.23", "1271.68108", "53839034.5"],
			["1704063600000", "42314.09", "42384.27", "42243.48", "42283.58", "608.13612", "25734116.2"],
			["1704060000000", "42139.09", "42314.09", "42122.91", "42314.09", "404.21937", "17052312.1"],
			["1704056400000", "42110.15", "42173.95", "42062.63", "42139.09", "527.48112", "22214413.9"]
		]
	},
	"time": 1704067380000
}`

func TestParseKlines(t *testing.T) {
	candles, err := ParseKlines([]byte(sampleKlineBody))
	require.NoError(t, err)
	require.Len(t, candles, 4)

	first := candles[0]
	// 1704067200000 == 2024-01-01T00:00:00Z == 08:00 UTC+8
	assert.True(t, time.Date(2024, 1, 1, 8, 0, 0, 0, model.DisplayZone).Equal(first.Time))
	assert.Equal(t, "2024-01-01 08:00:00", first.Time.Format("2006-01-02 15:04:05"))
	_, offset := first.Time.Zone()
	assert.Equal(t, 8*60*60, offset)
	assert.Equal(t, "42283.58", first.Open.String())
	assert.Equal(t, "42554.57", first.High.String())
	assert.Equal(t, "42261.02", first.Low.String())
	assert.Equal(t, "42475.23", first.Close.String())
	assert.Equal(t, "1271.68108", first.Volume.String())

	// 保持交易所顺序 (最新在前)
	assert.True(t, candles[1].Time.Before(candles[0].Time))
}

func TestParseKlines_EmptyList(t *testing.T) {
	candles, err := ParseKlines([]byte(`{"retCode":0,"result":{"list":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, candles)
}

func TestParseKlines_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"not json", `<html>oops</html>`, "invalid JSON payload"},
		{"empty body", ``, "invalid JSON payload"},
		{"exchange rejected", `{"retCode":10001,"retMsg":"params error","result":{}}`, "exchange error 10001: params error"},
		{"missing list", `{"retCode":0,"result":{}}`, "payload missing result.list"},
		{"list not array", `{"result":{"list":"x"}}`, "payload missing result.list"},
		{"row not array", `{"result":{"list":[{"a":1}]}}`, "kline 0: expected array"},
		{"short row", `{"result":{"list":[["1704067200000","1","2","3","4"]]}}`, "kline 0: expected at least 6 fields, got 5"},
		{"bad time", `{"result":{"list":[["abc","1","2","3","4","5"]]}}`, "kline 0: start time"},
		{"bad price", `{"result":{"list":[["1704067200000","1","2","x","4","5"]]}}`, "kline 0: low"},
		{"bad volume second row", `{"result":{"list":[["1704067200000","1","2","3","4","5"],["1704063600000","1","2","3","4","abc"]]}}`, "kline 1: volume"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKlines([]byte(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"kline-window-monitor/internal/model"
	"kline-window-monitor/internal/service"
)

const (
	klinePath = "/v5/market/kline"

	// 响应体读取上限，10 根 K 线远小于这个值
	maxBodyBytes = 1 << 20
	// 错误信息中保留的响应体长度
	maxErrBodyLen = 256
)

// KlineClient 通过 Bybit V5 REST 接口拉取最近的 K 线
type KlineClient struct {
	httpClient *http.Client
	baseURL    string
	category   string
	symbol     string
	limit      int
	logger     *zap.Logger
}

// NewKlineClient 创建 K 线客户端，httpClient 为空时按配置的超时创建
func NewKlineClient(cfg service.ExchangeConfig, httpClient *http.Client, logger *zap.Logger) *KlineClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &KlineClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.RESTURL, "/"),
		category:   cfg.Category,
		symbol:     cfg.Symbol,
		limit:      cfg.Limit,
		logger:     logger.With(zap.String("Symbol", cfg.Symbol)),
	}
}

// Symbol 返回客户端请求的交易对
func (c *KlineClient) Symbol() string {
	return c.symbol
}

// RequestURL 构造一次 K 线请求的完整地址
func (c *KlineClient) RequestURL(interval string) string {
	q := url.Values{}
	q.Set("category", c.category)
	q.Set("symbol", c.symbol)
	q.Set("interval", interval)
	q.Set("limit", service.IntToString(c.limit))
	return c.baseURL + klinePath + "?" + q.Encode()
}

// FetchKlines 发起一次 GET 请求并解析返回的 K 线 (按交易所顺序，最新在前)
func (c *KlineClient) FetchKlines(ctx context.Context, interval string) ([]model.Candle, error) {
	reqURL := c.RequestURL(interval)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build kline request")
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Requesting klines", zap.String("Interval", interval), zap.String("URL", reqURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "kline request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read kline response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("unexpected HTTP status %d: %s", resp.StatusCode, truncate(string(body), maxErrBodyLen))
	}

	candles, err := ParseKlines(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Klines received", zap.String("Interval", interval), zap.Int("Count", len(candles)))
	return candles, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"kline-window-monitor/internal/scheduler"
)

func TestSchedulerWithFailingFetch_KeepsTicking(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("dial tcp: i/o timeout")}
	sink := &memorySink{}
	logger := zaptest.NewLogger(t)
	r := NewRecorder(fetcher, sink, nil, RecorderConfig{Symbol: "BTCUSDT"}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Date(2024, 1, 1, 0, 2, 58, 0, time.UTC)
	ticks := 0
	s := scheduler.NewScheduler(scheduler.DefaultWindowConfig(), r, logger,
		scheduler.WithClock(func() time.Time { return now }),
		scheduler.WithSleeper(func(ctx context.Context, d time.Duration) error {
			ticks++
			now = now.Add(d)
			if ticks == 20 {
				cancel()
			}
			return ctx.Err()
		}))

	require.ErrorIs(t, s.Run(ctx), context.Canceled)
	assert.Equal(t, 20, ticks)

	// 00:03:00 同时触发 hourly 和 daily，之后的 0/3/5 秒不再触发
	assert.Equal(t, []string{"60", "D"}, fetcher.intervals)
	require.Len(t, sink.blocks, 2)
	assert.Contains(t, sink.blocks[0][0], "hourly check failed")
	assert.Contains(t, sink.blocks[1][0], "daily check failed")
}

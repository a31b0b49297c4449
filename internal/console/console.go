// Package console 是交互式的启动/停止入口：回车开始监控，再次回车停止，q 退出。
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// RunFunc 运行一次监控，直到 ctx 被取消
type RunFunc func(ctx context.Context) error

type session struct {
	cancel context.CancelFunc
	done   chan error
}

// Console 读取按键输入并控制监控的启动和停止
type Console struct {
	in     io.Reader
	out    io.Writer
	run    RunFunc
	logger *zap.Logger
}

func New(in io.Reader, out io.Writer, run RunFunc, logger *zap.Logger) *Console {
	return &Console{in: in, out: out, run: run, logger: logger}
}

// Serve 处理输入直到 q、输入结束或 ctx 被取消，退出前会等待正在进行的检查结束
func (c *Console) Serve(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	c.printf("Kline window monitor. Press Enter to start monitoring, Enter again to stop, q to quit.\n")

	var cur *session
	for {
		var done chan error
		if cur != nil {
			done = cur.done
		}

		select {
		case <-ctx.Done():
			c.stop(cur)
			c.printf("Bye.\n")
			return nil

		case err := <-done:
			// 监控自行结束 (不是用户停止的)
			cur = nil
			c.report(err)

		case line, ok := <-lines:
			if !ok || line == "q" || line == "quit" {
				c.stop(cur)
				c.printf("Bye.\n")
				return nil
			}
			if cur == nil {
				cur = c.start(ctx)
			} else {
				c.stop(cur)
				cur = nil
			}
		}
	}
}

func (c *Console) start(ctx context.Context) *session {
	runCtx, cancel := context.WithCancel(ctx)
	s := &session{cancel: cancel, done: make(chan error, 1)}
	go func() {
		s.done <- c.run(runCtx)
	}()
	c.logger.Info("Monitoring started")
	c.printf("Monitoring started. Press Enter to stop.\n")
	return s
}

// stop 取消监控并等待它退出
func (c *Console) stop(s *session) {
	if s == nil {
		return
	}
	s.cancel()
	c.report(<-s.done)
}

func (c *Console) report(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		c.logger.Info("Monitoring stopped")
		c.printf("Monitoring stopped.\n")
		return
	}
	c.logger.Error("Monitoring ended with error", zap.Error(err))
	c.printf("Monitoring ended: %v\n", err)
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

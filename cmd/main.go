package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"kline-window-monitor/internal/api"
	"kline-window-monitor/internal/console"
	"kline-window-monitor/internal/journal"
	"kline-window-monitor/internal/monitor"
	"kline-window-monitor/internal/scheduler"
	"kline-window-monitor/internal/service"
	"kline-window-monitor/pkg/ta"
)

func main() {
	service.InitLogger()
	defer service.Logger.Sync()

	// config/ 目录不存在时全部使用默认值
	configPath := "config"
	cfg, err := service.LoadConfig(configPath)
	if err != nil {
		service.Logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if err := service.SetLogLevel(cfg.Log.Level); err != nil {
		service.Logger.Fatal("Invalid log level", zap.String("Level", cfg.Log.Level), zap.Error(err))
	}
	if cfg.Source == "" {
		service.Logger.Info("No config file found, using defaults", zap.String("Path", configPath))
	} else {
		service.Logger.Info("Configuration loaded", zap.String("File", cfg.Source))
	}

	// 1. 打开本次运行的 journal 文件 (文件名包含启动时间)
	startTime := time.Now()
	j, err := journal.Open(cfg.Journal.Dir, journal.FileName(cfg.Journal.Prefix, startTime))
	if err != nil {
		service.Logger.Fatal("Failed to open journal", zap.Error(err))
	}
	defer j.Close()
	service.Logger.Info("Journal opened", zap.String("Path", j.Path()))

	// 2. 行情客户端 + 检查记录器
	client := api.NewKlineClient(cfg.Exchange, nil, service.Logger)
	recorder := monitor.NewRecorder(
		client,
		j,
		ta.NewTACalculator(service.Logger),
		monitor.RecorderConfig{Symbol: client.Symbol(), Rows: cfg.Report.Rows},
		service.Logger,
	)

	// 3. 每次启动监控都使用新的调度器 (触发记录只在一次监控期间有效)
	windows := scheduler.NewWindowConfig(cfg.Schedule)
	run := func(ctx context.Context) error {
		return scheduler.NewScheduler(windows, recorder, service.Logger).Run(ctx)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. 控制台：回车开始/停止，q 退出
	if err := console.New(os.Stdin, os.Stdout, run, service.Logger).Serve(ctx); err != nil {
		service.Logger.Error("Console exited with error", zap.Error(err))
	}
}

package service

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 是全局日志接口
// 在其他模块中使用：service.Logger.Info("Check finished", zap.String("Window", label))
var Logger *zap.Logger

// logLevel 允许在读取配置后调整日志级别
var logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

// InitLogger 初始化高性能的 Zap 日志
func InitLogger() {
	// 配置 Zap 日志
	config := zap.NewProductionConfig()
	config.Level = logLevel

	// 格式化时间
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "time"

	// 行情检查结果写入 journal 文件，这里只输出运行日志
	config.OutputPaths = []string{"stderr"}

	var err error
	Logger, err = config.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
}

// SetLogLevel 根据配置中的字符串 (debug/info/warn/error) 设置日志级别
func SetLogLevel(level string) error {
	if level == "" {
		return nil
	}
	return logLevel.UnmarshalText([]byte(level))
}

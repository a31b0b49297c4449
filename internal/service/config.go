// internal/service/config.go
package service

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config 是监控程序的全部配置，未出现在配置文件中的项使用默认值
type Config struct {
	Exchange ExchangeConfig `mapstructure:"Exchange"`
	Schedule ScheduleConfig `mapstructure:"Schedule"`
	Journal  JournalConfig  `mapstructure:"Journal"`
	Report   ReportConfig   `mapstructure:"Report"`
	Log      LogConfig      `mapstructure:"Log"`

	// Source 是实际读取的配置文件路径，为空表示全部使用默认值
	Source string `mapstructure:"-"`
}

// ExchangeConfig 定义了行情接口的连接信息
type ExchangeConfig struct {
	RESTURL  string
	Category string
	Symbol   string
	Limit    int           // 每次请求的 K 线数量
	Timeout  time.Duration // 单次 HTTP 请求超时
}

// ScheduleConfig 定义了检查窗口
type ScheduleConfig struct {
	AcceptedSeconds []int // 允许触发的秒数，用于容忍循环本身的抖动
	LeadMinutes     int   // 整点前的分钟数 (5 => 55 分起)
	TrailMinutes    int   // 整点后的分钟数 (5 => 到 05 分)
}

// JournalConfig 定义了检查结果日志文件
type JournalConfig struct {
	Dir    string
	Prefix string
}

// ReportConfig 定义了每次检查写入的内容
type ReportConfig struct {
	Rows int // 写入的最新 K 线条数
}

type LogConfig struct {
	Level string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Exchange.RESTURL", "https://api.bybit.com")
	v.SetDefault("Exchange.Category", "spot")
	v.SetDefault("Exchange.Symbol", "BTCUSDT")
	v.SetDefault("Exchange.Limit", 10)
	v.SetDefault("Exchange.Timeout", 10*time.Second)

	v.SetDefault("Schedule.AcceptedSeconds", []int{0, 3, 5})
	v.SetDefault("Schedule.LeadMinutes", 5)
	v.SetDefault("Schedule.TrailMinutes", 5)

	v.SetDefault("Journal.Dir", ".")
	v.SetDefault("Journal.Prefix", "kline_monitor")

	v.SetDefault("Report.Rows", 3)

	v.SetDefault("Log.Level", "info")
}

// LoadConfig 读取并解析配置文件，配置文件不存在时返回默认配置
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// 设置配置文件的名称、类型和路径
	v.SetConfigName("config") // 文件名是 config
	v.SetConfigType("yaml")   // 文件类型是 yaml
	v.AddConfigPath(configPath)

	// 查找并读取配置文件
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "error reading config file")
		}
	}

	// 将配置绑定到结构体
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unable to decode config into struct")
	}
	cfg.Source = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查配置是否能构成合法的检查窗口
func (c *Config) Validate() error {
	if c.Exchange.RESTURL == "" {
		return errors.New("Exchange.RESTURL is empty")
	}
	if c.Exchange.Symbol == "" {
		return errors.New("Exchange.Symbol is empty")
	}
	if c.Exchange.Limit <= 0 {
		return errors.Errorf("Exchange.Limit must be positive, got %d", c.Exchange.Limit)
	}
	if len(c.Schedule.AcceptedSeconds) == 0 {
		return errors.New("Schedule.AcceptedSeconds is empty")
	}
	for _, s := range c.Schedule.AcceptedSeconds {
		if s < 0 || s > 59 {
			return errors.Errorf("Schedule.AcceptedSeconds contains invalid second %d", s)
		}
	}
	// 窗口必须小于半小时，否则相邻整点的窗口会重叠
	if c.Schedule.LeadMinutes < 0 || c.Schedule.LeadMinutes > 29 {
		return errors.Errorf("Schedule.LeadMinutes out of range: %d", c.Schedule.LeadMinutes)
	}
	if c.Schedule.TrailMinutes < 0 || c.Schedule.TrailMinutes > 29 {
		return errors.Errorf("Schedule.TrailMinutes out of range: %d", c.Schedule.TrailMinutes)
	}
	if c.Report.Rows <= 0 {
		return errors.Errorf("Report.Rows must be positive, got %d", c.Report.Rows)
	}
	return nil
}

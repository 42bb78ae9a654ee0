package config

import (
	"os"
	"time"
)

// DBConfig 存储配置
// Driver 为 "sqlite"（默认，本地文件）或 "pgx"（PostgreSQL）
type DBConfig struct {
	Driver             string        `yaml:"driver"`
	DSN                string        `yaml:"dsn"`
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// MetricsConfig 指标配置，Textfile 非空时退出前写出 Prometheus 文本格式
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

type Config struct {
	DB      DBConfig      `yaml:"db"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// Default 返回无配置文件时使用的配置
func Default() *Config {
	return &Config{
		DB: DBConfig{
			Driver:             "sqlite",
			DSN:                "main.db",
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// OverrideDBFromEnv 从环境变量覆盖存储配置
func OverrideDBFromEnv(cfg *DBConfig) {
	if driver := os.Getenv("HABITS_DB_DRIVER"); driver != "" {
		cfg.Driver = driver
	}
	if dsn := os.Getenv("HABITS_DB_DSN"); dsn != "" {
		cfg.DSN = dsn
	}
}

// OverrideLogFromEnv 从环境变量覆盖日志配置
func OverrideLogFromEnv(cfg *LogConfig) {
	if level := os.Getenv("HABITS_LOG_LEVEL"); level != "" {
		cfg.Level = level
	}
}

// OverrideMetricsFromEnv 从环境变量覆盖指标配置
func OverrideMetricsFromEnv(cfg *MetricsConfig) {
	if file := os.Getenv("HABITS_METRICS_FILE"); file != "" {
		cfg.Textfile = file
	}
}

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 聚合客户端引擎的全部配置。
type Config struct {
	Logger      LoggerConfig
	Async       AsyncConfig
	API         APIConfig
	Socket      SocketConfig
	Presence    PresenceConfig
	Storage     StorageConfig
	MetricsAddr string // prometheus 指标监听地址，空串表示不暴露
}

// Default 返回全部默认配置。
func Default() Config {
	return Config{
		Logger:      DefaultLoggerConfig(),
		Async:       DefaultAsyncConfig(),
		API:         DefaultAPIConfig(),
		Socket:      DefaultSocketConfig(),
		Presence:    DefaultPresenceConfig(),
		Storage:     DefaultStorageConfig(),
		MetricsAddr: "127.0.0.1:9180",
	}
}

// LoadEnv 加载 .env（存在时）并用环境变量覆盖默认配置。
// .env 缺失不是错误，直接使用进程环境变量。
func LoadEnv() Config {
	_ = godotenv.Load()

	cfg := Default()
	if v := os.Getenv("CAMPUS_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("CAMPUS_SOCKET_URL"); v != "" {
		cfg.Socket.URL = v
	}
	if v := os.Getenv("CAMPUS_STORAGE_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("CAMPUS_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("CAMPUS_LOG_ENCODING"); v != "" {
		cfg.Logger.Encoding = v
	}
	if v := os.Getenv("CAMPUS_PRESENCE_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Presence.PollInterval = d
		}
	}
	if v, ok := os.LookupEnv("CAMPUS_METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("CAMPUS_API_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.API.RateLimit = f
		}
	}
	return cfg
}

package config

import "time"

// APIConfig 后端 REST 接口配置。
type APIConfig struct {
	// 连接配置
	BaseURL string        `json:"baseUrl" yaml:"baseUrl"` // 后端基础地址，如: http://localhost:3000
	Timeout time.Duration `json:"timeout" yaml:"timeout"` // 单次请求超时

	// 限流配置（客户端侧，避免轮询/滑动操作打爆后端）
	RateLimit float64 `json:"rateLimit" yaml:"rateLimit"` // 每秒允许的请求数
	RateBurst int     `json:"rateBurst" yaml:"rateBurst"` // 突发容量

	// 熔断配置
	BreakerMaxRequests uint32        `json:"breakerMaxRequests" yaml:"breakerMaxRequests"` // 半开状态放行的探测请求数
	BreakerInterval    time.Duration `json:"breakerInterval" yaml:"breakerInterval"`       // 闭合状态统计窗口
	BreakerTimeout     time.Duration `json:"breakerTimeout" yaml:"breakerTimeout"`         // 打开状态持续时间
	BreakerMinRequests uint32        `json:"breakerMinRequests" yaml:"breakerMinRequests"` // 触发熔断判断的最小请求数
	BreakerFailureRate float64       `json:"breakerFailureRate" yaml:"breakerFailureRate"` // 触发熔断的失败率阈值
}

// DefaultAPIConfig 返回本地开发的默认配置。
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		BaseURL:            "http://localhost:3000",
		Timeout:            10 * time.Second,
		RateLimit:          20,
		RateBurst:          40,
		BreakerMaxRequests: 3,
		BreakerInterval:    30 * time.Second,
		BreakerTimeout:     10 * time.Second,
		BreakerMinRequests: 10,
		BreakerFailureRate: 0.6,
	}
}

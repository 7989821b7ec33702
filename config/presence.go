package config

import "time"

// PresenceConfig 在线状态轮询配置。
// 在线状态只是尽力而为的 UI 信息，轮询间隔不宜过短。
type PresenceConfig struct {
	PollInterval time.Duration `json:"pollInterval" yaml:"pollInterval"` // 轮询间隔
	PollTimeout  time.Duration `json:"pollTimeout" yaml:"pollTimeout"`   // 单次轮询超时
}

// DefaultPresenceConfig 返回默认配置。
func DefaultPresenceConfig() PresenceConfig {
	return PresenceConfig{
		PollInterval: 30 * time.Second,
		PollTimeout:  10 * time.Second,
	}
}

package config

import "time"

// SocketConfig 实时长连接配置。
type SocketConfig struct {
	URL              string        `json:"url" yaml:"url"`                           // WebSocket 地址，如: ws://localhost:3000/socket
	HandshakeTimeout time.Duration `json:"handshakeTimeout" yaml:"handshakeTimeout"` // 握手超时
	WriteTimeout     time.Duration `json:"writeTimeout" yaml:"writeTimeout"`         // 单帧写超时
	SendQueueSize    int           `json:"sendQueueSize" yaml:"sendQueueSize"`       // 上行发送队列容量
}

// DefaultSocketConfig 返回本地开发的默认配置。
func DefaultSocketConfig() SocketConfig {
	return SocketConfig{
		URL:              "ws://localhost:3000/socket",
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     5 * time.Second,
		SendQueueSize:    64,
	}
}

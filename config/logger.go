package config

// LoggerConfig 日志配置。
type LoggerConfig struct {
	Level       string `json:"level" yaml:"level"`             // 日志级别：debug/info/warn/error
	Encoding    string `json:"encoding" yaml:"encoding"`       // 编码：json 或 console
	EnableColor bool   `json:"enableColor" yaml:"enableColor"` // console 编码下是否彩色输出
	Development bool   `json:"development" yaml:"development"` // 开发模式（error 级别附带堆栈）
}

// DefaultLoggerConfig 返回本地开发的默认配置。
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:       "info",
		Encoding:    "json",
		EnableColor: false,
		Development: false,
	}
}

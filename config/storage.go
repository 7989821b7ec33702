package config

import (
	"os"
	"path/filepath"
)

// StorageConfig 本地持久化配置。
// 存储内容仅有登录令牌与左滑拒绝名单，均为裸 JSON 文件。
type StorageConfig struct {
	Dir string `json:"dir" yaml:"dir"` // 存储目录
}

// DefaultStorageConfig 返回默认配置（用户目录下的应用数据目录）。
func DefaultStorageConfig() StorageConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return StorageConfig{
		Dir: filepath.Join(home, ".campusclient"),
	}
}

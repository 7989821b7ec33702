package storage

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// 本地持久化键约定。
// 注意：值为裸 JSON，无 schema 版本号；清除存储即丢失（设备本地状态）。
const (
	// KeyAuthToken 登录令牌。
	KeyAuthToken = "auth_token"
	// KeyRejectedCandidates 快配中左滑拒绝过的用户 id 数组。
	KeyRejectedCandidates = "rejected_candidates"
)

// Store 基于文件的 JSON 键值存储。
// 每个 key 对应 <dir>/<key>.json 一个文件，写入采用临时文件 + rename。
type Store struct {
	dir string
}

// New 创建存储实例并确保目录存在。
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get 读取并反序列化 key 对应的值。
// 返回值 ok=false 表示 key 不存在（不视为错误）。
func (s *Store) Get(key string, v any) (bool, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, err
	}
	return true, nil
}

// Put 序列化并写入 key 对应的值。
// 先写临时文件再 rename，避免进程中断留下半截文件。
func (s *Store) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

// Delete 删除 key，key 不存在时视为成功。
func (s *Store) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

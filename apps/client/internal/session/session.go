package session

import (
	"context"
	"sync"
	"time"

	"CampusClient/apps/client/internal/api"
	"CampusClient/consts"
	"CampusClient/model"
	"CampusClient/pkg/logger"
	"CampusClient/pkg/storage"

	"github.com/golang-jwt/jwt/v5"
)

// ProfileAPI session 依赖的接口子集（便于测试注入假实现）。
type ProfileAPI interface {
	GetProfile(ctx context.Context) (*api.ProfileResponse, error)
}

// Session 持有当前登录态（令牌 + 用户资料投影）并负责其生命周期。
// 令牌持久化在本地存储的固定 key 下；其余组件通过 Token 回调取令牌。
type Session struct {
	store      *storage.Store
	profileAPI ProfileAPI

	mu    sync.RWMutex
	token string
	user  *model.User
}

// NewSession 创建会话实例（未恢复令牌前处于未登录态）。
func NewSession(store *storage.Store, profileAPI ProfileAPI) *Session {
	return &Session{store: store, profileAPI: profileAPI}
}

// Restore 从本地存储恢复令牌。
// 返回是否存在已保存的令牌；存在但已过期时同样返回 true，由 Probe 裁决。
func (s *Session) Restore() (bool, error) {
	var token string
	ok, err := s.store.Get(storage.KeyAuthToken, &token)
	if err != nil {
		return false, err
	}
	if !ok || token == "" {
		return false, nil
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return true, nil
}

// SetToken 设置并持久化新令牌（登录成功后由外部认证流程调用）。
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.user = nil
	s.mu.Unlock()
	return s.store.Put(storage.KeyAuthToken, token)
}

// Token 返回当前令牌（供 api.Client 注入请求头）。
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserID 返回当前用户 id（探活成功前为空串）。
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// User 返回当前用户资料投影（可能为 nil）。
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Expired 本地判断令牌是否已过期。
// 只解析不验签（签名密钥在后端），exp 缺失时视为未过期、交由后端裁决。
func (s *Session) Expired() bool {
	token := s.Token()
	if token == "" {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// Probe 以 GET /profile 做登录态探活并刷新资料投影。
// - 鉴权失败：清除本地令牌并返回原错误（上层跳转登录页）；
// - 资料缺少必填字段：返回 ProfileIncomplete（上层引导到资料设置）。
func (s *Session) Probe(ctx context.Context) (*model.User, error) {
	resp, err := s.profileAPI.GetProfile(ctx)
	if err != nil {
		if api.IsAuthExpired(err) {
			logger.Warn(ctx, "登录态已失效，清除本地令牌")
			_ = s.purge()
		}
		return nil, err
	}
	if resp.User == nil {
		return nil, api.NewError(consts.CodeBodyError, 0, "profile response missing user")
	}

	s.mu.Lock()
	s.user = resp.User
	s.mu.Unlock()

	if !resp.User.HasProfileBasics() {
		return resp.User, api.NewError(consts.CodeProfileIncomplete, 0, "")
	}
	return resp.User, nil
}

// Logout 登出并清除本地令牌。
func (s *Session) Logout(ctx context.Context) error {
	logger.Info(ctx, "用户登出，清除本地登录态")
	return s.purge()
}

func (s *Session) purge() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return s.store.Delete(storage.KeyAuthToken)
}

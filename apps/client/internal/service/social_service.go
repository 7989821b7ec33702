package service

import (
	"context"
	"sync"
	"time"

	"CampusClient/apps/client/internal/api"
	"CampusClient/model"
	"CampusClient/pkg/logger"

	lru "github.com/hashicorp/golang-lru/v2"
)

const userCacheSize = 256

// socialServiceImpl 好友图谱服务实现。
// 快照约定：friends/incoming 始终整体替换、不做原地修补，
// 读取方拿到的是不可变副本，避免半更新竞争。
type socialServiceImpl struct {
	apiClient SocialAPI
	userCache *lru.Cache[string, *model.User]

	mu       sync.RWMutex
	friends  []*model.User
	incoming []*model.FriendRequest
}

// NewSocialService 创建好友服务实例。
func NewSocialService(apiClient SocialAPI) SocialService {
	cache, _ := lru.New[string, *model.User](userCacheSize)
	return &socialServiceImpl{
		apiClient: apiClient,
		userCache: cache,
	}
}

// ListFriends 拉取当前好友列表并整体替换本地快照。
func (s *socialServiceImpl) ListFriends(ctx context.Context) ([]*model.User, error) {
	friends, err := s.apiClient.GetFriends(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.friends = friends
	s.mu.Unlock()

	for _, u := range friends {
		if u != nil {
			s.userCache.Add(u.ID, u)
		}
	}
	return copyUsers(friends), nil
}

// ListIncomingRequests 拉取收到的好友申请并整体替换本地快照。
func (s *socialServiceImpl) ListIncomingRequests(ctx context.Context) ([]*model.FriendRequest, error) {
	requests, err := s.apiClient.GetFriendRequests(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.incoming = requests
	s.mu.Unlock()

	for _, req := range requests {
		if req != nil && req.Requester != nil {
			s.userCache.Add(req.Requester.ID, req.Requester)
		}
	}
	return copyRequests(requests), nil
}

// Friends 返回最近一次拉取的好友快照副本。
func (s *socialServiceImpl) Friends() []*model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUsers(s.friends)
}

// IncomingRequests 返回最近一次拉取的申请快照副本。
func (s *socialServiceImpl) IncomingRequests() []*model.FriendRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRequests(s.incoming)
}

// SendRequest 发送好友申请。
// 不做乐观更新：只有后端确认后界面状态才会变化；
// AlreadyFriend / FriendRequestSent 原样上抛，由界面禁用入口。
func (s *socialServiceImpl) SendRequest(ctx context.Context, targetID string) error {
	startTime := time.Now()
	if err := s.apiClient.SendFriendRequest(ctx, targetID); err != nil {
		return err
	}
	logger.Info(ctx, "好友申请已发送",
		logger.String("target_id", targetID),
		logger.Duration("duration", time.Since(startTime)),
	)
	return nil
}

// AcceptRequest 接受好友申请。
// 幂等语义：申请已被处理（冲突/不存在，可能被其他设备抢先处理）按成功对待；
// 成功后同时重拉好友列表与申请列表，保证并发界面一致。
func (s *socialServiceImpl) AcceptRequest(ctx context.Context, requesterID string) error {
	if err := s.apiClient.AcceptFriendRequest(ctx, requesterID); err != nil {
		if api.IsConflict(err) || api.IsNotFound(err) {
			logger.Info(ctx, "好友申请已被处理，按成功对待",
				logger.String("requester_id", requesterID),
			)
		} else {
			return err
		}
	}
	s.resync(ctx, true, true)
	return nil
}

// RejectRequest 拒绝好友申请（不建立好友关系）。
// 与 Accept 一致：已被处理的申请按成功对待，之后重拉申请列表。
func (s *socialServiceImpl) RejectRequest(ctx context.Context, requesterID string) error {
	if err := s.apiClient.RejectFriendRequest(ctx, requesterID); err != nil {
		if api.IsConflict(err) || api.IsNotFound(err) {
			logger.Info(ctx, "好友申请已被处理，按成功对待",
				logger.String("requester_id", requesterID),
			)
		} else {
			return err
		}
	}
	s.resync(ctx, false, true)
	return nil
}

// resync 变更后重拉受影响的列表。
// 重拉失败不影响变更本身的结果，只记日志（下次刷新会追上）。
func (s *socialServiceImpl) resync(ctx context.Context, friends, incoming bool) {
	if friends {
		if _, err := s.ListFriends(ctx); err != nil {
			logger.Warn(ctx, "好友列表重拉失败", logger.ErrorField("error", err))
		}
	}
	if incoming {
		if _, err := s.ListIncomingRequests(ctx); err != nil {
			logger.Warn(ctx, "申请列表重拉失败", logger.ErrorField("error", err))
		}
	}
}

// SearchUsers 按条件搜索用户，结果写入本地投影缓存。
func (s *socialServiceImpl) SearchUsers(ctx context.Context, q api.SearchQuery) ([]*model.User, error) {
	users, err := s.apiClient.SearchUsers(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u != nil {
			s.userCache.Add(u.ID, u)
		}
	}
	return users, nil
}

// GetUser 从本地投影缓存解析用户（供会话参与者展示等场景）。
// 缓存由好友/申请/搜索结果填充，未命中说明该用户尚未经过任何列表。
func (s *socialServiceImpl) GetUser(id string) (*model.User, bool) {
	return s.userCache.Get(id)
}

func copyUsers(in []*model.User) []*model.User {
	out := make([]*model.User, len(in))
	copy(out, in)
	return out
}

func copyRequests(in []*model.FriendRequest) []*model.FriendRequest {
	out := make([]*model.FriendRequest, len(in))
	copy(out, in)
	return out
}

package service

import (
	"context"
	"sort"
	"sync"

	"CampusClient/apps/client/internal/api"
	"CampusClient/consts"
	"CampusClient/model"
	"CampusClient/pkg/logger"
	"CampusClient/pkg/storage"
)

// ComputeCandidates 过滤快配候选人：排除已是好友与已左滑拒绝过的用户。
// 纯函数；输入顺序即输出顺序（推荐排序由后端给定）。
func ComputeCandidates(allRecommended, friends []*model.User, rejected map[string]struct{}) []*model.User {
	friendSet := make(map[string]struct{}, len(friends))
	for _, f := range friends {
		if f != nil {
			friendSet[f.ID] = struct{}{}
		}
	}

	out := make([]*model.User, 0, len(allRecommended))
	for _, u := range allRecommended {
		if u == nil {
			continue
		}
		if _, isFriend := friendSet[u.ID]; isFriend {
			continue
		}
		if _, isRejected := rejected[u.ID]; isRejected {
			continue
		}
		out = append(out, u)
	}
	return out
}

// FriendRequester 右滑时的好友申请入口（由 SocialService 提供）。
type FriendRequester interface {
	SendRequest(ctx context.Context, targetID string) error
	ListFriends(ctx context.Context) ([]*model.User, error)
}

// matchServiceImpl 快配引擎实现。
// 游标只进不退：已拒绝的 id 在本会话内不再出现；
// 拒绝名单仅存本机（只增不减，无过期、无多端同步），清除存储即重置。
type matchServiceImpl struct {
	apiClient MatchAPI
	social    FriendRequester
	store     *storage.Store

	mu         sync.Mutex
	candidates []*model.User
	index      int
	rejected   map[string]struct{}
}

// NewMatchService 创建快配服务实例并恢复本地拒绝名单。
// 名单文件损坏按空名单处理（最坏情况是被拒绝过的人再次出现）。
func NewMatchService(apiClient MatchAPI, social FriendRequester, store *storage.Store) MatchService {
	s := &matchServiceImpl{
		apiClient: apiClient,
		social:    social,
		store:     store,
		rejected:  make(map[string]struct{}),
	}

	var ids []string
	if ok, err := store.Get(storage.KeyRejectedCandidates, &ids); err == nil && ok {
		for _, id := range ids {
			s.rejected[id] = struct{}{}
		}
	}
	return s
}

// Reload 拉取推荐列表并重建候选人队列（游标归零）。
func (s *matchServiceImpl) Reload(ctx context.Context) error {
	recommended, err := s.apiClient.RecommendUsers(ctx)
	if err != nil {
		return err
	}
	friends, err := s.social.ListFriends(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.candidates = ComputeCandidates(recommended, friends, s.rejected)
	s.index = 0
	total := len(s.candidates)
	s.mu.Unlock()

	logger.Info(ctx, "快配候选人已刷新", logger.Int("total", total))
	return nil
}

// Current 返回当前候选人；队列滑完时返回明确的"已耗尽"错误，不循环。
func (s *matchServiceImpl) Current() (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= len(s.candidates) {
		return nil, api.NewError(consts.CodeCandidatesExhausted, 0, "")
	}
	return s.candidates[s.index], nil
}

// SwipeRight 右滑：向当前候选人发送好友申请并前移游标。
// 重复申请类冲突按成功对待（入口本就应被界面禁用，后端兜底）。
func (s *matchServiceImpl) SwipeRight(ctx context.Context) error {
	current, err := s.Current()
	if err != nil {
		return err
	}
	if err := s.social.SendRequest(ctx, current.ID); err != nil && !api.IsConflict(err) {
		return err
	}

	s.mu.Lock()
	s.index++
	s.mu.Unlock()
	return nil
}

// SwipeLeft 左滑：将当前候选人计入拒绝名单（持久化）并前移游标。
func (s *matchServiceImpl) SwipeLeft() error {
	current, err := s.Current()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.rejected[current.ID] = struct{}{}
	ids := make([]string, 0, len(s.rejected))
	for id := range s.rejected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	s.index++
	s.mu.Unlock()

	return s.store.Put(storage.KeyRejectedCandidates, ids)
}

// Exhausted 判断候选人队列是否已滑完。
func (s *matchServiceImpl) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index >= len(s.candidates)
}

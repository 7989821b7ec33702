package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"CampusClient/config"
	"CampusClient/model"
	"CampusClient/pkg/async"
	"CampusClient/pkg/logger"
	"CampusClient/pkg/metrics"
)

// presenceServiceImpl 在线状态追踪实现。
// 模型：固定间隔轮询好友接口得到权威快照，socket 连接/断开事件只做临时覆盖；
// 状态允许过期，只作展示参考，不得用于任何关键逻辑判断。
type presenceServiceImpl struct {
	apiClient PresenceAPI
	cfg       config.PresenceConfig

	mu      sync.RWMutex
	entries map[string]bool
	cancel  context.CancelFunc
}

// NewPresenceService 创建在线状态服务实例。
func NewPresenceService(apiClient PresenceAPI, cfg config.PresenceConfig) PresenceService {
	return &presenceServiceImpl{
		apiClient: apiClient,
		cfg:       cfg,
		entries:   make(map[string]bool),
	}
}

// RefreshPresence 轮询一次在线状态。
// friendIDs 非空时只保留给定好友；快照整体替换（轮询之间的 Hint 覆盖随之失效）。
func (s *presenceServiceImpl) RefreshPresence(ctx context.Context, friendIDs []string) ([]model.PresenceEntry, error) {
	friends, err := s.apiClient.GetFriends(ctx)
	if err != nil {
		return nil, err
	}

	var wanted map[string]struct{}
	if len(friendIDs) > 0 {
		wanted = make(map[string]struct{}, len(friendIDs))
		for _, id := range friendIDs {
			wanted[id] = struct{}{}
		}
	}

	next := make(map[string]bool, len(friends))
	online := 0
	for _, u := range friends {
		if u == nil {
			continue
		}
		if wanted != nil {
			if _, ok := wanted[u.ID]; !ok {
				continue
			}
		}
		next[u.ID] = u.Online
		if u.Online {
			online++
		}
	}

	s.mu.Lock()
	s.entries = next
	s.mu.Unlock()

	metrics.OnlineFriends.Set(float64(online))
	return s.Snapshot(), nil
}

// Hint 合入 socket 层的上线/下线提示，等下一次轮询校准。
func (s *presenceServiceImpl) Hint(userID string, online bool) {
	if userID == "" {
		return
	}
	s.mu.Lock()
	s.entries[userID] = online
	s.mu.Unlock()
}

// Snapshot 返回当前在线状态快照（按用户 id 排序，保证遍历确定性）。
func (s *presenceServiceImpl) Snapshot() []model.PresenceEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.PresenceEntry, 0, len(s.entries))
	for id, online := range s.entries {
		out = append(out, model.PresenceEntry{UserID: id, Online: online})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Start 启动后台轮询循环（重复调用为空操作）。
func (s *presenceServiceImpl) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	run := func() {
		ticker := time.NewTicker(s.cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				// 单次轮询带超时与 panic 保护；在线状态允许过期，失败只记日志
				async.RunSafe(loopCtx, func(pollCtx context.Context) {
					if _, err := s.RefreshPresence(pollCtx, nil); err != nil {
						logger.Warn(pollCtx, "在线状态轮询失败", logger.ErrorField("error", err))
					}
				}, s.cfg.PollTimeout)
			}
		}
	}
	if err := async.Submit(run); err != nil {
		go run()
	}
}

// Stop 停止后台轮询（幂等）。
func (s *presenceServiceImpl) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

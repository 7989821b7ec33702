package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"CampusClient/model"
	"CampusClient/pkg/async"
	"CampusClient/pkg/logger"
)

// BuildFeed 将三个来源合并为一条去重、按时间倒序的信息流。
// 规则：
// - 按"我发布的 > 我被标记的 > 好友的"优先级拼接，首次出现的 id 胜出；
// - 去重后按 CreatedAt 倒序排序，时间相同按 id 升序保证确定性。
// 纯函数，无任何副作用。
func BuildFeed(authored, tagged, friends []*model.Memory) []*model.Memory {
	seen := make(map[string]struct{})
	out := make([]*model.Memory, 0, len(authored)+len(tagged)+len(friends))

	for _, src := range [][]*model.Memory{authored, tagged, friends} {
		for _, m := range src {
			if m == nil || m.ID == "" {
				continue
			}
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// feedServiceImpl 信息流聚合服务实现。
type feedServiceImpl struct {
	apiClient FeedAPI

	mu   sync.RWMutex
	feed []*model.Memory
}

// NewFeedService 创建信息流服务实例。
func NewFeedService(apiClient FeedAPI) FeedService {
	return &feedServiceImpl{apiClient: apiClient}
}

// Refresh 并行拉取三个来源并重建信息流快照。
// 单个来源失败降级为空列表（部分信息流好过整体失败），全部失败也返回空流。
func (s *feedServiceImpl) Refresh(ctx context.Context) ([]*model.Memory, error) {
	startTime := time.Now()

	var (
		wg                        sync.WaitGroup
		authored, tagged, friends []*model.Memory
	)

	wg.Add(2)
	s.runFetch(func() {
		defer wg.Done()
		resp, err := s.apiClient.GetProfile(ctx)
		if err != nil {
			logger.Warn(ctx, "资料来源拉取失败，信息流降级", logger.ErrorField("error", err))
			return
		}
		authored, tagged = resp.Memories, resp.TaggedMemories
	})
	s.runFetch(func() {
		defer wg.Done()
		list, err := s.apiClient.FriendsMemories(ctx)
		if err != nil {
			logger.Warn(ctx, "好友回忆拉取失败，信息流降级", logger.ErrorField("error", err))
			return
		}
		friends = list
	})
	wg.Wait()

	feed := BuildFeed(authored, tagged, friends)

	s.mu.Lock()
	s.feed = feed
	s.mu.Unlock()

	logger.Info(ctx, "信息流已刷新",
		logger.Int("total", len(feed)),
		logger.Duration("duration", time.Since(startTime)),
	)
	return s.Feed(), nil
}

// runFetch 优先投递到协程池，池不可用时同步执行兜底。
func (s *feedServiceImpl) runFetch(task func()) {
	if err := async.Submit(task); err != nil {
		task()
	}
}

// Feed 返回最近一次聚合结果的副本。
func (s *feedServiceImpl) Feed() []*model.Memory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Memory, len(s.feed))
	copy(out, s.feed)
	return out
}

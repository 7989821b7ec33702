package service

import (
	"context"
	"strings"

	"CampusClient/apps/client/internal/api"
	"CampusClient/consts"
	"CampusClient/model"
	"CampusClient/pkg/logger"
)

// memoryServiceImpl 回忆操作服务实现。
// 所有本地可判定的参数错误在发起网络请求前拦截；
// 变更接口返回后端落库后的权威对象，界面以其整体替换乐观状态，
// 失败时保留最后一次确认过的服务器状态（回滚由界面层完成）。
type memoryServiceImpl struct {
	apiClient MemoryAPI
}

// NewMemoryService 创建回忆服务实例。
func NewMemoryService(apiClient MemoryAPI) MemoryService {
	return &memoryServiceImpl{apiClient: apiClient}
}

// Upload 发布一条回忆。标题必填。
func (s *memoryServiceImpl) Upload(ctx context.Context, req *api.UploadMemoryRequest) (*model.Memory, error) {
	if req == nil || strings.TrimSpace(req.Title) == "" {
		return nil, api.NewError(consts.CodeParamError, 0, "title is required")
	}
	for _, ev := range req.TimelineEvents {
		if err := validateTimelineEvent(ev); err != nil {
			return nil, err
		}
	}

	memory, err := s.apiClient.UploadMemory(ctx, req)
	if err != nil {
		return nil, err
	}
	if memory == nil {
		return nil, api.NewError(consts.CodeBodyError, 0, "memory response missing body")
	}
	logger.Info(ctx, "回忆已发布", logger.String("memory_id", memory.ID))
	return memory, nil
}

// Get 获取单条回忆详情。
func (s *memoryServiceImpl) Get(ctx context.Context, memoryID string) (*model.Memory, error) {
	if memoryID == "" {
		return nil, api.NewError(consts.CodeParamError, 0, "memory id is required")
	}
	return s.apiClient.GetMemory(ctx, memoryID)
}

// Like 点赞，返回权威对象（界面先乐观 +1，以返回值整体替换）。
func (s *memoryServiceImpl) Like(ctx context.Context, memoryID string) (*model.Memory, error) {
	if memoryID == "" {
		return nil, api.NewError(consts.CodeParamError, 0, "memory id is required")
	}
	return s.apiClient.LikeMemory(ctx, memoryID)
}

// Comment 评论。空文本在本地拦截，不发起网络请求。
func (s *memoryServiceImpl) Comment(ctx context.Context, memoryID, text string) (*model.Memory, error) {
	if memoryID == "" {
		return nil, api.NewError(consts.CodeParamError, 0, "memory id is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, api.NewError(consts.CodeParamError, 0, "comment text is required")
	}
	return s.apiClient.CommentMemory(ctx, memoryID, text)
}

// AddTimelineEvent 追加时间线事件。日期/时间/文本三者缺一不可。
func (s *memoryServiceImpl) AddTimelineEvent(ctx context.Context, memoryID string, ev model.TimelineEvent) (*model.Memory, error) {
	if memoryID == "" {
		return nil, api.NewError(consts.CodeParamError, 0, "memory id is required")
	}
	if err := validateTimelineEvent(ev); err != nil {
		return nil, err
	}
	return s.apiClient.AddTimelineEvent(ctx, memoryID, ev)
}

// AddPhoto 追加照片（URI 来自外部媒体上传服务）。
func (s *memoryServiceImpl) AddPhoto(ctx context.Context, memoryID, photoURI string) (*model.Memory, error) {
	if memoryID == "" || strings.TrimSpace(photoURI) == "" {
		return nil, api.NewError(consts.CodeParamError, 0, "memory id and photo are required")
	}
	return s.apiClient.AddPhoto(ctx, memoryID, photoURI)
}

func validateTimelineEvent(ev model.TimelineEvent) error {
	if strings.TrimSpace(ev.Date) == "" ||
		strings.TrimSpace(ev.Time) == "" ||
		strings.TrimSpace(ev.Text) == "" {
		return api.NewError(consts.CodeTimelineFieldMissing, 0, "")
	}
	return nil
}

package service

import (
	"context"
	"testing"

	"CampusClient/apps/client/internal/api"
	"CampusClient/consts"
	"CampusClient/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemoryAPI struct {
	uploadMemoryFn     func(context.Context, *api.UploadMemoryRequest) (*model.Memory, error)
	getMemoryFn        func(context.Context, string) (*model.Memory, error)
	likeMemoryFn       func(context.Context, string) (*model.Memory, error)
	commentMemoryFn    func(context.Context, string, string) (*model.Memory, error)
	addTimelineEventFn func(context.Context, string, model.TimelineEvent) (*model.Memory, error)
	addPhotoFn         func(context.Context, string, string) (*model.Memory, error)

	calls int
}

var _ MemoryAPI = (*fakeMemoryAPI)(nil)

func (f *fakeMemoryAPI) UploadMemory(ctx context.Context, req *api.UploadMemoryRequest) (*model.Memory, error) {
	f.calls++
	if f.uploadMemoryFn == nil {
		return &model.Memory{ID: "m1", Title: req.Title}, nil
	}
	return f.uploadMemoryFn(ctx, req)
}

func (f *fakeMemoryAPI) GetMemory(ctx context.Context, memoryID string) (*model.Memory, error) {
	f.calls++
	if f.getMemoryFn == nil {
		return &model.Memory{ID: memoryID}, nil
	}
	return f.getMemoryFn(ctx, memoryID)
}

func (f *fakeMemoryAPI) LikeMemory(ctx context.Context, memoryID string) (*model.Memory, error) {
	f.calls++
	if f.likeMemoryFn == nil {
		return &model.Memory{ID: memoryID, Likes: 1}, nil
	}
	return f.likeMemoryFn(ctx, memoryID)
}

func (f *fakeMemoryAPI) CommentMemory(ctx context.Context, memoryID, text string) (*model.Memory, error) {
	f.calls++
	if f.commentMemoryFn == nil {
		return &model.Memory{ID: memoryID}, nil
	}
	return f.commentMemoryFn(ctx, memoryID, text)
}

func (f *fakeMemoryAPI) AddTimelineEvent(ctx context.Context, memoryID string, ev model.TimelineEvent) (*model.Memory, error) {
	f.calls++
	if f.addTimelineEventFn == nil {
		return &model.Memory{ID: memoryID, TimelineEvents: []model.TimelineEvent{ev}}, nil
	}
	return f.addTimelineEventFn(ctx, memoryID, ev)
}

func (f *fakeMemoryAPI) AddPhoto(ctx context.Context, memoryID, photoURI string) (*model.Memory, error) {
	f.calls++
	if f.addPhotoFn == nil {
		return &model.Memory{ID: memoryID, Photos: []string{photoURI}}, nil
	}
	return f.addPhotoFn(ctx, memoryID, photoURI)
}

func TestMemoryUploadRequiresTitle(t *testing.T) {
	initServiceTestLogger()

	fake := &fakeMemoryAPI{}
	svc := NewMemoryService(fake)

	for _, req := range []*api.UploadMemoryRequest{
		nil,
		{Title: ""},
		{Title: "   "},
	} {
		_, err := svc.Upload(context.Background(), req)
		assert.Equal(t, consts.CodeParamError, api.CodeOf(err))
	}
	// 参数错误本地拦截，不发网络请求
	assert.Equal(t, 0, fake.calls)
}

func TestMemoryUploadValidatesTimelineEvents(t *testing.T) {
	initServiceTestLogger()

	fake := &fakeMemoryAPI{}
	svc := NewMemoryService(fake)

	_, err := svc.Upload(context.Background(), &api.UploadMemoryRequest{
		Title:          "毕业旅行",
		TimelineEvents: []model.TimelineEvent{{Date: "2024-06-01", Time: "", Text: "出发"}},
	})
	assert.Equal(t, consts.CodeTimelineFieldMissing, api.CodeOf(err))
	assert.Equal(t, 0, fake.calls)
}

func TestMemoryUploadReturnsServerObject(t *testing.T) {
	initServiceTestLogger()

	svc := NewMemoryService(&fakeMemoryAPI{})
	memory, err := svc.Upload(context.Background(), &api.UploadMemoryRequest{Title: "毕业旅行"})
	require.NoError(t, err)
	assert.Equal(t, "m1", memory.ID)
	assert.Equal(t, "毕业旅行", memory.Title)
}

func TestMemoryUploadRejectsEmptyResponse(t *testing.T) {
	initServiceTestLogger()

	svc := NewMemoryService(&fakeMemoryAPI{
		uploadMemoryFn: func(context.Context, *api.UploadMemoryRequest) (*model.Memory, error) {
			return nil, nil
		},
	})

	// 后端 200 + 空体：返回 BodyError 而不是解引用 nil
	memory, err := svc.Upload(context.Background(), &api.UploadMemoryRequest{Title: "毕业旅行"})
	assert.Equal(t, consts.CodeBodyError, api.CodeOf(err))
	assert.Nil(t, memory)
}

func TestMemoryCommentRejectsBlankText(t *testing.T) {
	initServiceTestLogger()

	fake := &fakeMemoryAPI{}
	svc := NewMemoryService(fake)

	_, err := svc.Comment(context.Background(), "m1", "   ")
	assert.Equal(t, consts.CodeParamError, api.CodeOf(err))

	_, err = svc.Comment(context.Background(), "", "不错")
	assert.Equal(t, consts.CodeParamError, api.CodeOf(err))

	assert.Equal(t, 0, fake.calls)

	_, err = svc.Comment(context.Background(), "m1", "不错")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
}

func TestMemoryAddTimelineEventRequiresAllFields(t *testing.T) {
	initServiceTestLogger()

	fake := &fakeMemoryAPI{}
	svc := NewMemoryService(fake)

	cases := []model.TimelineEvent{
		{Date: "", Time: "10:00", Text: "开场"},
		{Date: "2024-06-01", Time: "", Text: "开场"},
		{Date: "2024-06-01", Time: "10:00", Text: ""},
	}
	for _, ev := range cases {
		_, err := svc.AddTimelineEvent(context.Background(), "m1", ev)
		assert.Equal(t, consts.CodeTimelineFieldMissing, api.CodeOf(err))
	}
	assert.Equal(t, 0, fake.calls)

	memory, err := svc.AddTimelineEvent(context.Background(), "m1", model.TimelineEvent{
		Date: "2024-06-01", Time: "10:00", Text: "开场",
	})
	require.NoError(t, err)
	require.Len(t, memory.TimelineEvents, 1)
}

func TestMemoryIDRequiredOnReads(t *testing.T) {
	initServiceTestLogger()

	fake := &fakeMemoryAPI{}
	svc := NewMemoryService(fake)

	_, err := svc.Get(context.Background(), "")
	assert.Equal(t, consts.CodeParamError, api.CodeOf(err))
	_, err = svc.Like(context.Background(), "")
	assert.Equal(t, consts.CodeParamError, api.CodeOf(err))
	_, err = svc.AddPhoto(context.Background(), "m1", " ")
	assert.Equal(t, consts.CodeParamError, api.CodeOf(err))
	assert.Equal(t, 0, fake.calls)
}

package service

import (
	"context"

	"CampusClient/apps/client/internal/api"
	"CampusClient/model"
)

// 本包依赖的 REST 接口按消费方拆成窄接口，api.Client 同时满足全部，
// 测试中用带 xxxFn 字段的假实现逐个注入。

// SocialAPI 好友关系相关接口。
type SocialAPI interface {
	GetFriends(ctx context.Context) ([]*model.User, error)
	GetFriendRequests(ctx context.Context) ([]*model.FriendRequest, error)
	SendFriendRequest(ctx context.Context, friendID string) error
	AcceptFriendRequest(ctx context.Context, friendID string) error
	RejectFriendRequest(ctx context.Context, friendID string) error
	SearchUsers(ctx context.Context, q api.SearchQuery) ([]*model.User, error)
}

// FeedAPI 信息流来源接口。
type FeedAPI interface {
	GetProfile(ctx context.Context) (*api.ProfileResponse, error)
	FriendsMemories(ctx context.Context) ([]*model.Memory, error)
}

// PresenceAPI 在线状态轮询接口。
type PresenceAPI interface {
	GetFriends(ctx context.Context) ([]*model.User, error)
}

// MatchAPI 快配候选人来源接口。
type MatchAPI interface {
	RecommendUsers(ctx context.Context) ([]*model.User, error)
}

// MemoryAPI 回忆操作接口。
type MemoryAPI interface {
	UploadMemory(ctx context.Context, req *api.UploadMemoryRequest) (*model.Memory, error)
	GetMemory(ctx context.Context, memoryID string) (*model.Memory, error)
	LikeMemory(ctx context.Context, memoryID string) (*model.Memory, error)
	CommentMemory(ctx context.Context, memoryID, text string) (*model.Memory, error)
	AddTimelineEvent(ctx context.Context, memoryID string, ev model.TimelineEvent) (*model.Memory, error)
	AddPhoto(ctx context.Context, memoryID, photoURI string) (*model.Memory, error)
}

// ChatAPI 会话与消息接口。
type ChatAPI interface {
	GetConversations(ctx context.Context) ([]*model.Conversation, error)
	CreateConversation(ctx context.Context, participantA, participantB string) (*model.Conversation, error)
	GetMessages(ctx context.Context, conversationID string) ([]*model.Message, error)
	SendMessage(ctx context.Context, conversationID, content string) (*model.Message, error)
}

// ==================== 服务接口 ====================

// SocialService 好友图谱客户端：好友列表、收到的申请与申请生命周期。
type SocialService interface {
	ListFriends(ctx context.Context) ([]*model.User, error)
	ListIncomingRequests(ctx context.Context) ([]*model.FriendRequest, error)
	Friends() []*model.User
	IncomingRequests() []*model.FriendRequest
	SendRequest(ctx context.Context, targetID string) error
	AcceptRequest(ctx context.Context, requesterID string) error
	RejectRequest(ctx context.Context, requesterID string) error
	SearchUsers(ctx context.Context, q api.SearchQuery) ([]*model.User, error)
	GetUser(id string) (*model.User, bool)
}

// FeedService 信息流聚合器。
type FeedService interface {
	Refresh(ctx context.Context) ([]*model.Memory, error)
	Feed() []*model.Memory
}

// PresenceService 在线状态追踪器（尽力而为，允许过期）。
type PresenceService interface {
	RefreshPresence(ctx context.Context, friendIDs []string) ([]model.PresenceEntry, error)
	Hint(userID string, online bool)
	Snapshot() []model.PresenceEntry
	Start(ctx context.Context)
	Stop()
}

// MatchService 快配引擎：候选人过滤、滑动、耗尽状态。
type MatchService interface {
	Reload(ctx context.Context) error
	Current() (*model.User, error)
	SwipeRight(ctx context.Context) error
	SwipeLeft() error
	Exhausted() bool
}

// MemoryService 回忆操作：发布、点赞、评论、时间线、照片。
type MemoryService interface {
	Upload(ctx context.Context, req *api.UploadMemoryRequest) (*model.Memory, error)
	Get(ctx context.Context, memoryID string) (*model.Memory, error)
	Like(ctx context.Context, memoryID string) (*model.Memory, error)
	Comment(ctx context.Context, memoryID, text string) (*model.Memory, error)
	AddTimelineEvent(ctx context.Context, memoryID string, ev model.TimelineEvent) (*model.Memory, error)
	AddPhoto(ctx context.Context, memoryID, photoURI string) (*model.Memory, error)
}

// ChatService 会话门面：按参与者对懒创建会话、房间借用与消息收发。
type ChatService interface {
	ListConversations(ctx context.Context) ([]*model.Conversation, error)
	OpenConversation(ctx context.Context, peerID string) (*model.Conversation, error)
	CloseConversation(conversationID string)
	SendMessage(ctx context.Context, conversationID, content string) (*model.Message, error)
	Messages(conversationID string) []*model.Message
}

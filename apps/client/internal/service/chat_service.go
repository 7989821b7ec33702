package service

import (
	"context"
	"errors"
	"strings"

	"CampusClient/apps/client/internal/api"
	"CampusClient/apps/client/internal/channel"
	"CampusClient/consts"
	"CampusClient/model"
	"CampusClient/pkg/logger"
)

// RoomChannel 聊天服务借用的通道能力子集（channel.Channel 满足）。
// 连接的打开/关闭不在此列：底层传输只归 Channel 自己管。
type RoomChannel interface {
	JoinConversation(conversationID string) error
	LeaveConversation(conversationID string)
	AppendLocal(msg *model.Message)
	SeedHistory(conversationID string, msgs []*model.Message)
	Messages(conversationID string) []*model.Message
}

// chatServiceImpl 会话门面实现。
type chatServiceImpl struct {
	apiClient ChatAPI
	room      RoomChannel
	selfIDFn  func() string
}

// NewChatService 创建聊天服务实例。selfIDFn 由 session 提供当前用户 id。
func NewChatService(apiClient ChatAPI, room RoomChannel, selfIDFn func() string) ChatService {
	return &chatServiceImpl{
		apiClient: apiClient,
		room:      room,
		selfIDFn:  selfIDFn,
	}
}

// ListConversations 获取当前用户的会话列表。
func (s *chatServiceImpl) ListConversations(ctx context.Context) ([]*model.Conversation, error) {
	return s.apiClient.GetConversations(ctx)
}

// OpenConversation 打开与 peer 的会话：
// 1. 先按参与者对在既有会话中查找，避免重复建会话；
// 2. 不存在时才创建；
// 3. 灌入历史消息并加入房间。
// 长连接未建立时仍返回会话（发送走 REST，不依赖在线状态），只是收不到实时推送。
func (s *chatServiceImpl) OpenConversation(ctx context.Context, peerID string) (*model.Conversation, error) {
	selfID := s.selfIDFn()
	if selfID == "" {
		return nil, api.NewError(consts.CodeUnauthorized, 0, "")
	}
	if peerID == "" || peerID == selfID {
		return nil, api.NewError(consts.CodeParamError, 0, "peer id is required")
	}

	conversation, err := s.findByPeer(ctx, selfID, peerID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		conversation, err = s.apiClient.CreateConversation(ctx, selfID, peerID)
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			return nil, api.NewError(consts.CodeBodyError, 0, "conversation response missing body")
		}
		logger.Info(ctx, "会话已创建",
			logger.String("conversation_id", conversation.ID),
			logger.String("peer_id", peerID),
		)
	}

	history, err := s.apiClient.GetMessages(ctx, conversation.ID)
	if err != nil {
		// 历史拉取失败不阻塞打开会话，实时消息仍可接收
		logger.Warn(ctx, "历史消息拉取失败", logger.ErrorField("error", err))
	} else {
		s.room.SeedHistory(conversation.ID, history)
	}

	if err := s.room.JoinConversation(conversation.ID); err != nil {
		if errors.Is(err, channel.ErrNotConnected) {
			logger.Warn(ctx, "长连接未建立，会话进入离线模式",
				logger.String("conversation_id", conversation.ID),
			)
		} else {
			return nil, err
		}
	}
	return conversation, nil
}

// findByPeer 在既有会话中按参与者对查找。
func (s *chatServiceImpl) findByPeer(ctx context.Context, selfID, peerID string) (*model.Conversation, error) {
	conversations, err := s.apiClient.GetConversations(ctx)
	if err != nil {
		return nil, err
	}
	for _, conv := range conversations {
		if conv == nil {
			continue
		}
		if peer := conv.Peer(selfID); peer != nil && peer.ID == peerID {
			return conv, nil
		}
	}
	return nil, nil
}

// CloseConversation 关闭会话界面：释放房间成员身份（幂等、尽力而为）。
func (s *chatServiceImpl) CloseConversation(conversationID string) {
	s.room.LeaveConversation(conversationID)
}

// SendMessage 通过 REST 发送消息。
// 空消息在本地拦截；成功后立即写入本地消息列表，
// 发送方界面不等待 socket 回显，回显到达时按 id 去重。
func (s *chatServiceImpl) SendMessage(ctx context.Context, conversationID, content string) (*model.Message, error) {
	if conversationID == "" {
		return nil, api.NewError(consts.CodeParamError, 0, "conversation id is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, api.NewError(consts.CodeMessageEmpty, 0, "")
	}

	msg, err := s.apiClient.SendMessage(ctx, conversationID, content)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, api.NewError(consts.CodeBodyError, 0, "message response missing body")
	}
	s.room.AppendLocal(msg)
	return msg, nil
}

// Messages 返回会话消息快照（按 CreatedAt 稳定排序）。
func (s *chatServiceImpl) Messages(conversationID string) []*model.Message {
	return s.room.Messages(conversationID)
}

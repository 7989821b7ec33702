package channel

import "encoding/json"

// 长连接帧类型。
const (
	EventJoinConversation  = "join_conversation"
	EventLeaveConversation = "leave_conversation"
	EventNewMessage        = "new_message"
)

// Envelope 定义 WebSocket 通用消息包格式。
// 约定：
// - Type: 消息类型（join_conversation/leave_conversation/new_message）；
// - Data: 消息体（由上层按 Type 再解析）。
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// roomData join/leave 帧的消息体。
type roomData struct {
	ConversationID string `json:"conversationId"`
}

// marshalEnvelope 组装一帧下行数据。
func marshalEnvelope(eventType string, data any) ([]byte, error) {
	env := Envelope{Type: eventType}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

package model

import "time"

// Conversation 两人会话。
// 参与者集合恰好两人，顺序无意义；创建前先按参与者对查找避免重复建会话。
type Conversation struct {
	ID           string  `json:"id"`
	Participants []*User `json:"participants"`
}

// Peer 返回会话中除 selfID 外的另一方，找不到时返回 nil。
func (c *Conversation) Peer(selfID string) *User {
	for _, p := range c.Participants {
		if p != nil && p.ID != selfID {
			return p
		}
	}
	return nil
}

// Message 会话内消息。
// 每个会话内仅追加；展示顺序以 CreatedAt 为准，而非客户端收到的顺序。
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

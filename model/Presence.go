package model

// PresenceEntry 好友在线状态条目。
// 派生数据，永远不是权威状态；允许过期，不得用于关键逻辑判断
// （给"离线"好友发消息也是合法操作）。
type PresenceEntry struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

package model

import "time"

// 好友申请状态。
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// FriendRequest 有向好友申请记录。
// 生命周期：pending -> accepted（建立好友关系并移出待处理列表）
// 或 pending -> rejected（仅移出列表）。同一有向对最多一条有效申请。
type FriendRequest struct {
	RequesterID string    `json:"requesterId"`
	TargetID    string    `json:"targetId"`
	Status      string    `json:"status"`
	Requester   *User     `json:"requester,omitempty"` // 申请方资料（列表展示用）
	CreatedAt   time.Time `json:"createdAt"`
}

package model

import "time"

// TimelineEvent 回忆的时间线条目。
// 三个字段全部必填，缺失在发起网络请求前被拦截。
type TimelineEvent struct {
	Date string `json:"date"`
	Time string `json:"time"`
	Text string `json:"text"`
}

// Comment 回忆下的评论。
type Comment struct {
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Memory 用户发布的回忆帖。
// 身份以 ID 为准；同一条回忆可能同时出现在"我发布的/我被标记的/好友的"
// 三个来源列表中，渲染信息流前必须按 ID 去重。
type Memory struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Author         *User           `json:"author"`
	TaggedFriends  []*User         `json:"taggedFriends,omitempty"`
	Photos         []string        `json:"photos,omitempty"`
	TimelineEvents []TimelineEvent `json:"timelineEvents,omitempty"`
	Comments       []Comment       `json:"comments,omitempty"`
	Likes          int             `json:"likes"`
	CreatedAt      time.Time       `json:"createdAt"`
}

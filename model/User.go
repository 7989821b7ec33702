package model

// User 用户资料投影。
// 数据归属后端，客户端只读；Online 来自好友轮询接口，仅作展示参考。
type User struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AvatarURI   string   `json:"avatar"`
	School      string   `json:"school,omitempty"`
	Class       string   `json:"class,omitempty"`
	Section     string   `json:"section,omitempty"`
	Interests   []string `json:"interests,omitempty"`
	FriendCount int      `json:"friendCount"`
	Online      bool     `json:"online,omitempty"`
}

// HasProfileBasics 判断资料必填字段是否齐全（班级/分组）。
// 不齐全时应引导用户进入资料设置，而不是报错。
func (u *User) HasProfileBasics() bool {
	return u.Class != "" && u.Section != ""
}

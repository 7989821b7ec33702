package consts

// 通用错误码
const (
	CodeSuccess int32 = 0 // 成功
)

// 客户端错误 (1xxxx)
const (
	CodeParamError       int32 = 10001 // 参数校验失败（发起网络请求前拦截）
	CodeBodyError        int32 = 10002 // 响应体格式错误
	CodeResourceNotFound int32 = 10003 // 资源不存在
)

// 认证错误 (2xxxx)
const (
	CodeUnauthorized   int32 = 20001 // 未认证（缺少令牌）
	CodeInvalidToken   int32 = 20002 // 令牌无效
	CodeTokenExpired   int32 = 20003 // 令牌已过期
	CodePermissionDeny int32 = 20004 // 无权限（登录态有效，不得清除令牌）
)

// 用户模块错误 (11xxx)
const (
	CodeUserNotFound      int32 = 11001 // 用户不存在
	CodeProfileIncomplete int32 = 11002 // 个人资料缺少必填字段（引导到资料设置）
)

// 好友模块错误 (12xxx)
const (
	CodeAlreadyFriend     int32 = 12001 // 已经是好友
	CodeFriendRequestSent int32 = 12002 // 好友申请已发送
	CodeNotFriend         int32 = 12003 // 不存在该好友关系
	CodeRequestResolved   int32 = 12005 // 好友申请已被处理（幂等按成功处理）
)

// 消息模块错误 (13xxx)
const (
	CodeMessageSendFail      int32 = 13002 // 消息发送失败
	CodeConversationNotFound int32 = 13004 // 会话不存在
	CodeMessageEmpty         int32 = 13005 // 消息内容为空
	CodeChannelNotConnected  int32 = 13006 // 长连接未建立
)

// 回忆模块错误 (15xxx)
const (
	CodeMemoryNotFound       int32 = 15001 // 回忆不存在
	CodeTimelineFieldMissing int32 = 15002 // 时间线事件字段不完整
)

// 快配模块错误 (16xxx)
const (
	CodeCandidatesExhausted int32 = 16001 // 候选人已滑完
)

// 服务端/传输错误 (3xxxx)
const (
	CodeInternalError      int32 = 30001 // 服务器内部错误
	CodeServiceUnavailable int32 = 30002 // 服务暂不可用（熔断打开）
	CodeNetworkError       int32 = 30003 // 网络错误（瞬时，调用方自行决定是否重试）
)

// 错误消息映射
var CodeMessage = map[int32]string{
	CodeSuccess: "success",

	// 客户端错误
	CodeParamError:       "参数校验失败",
	CodeBodyError:        "响应体格式错误",
	CodeResourceNotFound: "资源不存在",

	// 认证错误
	CodeUnauthorized:   "未认证",
	CodeInvalidToken:   "令牌无效",
	CodeTokenExpired:   "令牌已过期",
	CodePermissionDeny: "无权限",

	// 用户模块
	CodeUserNotFound:      "用户不存在",
	CodeProfileIncomplete: "个人资料不完整",

	// 好友模块
	CodeAlreadyFriend:     "已经是好友",
	CodeFriendRequestSent: "好友申请已发送",
	CodeNotFriend:         "不存在该好友关系",
	CodeRequestResolved:   "好友申请已被处理",

	// 消息模块
	CodeMessageSendFail:      "消息发送失败",
	CodeConversationNotFound: "会话不存在",
	CodeMessageEmpty:         "消息内容为空",
	CodeChannelNotConnected:  "长连接未建立",

	// 回忆模块
	CodeMemoryNotFound:       "回忆不存在",
	CodeTimelineFieldMissing: "时间线事件字段不完整",

	// 快配模块
	CodeCandidatesExhausted: "候选人已滑完",

	// 服务端/传输错误
	CodeInternalError:      "服务器内部错误",
	CodeServiceUnavailable: "服务暂不可用",
	CodeNetworkError:       "网络错误",
}

// GetMessage 根据错误码获取消息文案。
func GetMessage(code int32) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "未知错误"
}

// IsNonServerError 判断是否为业务错误（非服务端/传输错误）。
// 业务错误属于正常流程，不应记 error 级日志。
func IsNonServerError(code int32) bool {
	return code != CodeSuccess && code < 30000
}

package api

import (
	"errors"

	"CampusClient/consts"
)

// Error 表示一次 REST 调用的业务/传输错误。
// Code 为 consts 中定义的业务错误码，HTTPStatus 为原始状态码（传输层错误时为 0）。
type Error struct {
	Code       int32
	HTTPStatus int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return consts.GetMessage(e.Code)
}

// NewError 创建指定错误码的 Error。
func NewError(code int32, httpStatus int, message string) *Error {
	return &Error{Code: code, HTTPStatus: httpStatus, Message: message}
}

// CodeOf 提取错误中的业务错误码。
// 非本包 Error 一律视为内部错误。
func CodeOf(err error) int32 {
	if err == nil {
		return consts.CodeSuccess
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return consts.CodeInternalError
}

// IsAuthExpired 判断是否为登录态失效（需要清除令牌并回到登录页）。
func IsAuthExpired(err error) bool {
	switch CodeOf(err) {
	case consts.CodeUnauthorized, consts.CodeInvalidToken, consts.CodeTokenExpired:
		return true
	}
	return false
}

// IsConflict 判断是否为"已被处理/已存在"类冲突（幂等场景按成功处理）。
func IsConflict(err error) bool {
	switch CodeOf(err) {
	case consts.CodeAlreadyFriend, consts.CodeFriendRequestSent, consts.CodeRequestResolved:
		return true
	}
	return false
}

// IsNotFound 判断是否为资源不存在。
func IsNotFound(err error) bool {
	switch CodeOf(err) {
	case consts.CodeResourceNotFound, consts.CodeUserNotFound,
		consts.CodeMemoryNotFound, consts.CodeConversationNotFound:
		return true
	}
	return false
}

// IsNetwork 判断是否为瞬时网络错误（不自动重试，由上层决定）。
func IsNetwork(err error) bool {
	return CodeOf(err) == consts.CodeNetworkError
}

// IsValidation 判断是否为本地参数校验失败（未发起网络请求）。
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case consts.CodeParamError, consts.CodeMessageEmpty, consts.CodeTimelineFieldMissing:
		return true
	}
	return false
}

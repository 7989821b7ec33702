package ctxmeta

import "context"

// 上下文元数据键。
// 使用私有类型避免与其他包的 ctx key 冲突。
type ctxKey string

const (
	keyTraceID ctxKey = "trace_id"
	keyUserID  ctxKey = "user_id"
)

// WithTraceID 将 trace_id 注入上下文。
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, keyTraceID, traceID)
}

// TraceID 从上下文取出 trace_id，不存在时返回空串。
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(keyTraceID).(string); ok {
		return v
	}
	return ""
}

// WithUserID 将当前用户 id 注入上下文。
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, keyUserID, userID)
}

// UserID 从上下文取出当前用户 id，不存在时返回空串。
func UserID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(keyUserID).(string); ok {
		return v
	}
	return ""
}

package ctxkeys

import "context"

// contextKey 用于在 context 中存储值的键类型
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	jobIDKey     contextKey = "job_id"
	healthKey    contextKey = "health_check"
)

// WithRequestID 设置 RequestID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID 获取 RequestID
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithJobID 设置聚合任务 ID
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, jobIDKey, jobID)
}

// JobID 获取聚合任务 ID
func JobID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(jobIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithHealthCheck 标记由健康检查发起的调用，这类任务不计入业务指标
func WithHealthCheck(ctx context.Context) context.Context {
	return context.WithValue(ctx, healthKey, true)
}

// IsHealthCheck 判断调用是否来自健康检查
func IsHealthCheck(ctx context.Context) bool {
	v, _ := ctx.Value(healthKey).(bool)
	return v
}

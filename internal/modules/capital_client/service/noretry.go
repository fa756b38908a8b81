package service

import "context"

type noRetryKey struct{}

// WithoutRetry запросы с таким контекстом уходят ровно один раз,
// даже если клиент настроен на повторы GET.
func WithoutRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRetryKey{}, true)
}

func retryDisabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	off, _ := ctx.Value(noRetryKey{}).(bool)
	return off
}

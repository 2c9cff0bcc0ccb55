package kit

import "context"

type contextKey string

const (
	RequestIDKey contextKey = "kit_request_id"
	TabIDKey     contextKey = "kit_tab_id"
	SubjectKey   contextKey = "kit_subject"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(RequestIDKey).(string)
	return v
}

func WithTabID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TabIDKey, id)
}
func GetTabID(ctx context.Context) string {
	v, _ := ctx.Value(TabIDKey).(string)
	return v
}

func WithSubject(ctx context.Context, s string) context.Context {
	return context.WithValue(ctx, SubjectKey, s)
}
func GetSubject(ctx context.Context) string {
	v, _ := ctx.Value(SubjectKey).(string)
	return v
}

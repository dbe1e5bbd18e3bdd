package logger

import (
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// Context 中携带的日志字段
const (
	TraceIDKey   = "trace_id"
	ProfileIDKey = "profile_id"
)

// ContextHandler 从 ctx 中提取 trace_id 与当前登录用户写入每条日志
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if ctx != nil {
		if traceID, ok := ctx.Value(TraceIDKey).(string); ok && traceID != "" {
			r.AddAttrs(log.String(TraceIDKey, traceID))
		}
		if profileID, ok := ctx.Value(ProfileIDKey).(uuid.UUID); ok && profileID != uuid.Nil {
			r.AddAttrs(log.String(ProfileIDKey, profileID.String()))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &ContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) log.Handler {
	return &ContextHandler{h.Handler.WithGroup(name)}
}

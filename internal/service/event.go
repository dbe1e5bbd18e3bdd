package service

import (
	"context"
	log "log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// eventNamespace 派生事件 ID 的命名空间，相同交互得到相同 ID
var eventNamespace = uuid.MustParse("6f1c2b7e-4a55-4f0e-9d2c-8b3f5e7a1d90")

// InteractionEvent 用户交互事件，由消费方转换为通知
type InteractionEvent struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	ActorID     uuid.UUID  `json:"actorId"`
	RecipientID uuid.UUID  `json:"recipientId"`
	PostID      *uuid.UUID `json:"postId,omitempty"`
	CommentID   *uuid.UUID `json:"commentId,omitempty"`
	Content     *string    `json:"content,omitempty"`
	OccurredAt  time.Time  `json:"occurredAt"`
}

// NewEventID 由交互要素派生确定性的事件 ID
func NewEventID(parts ...string) uuid.UUID {
	return uuid.NewSHA1(eventNamespace, []byte(strings.Join(parts, ":")))
}

// EventPublisher 交互事件发布
type EventPublisher interface {
	Publish(ctx context.Context, event *InteractionEvent) error
}

// EventHandler 交互事件处理
type EventHandler interface {
	HandleEvent(ctx context.Context, event *InteractionEvent) error
}

// DirectPublisher 未启用 Kafka 时在进程内同步投递事件
type DirectPublisher struct {
	handler EventHandler
}

func NewDirectPublisher(handler EventHandler) *DirectPublisher {
	return &DirectPublisher{handler: handler}
}

func (p *DirectPublisher) Publish(ctx context.Context, event *InteractionEvent) error {
	return p.handler.HandleEvent(ctx, event)
}

// publishEvent 发布交互事件，失败只记录日志，不影响主流程
func publishEvent(ctx context.Context, publisher EventPublisher, event *InteractionEvent) {
	if publisher == nil || event.ActorID == event.RecipientID {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := publisher.Publish(ctx, event); err != nil {
		log.WarnContext(ctx, "failed to publish interaction event", "type", event.Type, "id", event.ID, "err", err)
	}
}

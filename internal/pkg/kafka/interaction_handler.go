package kafka

import (
	"Novii/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// InteractionHandler 消费交互事件并生成通知
type InteractionHandler struct {
	handler service.EventHandler
}

func NewInteractionHandler(handler service.EventHandler) *InteractionHandler {
	return &InteractionHandler{handler: handler}
}

func (s *InteractionHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("interaction consumer setup")
	return nil
}

func (s *InteractionHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("interaction consumer cleanup")
	return nil
}

func (s *InteractionHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-interaction consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-interaction process batch error", "err", err)
		return err
	}
	return nil
}

func (s *InteractionHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	event, err := ToInteractionEvent(msg)
	if err != nil {
		// 无法解析的消息重试也不会成功，直接跳过
		log.WarnContext(ctx, "skip malformed interaction event", "offset", msg.Offset, "err", err)
		return nil
	}
	return s.handler.HandleEvent(ctx, event)
}

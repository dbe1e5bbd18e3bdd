package kafka

import (
	"Novii/internal/api/config"
	"Novii/internal/service"
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// EventProducer 将交互事件写入 Kafka
type EventProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewEventProducer(cfg *config.Config) (*EventProducer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, newProducerConfig(cfg.Kafka))
	if err != nil {
		return nil, err
	}
	return NewEventProducerWith(producer, cfg.KafkaInteraction.Topic), nil
}

func NewEventProducerWith(producer sarama.SyncProducer, topic string) *EventProducer {
	return &EventProducer{producer: producer, topic: topic}
}

// Publish 以接收者 ID 作为消息键，同一用户的通知落在同一分区
func (p *EventProducer) Publish(_ context.Context, event *service.InteractionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.RecipientID.String()),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("send interaction event: %w", err)
	}
	return nil
}

func (p *EventProducer) Close() error {
	return p.producer.Close()
}

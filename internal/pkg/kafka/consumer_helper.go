package kafka

import (
	"Novii/internal/pkg/logger"
	"Novii/internal/service"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	batchSize    = 32
	batchTimeout = 1 * time.Second
	maxAttempts  = 5
	maxBackoff   = 5 * time.Second
)

var initialBackoff = 100 * time.Millisecond

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// pullMessageBatch 按数量或超时攒批处理，整批完成后提交最后一条位移
func pullMessageBatch(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, logic LogicFunc) error {
	batch := make([]*sarama.ConsumerMessage, 0, batchSize)
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		commitBatch(session, batch, logic)
		batch = make([]*sarama.ConsumerMessage, 0, batchSize)
	}

	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				flush()
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				flush()
				ticker.Reset(batchTimeout)
			}
		case <-ticker.C:
			flush()
		case <-session.Context().Done():
			return nil
		}
	}
}

// commitBatch 处理一批消息，全部完成后标记并同步提交最后一条的位移
// 自动提交已关闭，只 MarkMessage 不会写入 broker
func commitBatch(session sarama.ConsumerGroupSession, batch []*sarama.ConsumerMessage, logic LogicFunc) bool {
	if !processBatch(session.Context(), batch, logic) {
		return false
	}
	last := batch[len(batch)-1]
	session.MarkMessage(last, "")
	session.Commit()
	log.DebugContext(session.Context(), "kafka offset committed",
		"topic", last.Topic, "partition", last.Partition, "offset", last.Offset+1, "batch", len(batch))
	return true
}

// processBatch 按消息键（接收者）分组，组间并发、组内保持顺序
// ctx 取消导致未处理完时返回 false，此时不能提交位移
func processBatch(ctx context.Context, messages []*sarama.ConsumerMessage, logic LogicFunc) bool {
	var wg sync.WaitGroup
	var aborted atomic.Bool

	for _, group := range groupByKey(messages) {
		wg.Add(1)
		go func(msgs []*sarama.ConsumerMessage) {
			defer wg.Done()
			for _, m := range msgs {
				if !handleWithRetry(ctx, m, logic) {
					aborted.Store(true)
					return
				}
			}
		}(group)
	}
	wg.Wait()

	return !aborted.Load()
}

// handleWithRetry 指数退避重试，超过次数后记录并丢弃该消息
func handleWithRetry(ctx context.Context, msg *sarama.ConsumerMessage, logic LogicFunc) bool {
	msgCtx := context.WithValue(ctx, logger.TraceIDKey, fmt.Sprintf("kafka-%s-%d-%d", msg.Topic, msg.Partition, msg.Offset))
	backoff := initialBackoff

	for attempt := 1; ; attempt++ {
		err := logic(msgCtx, msg)
		if err == nil {
			return true
		}
		if attempt >= maxAttempts {
			log.ErrorContext(msgCtx, "drop message after retries", "attempts", attempt, "err", err)
			return true
		}
		log.WarnContext(msgCtx, "process message error, retrying", "attempt", attempt, "err", err)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func groupByKey(messages []*sarama.ConsumerMessage) [][]*sarama.ConsumerMessage {
	index := make(map[string]int)
	var groups [][]*sarama.ConsumerMessage
	for _, m := range messages {
		key := string(m.Key)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], m)
	}
	return groups
}

// ToInteractionEvent 将kafka消息转换为交互事件
func ToInteractionEvent(msg *sarama.ConsumerMessage) (*service.InteractionEvent, error) {
	var event service.InteractionEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return nil, err
	}
	if event.ID == uuid.Nil || event.Type == "" {
		return nil, errors.New("event id or type is empty")
	}
	return &event, nil
}

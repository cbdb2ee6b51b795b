package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// publishBatchSize — размер батча публикации. Совпадает с типовым
// лимитом send-batch у облачных очередей.
const publishBatchSize = 10

// IndexMessage — сообщение о единице индексирующей работы.
//
// Wire-контракт потребляется внешним worker'ом:
//
//	{kind:"index", accountId, messageId, payload:{pipelineId, runId, dataSourceId}}
type IndexMessage struct {
	// Kind — тег сообщения, всегда "index".
	Kind string `json:"kind"`

	// AccountID — владелец работы.
	AccountID string `json:"accountId"`

	// MessageID — детерминированный id "pipeline.run.dataSource".
	// Уникален на тройку, поэтому пригоден как ключ дедупликации.
	MessageID string `json:"messageId"`

	// Payload — координаты шага.
	Payload IndexPayload `json:"payload"`
}

// IndexPayload — координаты шага для worker'а.
type IndexPayload struct {
	PipelineID   string `json:"pipelineId"`
	RunID        string `json:"runId"`
	DataSourceID string `json:"dataSourceId"`
}

// NewIndexMessage собирает сообщение с детерминированным id.
func NewIndexMessage(accountID, pipelineID, runID, dataSourceID string) IndexMessage {
	return IndexMessage{
		Kind:      "index",
		AccountID: accountID,
		MessageID: fmt.Sprintf("%s.%s.%s", pipelineID, runID, dataSourceID),
		Payload: IndexPayload{
			PipelineID:   pipelineID,
			RunID:        runID,
			DataSourceID: dataSourceID,
		},
	}
}

// PublishError — часть сообщений батча не принята брокером.
//
// Частичный успех не ретраится здесь: строки run/step уже закоммичены,
// восстановление — забота внешней реконсиляции.
type PublishError struct {
	// FailedIDs — message id сообщений, которые не были подтверждены.
	FailedIDs []string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish index messages: %s", strings.Join(e.FailedIDs, ", "))
}

// Publisher публикует индексирующую работу в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// PublishIndexBatch публикует сообщения батчами фиксированного размера
// в исходном порядке.
//
// Каждый батч подтверждается брокером целиком (publisher confirms);
// если хотя бы одно сообщение не подтверждено, весь вызов завершается
// PublishError с перечислением неудачных message id. Пустой список —
// ноль батчей и nil.
func (p *Publisher) PublishIndexBatch(ctx context.Context, messages []IndexMessage) error {
	for _, batch := range chunk(publishBatchSize, messages) {
		if err := p.publishBatch(ctx, batch); err != nil {
			return err
		}

		p.logger.Debug("published index batch",
			"size", len(batch),
			"first_message_id", batch[0].MessageID,
		)
	}

	return nil
}

// publishBatch отправляет один батч и ждёт подтверждений.
func (p *Publisher) publishBatch(ctx context.Context, batch []IndexMessage) error {
	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		confirms := make([]*amqp.DeferredConfirmation, len(batch))

		for i, msg := range batch {
			publishing, err := buildPublishing(msg)
			if err != nil {
				return err
			}

			conf, err := ch.PublishWithDeferredConfirmWithContext(
				ctx,
				string(ExchangeIndex),  // exchange
				string(RoutingKeyDelay), // routing key: сначала в delay-очередь
				false,
				false,
				publishing,
			)
			if err != nil {
				return fmt.Errorf("publish %s: %w", msg.MessageID, err)
			}
			confirms[i] = conf
		}

		var failed []string
		for i, conf := range confirms {
			acked, err := conf.WaitContext(ctx)
			if err != nil {
				return fmt.Errorf("wait confirm %s: %w", batch[i].MessageID, err)
			}
			if !acked {
				failed = append(failed, batch[i].MessageID)
			}
		}

		if len(failed) > 0 {
			return &PublishError{FailedIDs: failed}
		}

		return nil
	})
}

// buildPublishing собирает AMQP publishing: тело + заголовки,
// зеркалирующие payload для фильтрации потребителями без
// десериализации тела.
func buildPublishing(msg IndexMessage) (amqp.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal message %s: %w", msg.MessageID, err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
		MessageId:    msg.MessageID,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			"pipelineId":   msg.Payload.PipelineID,
			"accountId":    msg.AccountID,
			"runId":        msg.Payload.RunID,
			"dataSourceId": msg.Payload.DataSourceID,
		},
		Body: body,
	}, nil
}

// chunk разбивает срез на группы по batchSize, сохраняя порядок.
func chunk[T any](batchSize int, items []T) [][]T {
	var batches [][]T
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		batches = append(batches, items[i:end])
	}
	return batches
}

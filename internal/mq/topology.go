package mq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeIndex Exchange = "langsync.index"
	ExchangeDLQ   Exchange = "langsync.dlq"
)

// Queues — имена очередей.
const (
	QueueIndexDelay Queue = "index.delay"
	QueueIndexReady Queue = "index.ready"
	QueueDLQIndex   Queue = "dlq.index"
)

// Routing keys.
const (
	RoutingKeyDelay    RoutingKey = "delay"
	RoutingKeyReady    RoutingKey = "ready"
	RoutingKeyDLQIndex RoutingKey = "index"
)

// DeliveryDelay — принудительная задержка видимости сообщения.
//
// Публикация происходит после коммита транзакции, но worker живёт
// в другом сервисе: без задержки он может спросить БД о run раньше,
// чем реплика увидит коммит.
const DeliveryDelay = 2 * time.Second

// DeadLetterAttempts — после скольких неудачных циклов обработки
// сообщение уходит в DLQ (политика уровня инфраструктуры, worker
// о ней не знает).
const DeadLetterAttempts = 3

func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		// 1. Создаём exchanges
		if err := declareExchanges(ch); err != nil {
			return err
		}

		// 2. Создаём queues
		if err := declareQueues(ch); err != nil {
			return err
		}

		// 3. Привязываем queues к exchanges
		if err := bindQueues(ch); err != nil {
			return err
		}

		return nil
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeIndex, "direct"},
		{ExchangeDLQ, "direct"},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	// index.delay: сообщения лежат DeliveryDelay и по TTL уходят
	// обратно в exchange с ключом ready.
	delayArgs := amqp.Table{
		"x-message-ttl":             DeliveryDelay.Milliseconds(),
		"x-dead-letter-exchange":    string(ExchangeIndex),
		"x-dead-letter-routing-key": string(RoutingKeyReady),
	}

	// index.ready: quorum-очередь с лимитом доставок — после
	// DeadLetterAttempts неудачных циклов сообщение уходит в DLQ.
	readyArgs := amqp.Table{
		"x-queue-type":              "quorum",
		"x-delivery-limit":          int32(DeadLetterAttempts),
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQIndex),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		{QueueIndexDelay, delayArgs},
		{QueueIndexReady, readyArgs},

		// dlq.index — сама DLQ очередь, разбирается вручную
		{QueueDLQIndex, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueIndexDelay, RoutingKeyDelay, ExchangeIndex},
		{QueueIndexReady, RoutingKeyReady, ExchangeIndex},
		{QueueDLQIndex, RoutingKeyDLQIndex, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Langsync RabbitMQ Topology:

    langsync.index (direct)
    ├── index.delay [routing: delay]
    │       TTL 2s → dead-letter → langsync.index/ready
    └── index.ready [routing: ready]
            Consumer: indexing worker (external)
            delivery limit 3 → DLQ: dlq.index

    langsync.dlq (direct)
    └── dlq.index [routing: index]
            Manual processing
  `
}

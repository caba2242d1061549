package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"HustleHeroes/config"
)

// 交换机与队列拓扑。申请事件与取消记录走同一个 direct 交换机，
// 由 routing key 分流到各自的队列。
const (
	EventsExchange = "hustleheroes.events"

	ApplicationEventsQueue      = "application.events"
	ApplicationEventsRoutingKey = "application"

	WorkerCancellationsQueue      = "worker.cancellations"
	WorkerCancellationsRoutingKey = "cancellation"

	// 延迟交换机走 rabbitmq-delayed-message-exchange 插件，
	// 承载开班后定点触发的爽约检查
	DelayedExchange = "hustleheroes.delayed"

	NoShowChecksQueue      = "noshow.checks"
	NoShowChecksRoutingKey = "noshow.check"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

func Init() error {
	connOnce.Do(func() {
		conn, connErr = amqp.Dial(config.Cfg.GetRabbitMQURL())
		if connErr != nil {
			return
		}

		connErr = declareTopology()
	})

	return connErr
}

func declareTopology() error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		EventsExchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(
		DelayedExchange,
		"x-delayed-message",
		true,
		false,
		false,
		false,
		amqp.Table{"x-delayed-type": "direct"},
	); err != nil {
		return fmt.Errorf("failed to declare delayed exchange: %w", err)
	}

	bindings := []struct {
		queue      string
		routingKey string
		exchange   string
	}{
		{ApplicationEventsQueue, ApplicationEventsRoutingKey, EventsExchange},
		{WorkerCancellationsQueue, WorkerCancellationsRoutingKey, EventsExchange},
		{NoShowChecksQueue, NoShowChecksRoutingKey, DelayedExchange},
	}

	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(b.queue, b.routingKey, b.exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", b.queue, err)
		}
	}

	return nil
}

func Connection() *amqp.Connection {
	return conn
}

func Close(ctx context.Context) error {
	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

package mq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"EmaQuest/config"
)

// Exchange and queue topology. Ping notifications go through the delayed
// exchange (x-delayed-message plugin) so a message published at scan time is
// delivered at the slot's wall-clock time; broadcasts go out immediately.
const (
	DelayedExchange = "scheduler.delayed"
	DirectExchange  = "emaquest.direct"

	PingNotifyQueue      = "ping.notify"
	PingNotifyRoutingKey = "ping.notify"

	BroadcastQueue      = "notification.broadcast"
	BroadcastRoutingKey = "notification.broadcast"
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

func declareTopology() error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		DelayedExchange,
		"x-delayed-message",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		amqp.Table{"x-delayed-type": "direct"},
	)
	if err != nil {
		return err
	}

	err = ch.ExchangeDeclare(DirectExchange, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	bindings := []struct {
		queue, key, exchange string
	}{
		{PingNotifyQueue, PingNotifyRoutingKey, DelayedExchange},
		{BroadcastQueue, BroadcastRoutingKey, DirectExchange},
	}

	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(b.queue, b.key, b.exchange, false, nil); err != nil {
			return err
		}
	}

	return nil
}

// Package notifier публикует платёжные уведомления в RabbitMQ.
//
// Уведомление — сторонний эффект после уже записанного платежа:
// ошибки публикации логируются вызывающим и не влияют на исход платежа.
package notifier

import (
	"fmt"

	"github.com/streadway/amqp"

	"github.com/somlabs/agentstore/internal/models"
	"github.com/somlabs/agentstore/internal/rabbitmq"
)

// AMQPNotifier отправляет уведомления через канал RabbitMQ.
type AMQPNotifier struct {
	ch *amqp.Channel
}

// New создаёт нотификатор поверх настроенного канала.
func New(ch *amqp.Channel) *AMQPNotifier {
	return &AMQPNotifier{ch: ch}
}

// NotifyPaymentCompleted публикует уведомление об успешном платеже.
func (n *AMQPNotifier) NotifyPaymentCompleted(notification models.PaymentNotification) error {
	const op = "notifier.NotifyPaymentCompleted"
	if err := rabbitmq.PublishMessage(n.ch, rabbitmq.Exchange, rabbitmq.PaymentRoutingKey, notification); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

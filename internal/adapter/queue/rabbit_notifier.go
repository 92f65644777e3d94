package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	domain "github.com/mahmudalamin/zbooksapp-sub000/internal/entity"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/logging"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/usecase"
)

const (
	exchangeName      = "order.notifications"
	routingKeyConfirm = "order.confirmation"
	routingKeyStatus  = "order.status_update"
	queueNameConfirm  = "order.confirmation.q"
	queueNameStatus   = "order.status_update.q"
)

// RabbitNotifier is the notification dispatcher: order placement and status
// transitions hand a message to the broker and move on. Delivery (the actual
// email send) happens on the consumer side, off the request path.
type RabbitNotifier struct {
	ch *amqp.Channel
}

// NewRabbitNotifier declares the exchange, queues and bindings once at
// startup and enables publisher confirms.
func NewRabbitNotifier(ch *amqp.Channel) (*RabbitNotifier, error) {
	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	for _, b := range []struct{ queue, key string }{
		{queueNameConfirm, routingKeyConfirm},
		{queueNameStatus, routingKeyStatus},
	} {
		q, err := ch.QueueDeclare(b.queue, true, false, false, false, nil)
		if err != nil {
			return nil, fmt.Errorf("declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(q.Name, b.key, exchangeName, false, nil); err != nil {
			return nil, fmt.Errorf("bind queue %s: %w", b.queue, err)
		}
	}

	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}
	return &RabbitNotifier{ch: ch}, nil
}

func (n *RabbitNotifier) SendOrderConfirmation(ctx context.Context, o *domain.Order) error {
	msg := usecase.OrderConfirmationMsg{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Email:         o.Email,
		Total:         o.Total.StringFixed(2),
		Currency:      o.Currency,
		PaymentMethod: o.PaymentMethod,
	}
	return n.publish(ctx, routingKeyConfirm, msg)
}

func (n *RabbitNotifier) SendStatusUpdate(ctx context.Context, o *domain.Order, prev domain.Status) error {
	msg := usecase.StatusUpdateMsg{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		Email:          o.Email,
		PreviousStatus: string(prev),
		NewStatus:      string(o.Status),
	}
	return n.publish(ctx, routingKeyStatus, msg)
}

func (n *RabbitNotifier) publish(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}
	if err := n.ch.PublishWithContext(ctx, exchangeName, key, false, false, pub); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	notificationsPublished.WithLabelValues(key).Inc()
	return nil
}

var _ usecase.Notifier = (*RabbitNotifier)(nil)

// NoopNotifier stands in when no broker is configured. The dispatcher
// contract is a soft no-op, never an error.
type NoopNotifier struct{}

func (NoopNotifier) SendOrderConfirmation(ctx context.Context, o *domain.Order) error {
	logging.FromCtx(ctx).Debug("notifier unconfigured, dropping order confirmation", "order_id", o.ID)
	return nil
}

func (NoopNotifier) SendStatusUpdate(ctx context.Context, o *domain.Order, prev domain.Status) error {
	logging.FromCtx(ctx).Debug("notifier unconfigured, dropping status update", "order_id", o.ID)
	return nil
}

var _ usecase.Notifier = NoopNotifier{}

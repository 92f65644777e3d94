package queue

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mahmudalamin/zbooksapp-sub000/internal/logging"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/usecase"
)

var (
	notificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_notifications_published_total",
			Help: "Notification messages handed to the broker",
		},
		[]string{"kind"},
	)
	notificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_notifications_delivered_total",
			Help: "Notification messages drained by the delivery worker",
		},
		[]string{"kind"},
	)
)

// Mailer is the outbound delivery boundary. The real implementation lives in
// the mail service; this process only hands messages over.
type Mailer interface {
	DeliverOrderConfirmation(ctx context.Context, msg usecase.OrderConfirmationMsg) error
	DeliverStatusUpdate(ctx context.Context, msg usecase.StatusUpdateMsg) error
}

// LogMailer records what would be delivered. Used when no mail transport is
// wired; keeps notification failures observable instead of silently lost.
type LogMailer struct{}

func (LogMailer) DeliverOrderConfirmation(ctx context.Context, msg usecase.OrderConfirmationMsg) error {
	logging.FromCtx(ctx).Info("order confirmation dispatched",
		"order_number", msg.OrderNumber, "email", msg.Email, "total", msg.Total)
	return nil
}

func (LogMailer) DeliverStatusUpdate(ctx context.Context, msg usecase.StatusUpdateMsg) error {
	logging.FromCtx(ctx).Info("status update dispatched",
		"order_number", msg.OrderNumber, "email", msg.Email,
		"from", msg.PreviousStatus, "to", msg.NewStatus)
	return nil
}

// NotificationHandler drains the notification queues into the Mailer.
type NotificationHandler struct {
	mailer Mailer
}

func NewNotificationHandler(m Mailer) *NotificationHandler {
	return &NotificationHandler{mailer: m}
}

// HandleConfirmation is used with JSONHandler[usecase.OrderConfirmationMsg].
func (h *NotificationHandler) HandleConfirmation(ctx context.Context, msg usecase.OrderConfirmationMsg) error {
	if err := h.mailer.DeliverOrderConfirmation(ctx, msg); err != nil {
		return err
	}
	notificationsDelivered.WithLabelValues("confirmation").Inc()
	return nil
}

// HandleStatusUpdate is used with JSONHandler[usecase.StatusUpdateMsg].
func (h *NotificationHandler) HandleStatusUpdate(ctx context.Context, msg usecase.StatusUpdateMsg) error {
	if err := h.mailer.DeliverStatusUpdate(ctx, msg); err != nil {
		return err
	}
	notificationsDelivered.WithLabelValues("status_update").Inc()
	return nil
}

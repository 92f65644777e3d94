package kafka

import (
	"context"

	domain "github.com/mahmudalamin/zbooksapp-sub000/internal/entity"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/usecase"
)

// PaymentEventHandler applies payment gateway events to orders. Payment
// status is a separate axis from fulfillment status: the update is
// unconditional and leaves no history trail and no notification.
type PaymentEventHandler struct {
	updater *usecase.StatusUpdater
}

func NewPaymentEventHandler(u *usecase.StatusUpdater) *PaymentEventHandler {
	return &PaymentEventHandler{updater: u}
}

func (h *PaymentEventHandler) Handle(ctx context.Context, ev usecase.PaymentEventMsg) error {
	return h.updater.UpdatePaymentStatus(ctx, ev.OrderID, domain.ParsePaymentStatus(ev.Status))
}

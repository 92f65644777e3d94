package usecase

import (
	"context"

	domain "github.com/mahmudalamin/zbooksapp-sub000/internal/entity"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/logging"
)

// StatusUpdater drives the order status state machine and the independent
// payment-status axis.
type StatusUpdater struct {
	repo   OrderRepo
	cache  OrderCache
	notify Notifier
}

func NewStatusUpdater(repo OrderRepo, cache OrderCache, n Notifier) *StatusUpdater {
	return &StatusUpdater{repo: repo, cache: cache, notify: n}
}

// Transition moves one order to next. The transition table is a hard
// server-side invariant here, not UI guidance: illegal moves are rejected
// with IllegalTransitionError. A same-status call is an allowed no-op write
// (updated_at is touched, no history entry, no notification).
func (u *StatusUpdater) Transition(ctx context.Context, orderID string, next domain.Status, notes string) (*domain.Order, error) {
	if !next.Valid() {
		return nil, ErrBadStatus
	}

	order, err := u.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	prev := order.Status
	if prev == next {
		if err := u.repo.Touch(ctx, orderID); err != nil {
			return nil, err
		}
		return order, nil
	}
	if !prev.CanTransitionTo(next) {
		return nil, &IllegalTransitionError{From: prev, To: next}
	}

	ok, err := u.repo.UpdateStatusIf(ctx, orderID, prev, next, notes)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Guard lost: another writer moved the status after our read.
		return nil, ErrStatusConflict
	}
	order.Status = next

	log := logging.FromCtx(ctx)
	if err := u.cache.SetStatus(ctx, orderID, string(next)); err != nil {
		log.Warn("status cache write failed", "order_id", orderID, "err", err)
	}
	if err := u.notify.SendStatusUpdate(ctx, order, prev); err != nil {
		log.Warn("status update notify failed", "order_id", orderID, "err", err)
	}
	return order, nil
}

// UpdatePaymentStatus is deliberately asymmetric to Transition: it is
// unconditional, leaves no history trail and sends no notification.
func (u *StatusUpdater) UpdatePaymentStatus(ctx context.Context, orderID string, ps domain.PaymentStatus) error {
	return u.repo.UpdatePaymentStatus(ctx, orderID, ps)
}

// BulkResult reports one order's outcome within a bulk transition.
type BulkResult struct {
	OrderID string `json:"orderId"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// BulkTransition applies Transition to each id sequentially. One order's
// failure never aborts the batch; every id gets its own result.
func (u *StatusUpdater) BulkTransition(ctx context.Context, orderIDs []string, next domain.Status, notes string) []BulkResult {
	results := make([]BulkResult, 0, len(orderIDs))
	for _, id := range orderIDs {
		if _, err := u.Transition(ctx, id, next, notes); err != nil {
			results = append(results, BulkResult{OrderID: id, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{OrderID: id, OK: true})
	}
	return results
}

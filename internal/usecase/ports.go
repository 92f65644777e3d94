package usecase

import (
	"context"

	domain "github.com/mahmudalamin/zbooksapp-sub000/internal/entity"
)

// OrderRepo is the persistence port for the order graph.
type OrderRepo interface {
	// CreateOrderGraph persists the address snapshot, the order row, its
	// items, the initial history entry, and decrements product stock for
	// every line, all in one transaction. On any failure nothing is
	// persisted. The order must arrive with Address and Items populated.
	CreateOrderGraph(ctx context.Context, o *domain.Order) error

	// GetByID loads one order with items, history (newest first) and the
	// address snapshot attached.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// ListByUser returns the caller's orders newest first, children attached.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)

	// UpdateStatusIf performs a guarded status update: the row is written and
	// a history entry appended (one transaction) only when the current status
	// still equals from. Returns false when the guard did not match.
	UpdateStatusIf(ctx context.Context, id string, from, to domain.Status, notes string) (bool, error)

	// Touch bumps updated_at without changing status or history.
	Touch(ctx context.Context, id string) error

	// UpdatePaymentStatus is unconditional: no guard, no history entry.
	UpdatePaymentStatus(ctx context.Context, id string, ps domain.PaymentStatus) error
}

// ProductReader is the catalog lookup port used by intake validation.
type ProductReader interface {
	// GetProduct returns ErrProductNotFound when the id is unknown.
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// Notifier is the best-effort notification boundary. Implementations must
// never block order placement; errors are logged by the caller and dropped.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, o *domain.Order) error
	SendStatusUpdate(ctx context.Context, o *domain.Order, prev domain.Status) error
}

// IdempotencyStore guards against double-submitted checkouts.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	// Unlock releases a held lock so a failed checkout can be retried
	// with the same key.
	Unlock(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// OrderCache holds the latest known status per order for cheap reads.
type OrderCache interface {
	SetStatus(ctx context.Context, orderID string, status string) error
	GetStatus(ctx context.Context, orderID string) (string, error)
}

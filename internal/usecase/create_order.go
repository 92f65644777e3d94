package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/mahmudalamin/zbooksapp-sub000/internal/entity"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/logging"
)

// PlaceOrderOutput is what the checkout caller gets back on success.
type PlaceOrderOutput struct {
	OrderID       string
	OrderNumber   string
	Status        domain.Status
	PaymentStatus domain.PaymentStatus
	Total         decimal.Decimal
	Message       string
}

// PlaceOrder runs the checkout workflow: validation, transactional order
// creation with stock decrement, then best-effort post-commit side effects.
type PlaceOrder struct {
	repo      OrderRepo
	validator *IntakeValidator
	idem      IdempotencyStore
	cache     OrderCache
	notify    Notifier
	now       func() time.Time
}

func NewPlaceOrder(repo OrderRepo, v *IntakeValidator, idem IdempotencyStore, cache OrderCache, n Notifier) *PlaceOrder {
	return &PlaceOrder{repo: repo, validator: v, idem: idem, cache: cache, notify: n, now: time.Now}
}

// Execute places one order for the given caller. userID must already be
// resolved by the transport layer; an empty id is rejected before any
// validation runs.
func (uc *PlaceOrder) Execute(ctx context.Context, userID string, req CheckoutRequest) (PlaceOrderOutput, error) {
	if strings.TrimSpace(userID) == "" {
		return PlaceOrderOutput{}, ErrUnauthorized
	}

	// Validation is pure, so it runs before the idempotency lock: a bad
	// payload is rejected the same way on every resubmission and never
	// burns the checkout key.
	validated, err := uc.validator.Validate(ctx, req)
	if err != nil {
		return PlaceOrderOutput{}, err
	}

	// At most one order per checkout: recall a previously committed order
	// for this key, or take the lock.
	if req.IdempotencyKey != "" {
		if id, ok, _ := uc.idem.Recall(ctx, userID, req.IdempotencyKey); ok {
			existing, err := uc.repo.GetByID(ctx, id)
			if err != nil {
				return PlaceOrderOutput{}, err
			}
			return uc.output(existing), nil
		}
		ok, err := uc.idem.TryLock(ctx, userID, req.IdempotencyKey)
		if err != nil {
			return PlaceOrderOutput{}, err
		}
		if !ok {
			return PlaceOrderOutput{}, ErrDuplicateCheckout
		}
	}

	order := uc.buildOrder(userID, req, validated)
	if err := uc.repo.CreateOrderGraph(ctx, order); err != nil {
		// Nothing committed: give the key back so the client can retry
		// (order-number collisions and transient storage errors are both
		// retryable).
		if req.IdempotencyKey != "" {
			if uerr := uc.idem.Unlock(ctx, userID, req.IdempotencyKey); uerr != nil {
				logging.FromCtx(ctx).Warn("idempotency unlock failed", "err", uerr)
			}
		}
		return PlaceOrderOutput{}, err
	}

	// Post-commit, best-effort. None of these may fail the placed order.
	log := logging.FromCtx(ctx)
	if req.IdempotencyKey != "" {
		if err := uc.idem.Remember(ctx, userID, req.IdempotencyKey, order.ID); err != nil {
			log.Warn("idempotency remember failed", "order_id", order.ID, "err", err)
		}
	}
	if err := uc.cache.SetStatus(ctx, order.ID, string(order.Status)); err != nil {
		log.Warn("status cache write failed", "order_id", order.ID, "err", err)
	}
	if err := uc.notify.SendOrderConfirmation(ctx, order); err != nil {
		log.Warn("order confirmation notify failed", "order_id", order.ID, "err", err)
	}

	return uc.output(order), nil
}

func (uc *PlaceOrder) buildOrder(userID string, req CheckoutRequest, v *ValidatedOrder) *domain.Order {
	now := uc.now().UTC()
	addrID := uuid.NewString()
	orderID := uuid.NewString()

	items := make([]domain.OrderItem, 0, len(v.Lines))
	for _, l := range v.Lines {
		items = append(items, domain.OrderItem{
			ID:          uuid.NewString(),
			OrderID:     orderID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.Price,
			Total:       l.Total,
		})
	}

	method := req.PaymentMethod
	if method == "" {
		method = "cod"
	}

	return &domain.Order{
		ID:             orderID,
		OrderNumber:    newOrderNumber(now),
		UserID:         userID,
		Email:          strings.TrimSpace(req.Shipping.Email),
		Phone:          strings.TrimSpace(req.Shipping.Phone),
		Status:         domain.StatusPending,
		PaymentStatus:  v.PaymentStatus,
		PaymentMethod:  method,
		Subtotal:       req.Subtotal,
		ShippingCost:   req.ShippingCost,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		Total:          req.Total,
		Currency:       "USD",
		ShippingAddrID: addrID,
		BillingAddrID:  addrID,
		Items:          items,
		History: []domain.HistoryEntry{{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			Status:    domain.StatusPending,
			Notes:     "Order placed, payment method: " + method,
			CreatedAt: now,
		}},
		Address: &domain.Address{
			ID:         addrID,
			FirstName:  strings.TrimSpace(req.Shipping.FirstName),
			LastName:   strings.TrimSpace(req.Shipping.LastName),
			Email:      strings.TrimSpace(req.Shipping.Email),
			Phone:      strings.TrimSpace(req.Shipping.Phone),
			Address1:   strings.TrimSpace(req.Shipping.Address1),
			Address2:   strings.TrimSpace(req.Shipping.Address2),
			City:       strings.TrimSpace(req.Shipping.City),
			State:      strings.TrimSpace(req.Shipping.State),
			PostalCode: strings.TrimSpace(req.Shipping.PostalCode),
			Country:    strings.TrimSpace(req.Shipping.Country),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (uc *PlaceOrder) output(o *domain.Order) PlaceOrderOutput {
	msg := "Order placed successfully. Thank you for your purchase."
	if strings.EqualFold(o.PaymentMethod, "cod") {
		msg = "Order placed successfully. Pay in cash when your order is delivered."
	}
	return PlaceOrderOutput{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Total:         o.Total,
		Message:       msg,
	}
}

// newOrderNumber builds the human-facing number: prefix, millisecond
// timestamp, short random suffix. Collisions are caught by the unique key
// on orders.order_number and surfaced as a retryable conflict.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return "ORD-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}

package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the fulfillment lifecycle of an order.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

// transitions holds the legal next states per status. CANCELLED and
// REFUNDED are terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is legal.
// A same-status write is always allowed (treated as a no-op upstream).
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// NextStates returns the legal next states from s; terminal states get an
// empty set.
func (s Status) NextStates() []Status {
	return transitions[s]
}

// PaymentStatus is an independent axis from Status.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "PENDING"
	PaymentPaid              PaymentStatus = "PAID"
	PaymentFailed            PaymentStatus = "FAILED"
	PaymentRefunded          PaymentStatus = "REFUNDED"
	PaymentPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

// ParsePaymentStatus maps a gateway-reported payment state onto the
// canonical enum. Total: anything unrecognized (including empty) is PENDING.
func ParsePaymentStatus(s string) PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed", "paid":
		return PaymentPaid
	case "failed":
		return PaymentFailed
	case "refunded":
		return PaymentRefunded
	case "partially_refunded":
		return PaymentPartiallyRefunded
	default:
		return PaymentPending
	}
}

// Order is the durable record of a completed checkout.
type Order struct {
	ID             string
	OrderNumber    string
	UserID         string
	Email          string
	Phone          string
	Status         Status
	PaymentStatus  PaymentStatus
	PaymentMethod  string
	Subtotal       decimal.Decimal
	ShippingCost   decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	Currency       string
	ShippingAddrID string
	BillingAddrID  string
	Items          []OrderItem
	History        []HistoryEntry
	Address        *Address
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderItem is an immutable snapshot of one purchased line.
type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string
	Quantity    int
	Price       decimal.Decimal
	Total       decimal.Decimal
}

// HistoryEntry is one row of the append-only status audit trail.
type HistoryEntry struct {
	ID        string
	OrderID   string
	Status    Status
	Notes     string
	CreatedAt time.Time
}

// Address is the immutable shipping snapshot captured at order time.
// Address-book edits after checkout never touch it.
type Address struct {
	ID         string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address1   string
	Address2   string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Product is the catalog read/decrement target.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}

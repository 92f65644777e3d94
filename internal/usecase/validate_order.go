package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/mahmudalamin/zbooksapp-sub000/internal/entity"
	"github.com/shopspring/decimal"
)

// CheckoutItem is one raw cart line as submitted by the client. Nothing in
// it is trusted; quantity, price and product existence are all re-checked.
type CheckoutItem struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// ShippingInfo is the raw shipping contact from the checkout form.
type ShippingInfo struct {
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

// CheckoutRequest is the full submitted checkout payload.
type CheckoutRequest struct {
	Items          []CheckoutItem
	Shipping       ShippingInfo
	Subtotal       decimal.Decimal
	ShippingCost   decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	PaymentMethod  string
	PaymentStatus  string
	IdempotencyKey string
}

// ValidatedLine is a normalized, catalog-checked cart line.
type ValidatedLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       decimal.Decimal
	Total       decimal.Decimal
}

// ValidatedOrder is the validator's output: normalized lines plus the
// canonical payment status mapped from the raw payload.
type ValidatedOrder struct {
	Lines         []ValidatedLine
	PaymentStatus domain.PaymentStatus
}

// requiredShippingFields in the order they are reported when missing.
var requiredShippingFields = []struct {
	name string
	get  func(ShippingInfo) string
}{
	{"firstName", func(s ShippingInfo) string { return s.FirstName }},
	{"lastName", func(s ShippingInfo) string { return s.LastName }},
	{"email", func(s ShippingInfo) string { return s.Email }},
	{"phone", func(s ShippingInfo) string { return s.Phone }},
	{"address1", func(s ShippingInfo) string { return s.Address1 }},
	{"city", func(s ShippingInfo) string { return s.City }},
	{"state", func(s ShippingInfo) string { return s.State }},
	{"postalCode", func(s ShippingInfo) string { return s.PostalCode }},
}

// IntakeValidator checks a submitted checkout against the catalog and
// normalizes it. Read-only: it never mutates stock (the transactional
// decrement re-checks at commit time).
type IntakeValidator struct {
	catalog ProductReader
}

func NewIntakeValidator(catalog ProductReader) *IntakeValidator {
	return &IntakeValidator{catalog: catalog}
}

// Validate returns a ValidatedOrder or an *IntakeError. Checks run in a
// fixed order and the first failing check wins.
func (v *IntakeValidator) Validate(ctx context.Context, req CheckoutRequest) (*ValidatedOrder, error) {
	if len(req.Items) == 0 {
		return nil, intakeErrf(CodeEmptyCart, "Cart is empty")
	}

	var missing []string
	for _, f := range requiredShippingFields {
		if strings.TrimSpace(f.get(req.Shipping)) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, intakeErrf(CodeIncompleteShipping,
			"Missing required shipping fields: %s", strings.Join(missing, ", "))
	}

	lines := make([]ValidatedLine, 0, len(req.Items))
	for i, item := range req.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, intakeErrf(CodeMissingProductID, "Item %d is missing a product id", i+1)
		}
		if item.Quantity <= 0 {
			return nil, intakeErrf(CodeInvalidQuantity, "Invalid quantity for product %s", item.ProductID)
		}
		if item.Price.Cmp(decimal.Zero) <= 0 {
			return nil, intakeErrf(CodeInvalidPrice, "Invalid price for product %s", item.ProductID)
		}

		p, err := v.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				return nil, intakeErrf(CodeProductNotFound, "Product %s not found", item.ProductID)
			}
			return nil, fmt.Errorf("catalog lookup %s: %w", item.ProductID, err)
		}
		if item.Quantity > p.Stock {
			return nil, intakeErrf(CodeInsufficientStock,
				"Insufficient stock for %s. Only %d available.", p.Name, p.Stock)
		}

		lines = append(lines, ValidatedLine{
			ProductID:   item.ProductID,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Total:       item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}

	// total = subtotal + shipping + tax - discount holds for every
	// persisted order; a payload that breaks it never reaches storage.
	expected := req.Subtotal.Add(req.ShippingCost).Add(req.TaxAmount).Sub(req.DiscountAmount)
	if !req.Total.Equal(expected) {
		return nil, intakeErrf(CodeInvalidTotal,
			"Order total %s does not match its components (expected %s)",
			req.Total.StringFixed(2), expected.StringFixed(2))
	}

	return &ValidatedOrder{
		Lines:         lines,
		PaymentStatus: domain.ParsePaymentStatus(req.PaymentStatus),
	}, nil
}

package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mahmudalamin/zbooksapp-sub000/internal/adapter/http/middleware"
	domain "github.com/mahmudalamin/zbooksapp-sub000/internal/entity"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/usecase"
)

type OrderHandler struct {
	place   *usecase.PlaceOrder
	updater *usecase.StatusUpdater
	query   usecase.OrderRepo
	dev     bool
}

func NewOrderHandler(place *usecase.PlaceOrder, updater *usecase.StatusUpdater, query usecase.OrderRepo, dev bool) *OrderHandler {
	return &OrderHandler{place: place, updater: updater, query: query, dev: dev}
}

type checkoutItemReq struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type shippingInfoReq struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type checkoutReq struct {
	Items         []checkoutItemReq `json:"items"`
	ShippingInfo  shippingInfoReq   `json:"shippingInfo"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	Shipping      decimal.Decimal   `json:"shipping"`
	Tax           decimal.Decimal   `json:"tax"`
	Discount      decimal.Decimal   `json:"discount"`
	Total         decimal.Decimal   `json:"total"`
	PaymentMethod string            `json:"paymentMethod"`
	PaymentStatus string            `json:"paymentStatus"`
}

type checkoutResp struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"orderNumber"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	Total         decimal.Decimal `json:"total"`
	Message       string          `json:"message"`
}

// CreateOrder handles POST /v1/orders.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	out, err := h.place.Execute(ctx, userID, toCheckoutRequest(req, c.GetHeader("X-Idempotency-Key")))
	if err != nil {
		h.writeError(c, err)
		return
	}

	ordersCreated.Inc()
	c.JSON(http.StatusCreated, checkoutResp{
		ID:            out.OrderID,
		OrderNumber:   out.OrderNumber,
		Status:        string(out.Status),
		PaymentStatus: string(out.PaymentStatus),
		Total:         out.Total,
		Message:       out.Message,
	})
}

// ListOrders handles GET /v1/orders: the caller's orders, newest first.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.query.ListByUser(ctx, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(orders))
	for i := range orders {
		resp = append(resp, orderJSON(&orders[i]))
	}
	c.JSON(http.StatusOK, gin.H{"orders": resp})
}

// GetOrder handles GET /v1/orders/:id, scoped to the caller.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	order, err := h.query.GetByID(ctx, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if order.UserID != userID {
		// not yours: indistinguishable from absent
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, orderJSON(order))
}

type statusPatchReq struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdateStatus handles PATCH /v1/admin/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req statusPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.updater.Transition(ctx, c.Param("id"), domain.Status(req.Status), req.Notes)
	if err != nil {
		h.writeError(c, err)
		return
	}
	statusTransitions.WithLabelValues(string(order.Status)).Inc()
	c.JSON(http.StatusOK, gin.H{
		"id":     order.ID,
		"status": string(order.Status),
	})
}

type paymentStatusPatchReq struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

// UpdatePaymentStatus handles PATCH /v1/admin/orders/:id/payment-status.
// The mapping is total, so any submitted value is accepted.
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	var req paymentStatusPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ps := domain.ParsePaymentStatus(req.PaymentStatus)
	if err := h.updater.UpdatePaymentStatus(ctx, c.Param("id"), ps); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "paymentStatus": string(ps)})
}

type bulkStatusReq struct {
	OrderIDs []string `json:"orderIds" binding:"required"`
	Status   string   `json:"status" binding:"required"`
	Notes    string   `json:"notes"`
}

// BulkUpdateStatus handles POST /v1/admin/orders/status. Partial failure is
// expected: every id gets its own result entry.
func (h *OrderHandler) BulkUpdateStatus(c *gin.Context) {
	var req bulkStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	results := h.updater.BulkTransition(ctx, req.OrderIDs, domain.Status(req.Status), req.Notes)
	for _, r := range results {
		if r.OK {
			statusTransitions.WithLabelValues(req.Status).Inc()
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func toCheckoutRequest(req checkoutReq, idemKey string) usecase.CheckoutRequest {
	items := make([]usecase.CheckoutItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.CheckoutItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return usecase.CheckoutRequest{
		Items: items,
		Shipping: usecase.ShippingInfo{
			FirstName:  req.ShippingInfo.FirstName,
			LastName:   req.ShippingInfo.LastName,
			Email:      req.ShippingInfo.Email,
			Phone:      req.ShippingInfo.Phone,
			Address1:   req.ShippingInfo.Address1,
			Address2:   req.ShippingInfo.Address2,
			City:       req.ShippingInfo.City,
			State:      req.ShippingInfo.State,
			PostalCode: req.ShippingInfo.PostalCode,
			Country:    req.ShippingInfo.Country,
		},
		Subtotal:       req.Subtotal,
		ShippingCost:   req.Shipping,
		TaxAmount:      req.Tax,
		DiscountAmount: req.Discount,
		Total:          req.Total,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  req.PaymentStatus,
		IdempotencyKey: idemKey,
	}
}

func orderJSON(o *domain.Order) gin.H {
	items := make([]gin.H, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, gin.H{
			"productId":   it.ProductID,
			"productName": it.ProductName,
			"quantity":    it.Quantity,
			"price":       it.Price,
			"total":       it.Total,
		})
	}
	history := make([]gin.H, 0, len(o.History))
	for _, h := range o.History {
		history = append(history, gin.H{
			"status":    string(h.Status),
			"notes":     h.Notes,
			"createdAt": h.CreatedAt,
		})
	}
	out := gin.H{
		"id":            o.ID,
		"orderNumber":   o.OrderNumber,
		"status":        string(o.Status),
		"paymentStatus": string(o.PaymentStatus),
		"paymentMethod": o.PaymentMethod,
		"subtotal":      o.Subtotal,
		"shippingCost":  o.ShippingCost,
		"taxAmount":     o.TaxAmount,
		"discount":      o.DiscountAmount,
		"total":         o.Total,
		"currency":      o.Currency,
		"items":         items,
		"history":       history,
		"createdAt":     o.CreatedAt,
		"updatedAt":     o.UpdatedAt,
	}
	if o.Address != nil {
		out["shippingAddress"] = gin.H{
			"firstName":  o.Address.FirstName,
			"lastName":   o.Address.LastName,
			"address1":   o.Address.Address1,
			"address2":   o.Address.Address2,
			"city":       o.Address.City,
			"state":      o.Address.State,
			"postalCode": o.Address.PostalCode,
			"country":    o.Address.Country,
		}
	}
	return out
}

// writeError maps the use-case error taxonomy onto HTTP. Internal detail
// leaks only in dev mode.
func (h *OrderHandler) writeError(c *gin.Context, err error) {
	var intake *usecase.IntakeError
	if errors.As(err, &intake) {
		c.JSON(http.StatusBadRequest, gin.H{"error": intake.Message, "code": intake.Code})
		return
	}
	var illegal *usecase.IllegalTransitionError
	if errors.As(err, &illegal) {
		c.JSON(http.StatusConflict, gin.H{"error": illegal.Error()})
		return
	}

	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, usecase.ErrProductNotFound):
		// product vanished between validation and commit
		c.JSON(http.StatusBadRequest, gin.H{"error": "One or more products no longer exist"})
	case errors.Is(err, usecase.ErrDuplicateOrderNumber):
		c.JSON(http.StatusConflict, gin.H{"error": "Order number collision, please retry"})
	case errors.Is(err, usecase.ErrDuplicateCheckout):
		c.JSON(http.StatusConflict, gin.H{"error": "Checkout already in progress"})
	case errors.Is(err, usecase.ErrStatusConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Order status changed concurrently, please retry"})
	case errors.Is(err, usecase.ErrBadStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
	case errors.Is(err, usecase.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
	default:
		msg := "Something went wrong, please try again later"
		if h.dev {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

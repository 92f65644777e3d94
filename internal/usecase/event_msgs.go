package usecase

// OrderConfirmationMsg is published to the notification exchange after a
// checkout commits.
type OrderConfirmationMsg struct {
	OrderID       string `json:"orderId"`
	OrderNumber   string `json:"orderNumber"`
	Email         string `json:"email"`
	Total         string `json:"total"`
	Currency      string `json:"currency"`
	PaymentMethod string `json:"paymentMethod"`
}

// StatusUpdateMsg is published when an order's fulfillment status changes.
type StatusUpdateMsg struct {
	OrderID        string `json:"orderId"`
	OrderNumber    string `json:"orderNumber"`
	Email          string `json:"email"`
	PreviousStatus string `json:"previousStatus"`
	NewStatus      string `json:"newStatus"`
	Notes          string `json:"notes,omitempty"`
}

// PaymentEventMsg is consumed from the payment gateway's Kafka topic.
type PaymentEventMsg struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

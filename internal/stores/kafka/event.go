package kafka

import "time"

const (
	TopicOrderPlaced        = `order-service.order-placed`
	TopicOrderStatusUpdated = `order-service.order-status-updated`
	TopicOrderCancelled     = `order-service.order-cancelled`
)

// Events published after an order mutation commits. Consumers only need
// the order id, the affected product and the quantity moved.

type OrderPlacedEvent struct {
	OrderID   string    `json:"order_id"`
	ProductID int       `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderStatusUpdatedEvent struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderCancelledEvent struct {
	OrderID     string    `json:"order_id"`
	ProductID   int       `json:"product_id"`
	Quantity    int       `json:"quantity"`
	CancelledAt time.Time `json:"cancelled_at"`
}

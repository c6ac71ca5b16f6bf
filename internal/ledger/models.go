package ledger

import "time"

// Product is an immutable catalog entry. Products are created only by
// seeding; the API never mutates or deletes them.
type Product struct {
	ID          int     `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Price       float64 `json:"price" db:"price"`
	Description string  `json:"description" db:"description"`
}

// InventoryItem is the per-product stock record. Name and price are
// denormalized copies of the product row taken at seed time.
type InventoryItem struct {
	ID          int     `json:"id" db:"id"`
	ProductID   int     `json:"productId" db:"product_id"`
	ProductName string  `json:"productName" db:"product_name"`
	Quantity    int     `json:"quantity" db:"quantity"`
	Price       float64 `json:"price" db:"price"`
}

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
)

// ParseOrderStatus maps a raw string onto one of the known statuses.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered:
		return OrderStatus(s), true
	}
	return "", false
}

// Order represents a customer's request to purchase a quantity of one
// product. ProductName is a snapshot of the catalog name at creation time.
type Order struct {
	ID            string      `json:"id" db:"id"`
	CustomerName  string      `json:"customerName" db:"customer_name"`
	CustomerEmail string      `json:"customerEmail" db:"customer_email"`
	ProductID     int         `json:"productId" db:"product_id"`
	ProductName   string      `json:"productName" db:"product_name"`
	Quantity      int         `json:"quantity" db:"quantity"`
	Status        OrderStatus `json:"status" db:"status"`
	CreatedAt     time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time   `json:"updatedAt" db:"updated_at"`
}

// NewOrder carries the caller-supplied fields of an order placement.
type NewOrder struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
	ProductID     int    `json:"productId"`
	Quantity      int    `json:"quantity" validate:"gt=0"`
}

package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound marks lookups of absent products, inventory rows or orders.
// Callers match it with errors.Is; the wrapping error carries the
// human-readable message naming the offending id.
var ErrNotFound = errors.New("not found")

// InsufficientInventoryError is returned when an order requests more
// units than the inventory row currently holds.
type InsufficientInventoryError struct {
	ProductID int
	Available int
	Requested int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("Insufficient inventory. Available: %d, Requested: %d", e.Available, e.Requested)
}

// InvalidInputError is returned when an order placement fails validation
// before touching the store.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func productNotFound(productID int) error {
	return fmt.Errorf("Product with id %d %w", productID, ErrNotFound)
}

func inventoryNotFound(productID int) error {
	return fmt.Errorf("Inventory for product %d %w", productID, ErrNotFound)
}

// inventoryMissingForOrder keeps the original order-placement wording,
// which differs from the inventory lookup wording above.
func inventoryMissingForOrder(productID int) error {
	return fmt.Errorf("Inventory %w for product %d", ErrNotFound, productID)
}

func orderNotFound(orderID string) error {
	return fmt.Errorf("Order with id %s %w", orderID, ErrNotFound)
}

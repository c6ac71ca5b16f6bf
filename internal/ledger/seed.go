package ledger

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SeedProducts returns the fixed sample catalog.
func SeedProducts() []Product {
	return []Product{
		{ID: 1, Name: "Laptop", Price: 999.99, Description: "High-performance laptop"},
		{ID: 2, Name: "Mouse", Price: 29.99, Description: "Wireless ergonomic mouse"},
		{ID: 3, Name: "Keyboard", Price: 79.99, Description: "Mechanical keyboard"},
		{ID: 4, Name: "Monitor", Price: 299.99, Description: "27-inch 4K monitor"},
		{ID: 5, Name: "Headphones", Price: 149.99, Description: "Noise-cancelling headphones"},
	}
}

// SeedInventory returns the stock rows matching SeedProducts.
func SeedInventory() []InventoryItem {
	return []InventoryItem{
		{ID: 1, ProductID: 1, ProductName: "Laptop", Quantity: 45, Price: 999.99},
		{ID: 2, ProductID: 2, ProductName: "Mouse", Quantity: 150, Price: 29.99},
		{ID: 3, ProductID: 3, ProductName: "Keyboard", Quantity: 8, Price: 79.99},
		{ID: 4, ProductID: 4, ProductName: "Monitor", Quantity: 30, Price: 299.99},
		{ID: 5, ProductID: 5, ProductName: "Headphones", Quantity: 67, Price: 149.99},
	}
}

// Seed inserts the sample products and inventory exactly once. It is a
// no-op when the product collection already has rows.
func (c *Conf) Seed(ctx context.Context) error {
	return c.withTx(ctx, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count, `SELECT count(*) FROM products`); err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		if count > 0 {
			return nil
		}

		queryProduct := `INSERT INTO products (id, name, price, description) VALUES ($1, $2, $3, $4)`
		for _, p := range SeedProducts() {
			if _, err := tx.ExecContext(ctx, queryProduct, p.ID, p.Name, p.Price, p.Description); err != nil {
				return fmt.Errorf("failed to seed product %d: %w", p.ID, err)
			}
		}

		queryItem := `INSERT INTO inventory (id, product_id, product_name, quantity, price) VALUES ($1, $2, $3, $4, $5)`
		for _, item := range SeedInventory() {
			if _, err := tx.ExecContext(ctx, queryItem, item.ID, item.ProductID, item.ProductName, item.Quantity, item.Price); err != nil {
				return fmt.Errorf("failed to seed inventory for product %d: %w", item.ProductID, err)
			}
		}
		return nil
	})
}

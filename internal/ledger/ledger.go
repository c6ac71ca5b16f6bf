package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Conf owns the products, inventory and orders collections and enforces
// the consistency rules linking them. It is stateless apart from the
// injected database handle; every operation runs in its own transaction.
type Conf struct {
	db       *sqlx.DB
	validate *validator.Validate
}

func NewConf(db *sqlx.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db, validate: newValidate()}, nil
}

// newValidate builds a validator that reports fields by their json tag,
// so validation messages match the wire contract.
func newValidate() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// Ping reports store connectivity for the health endpoint.
func (c *Conf) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Conf) GetProducts(ctx context.Context) ([]Product, error) {
	products := []Product{}
	err := c.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT id, name, price, description FROM products`
		if err := tx.SelectContext(ctx, &products, query); err != nil {
			return fmt.Errorf("failed to query products: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Conf) GetProduct(ctx context.Context, productID int) (Product, error) {
	var product Product
	err := c.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT id, name, price, description FROM products WHERE id = $1`
		err := tx.GetContext(ctx, &product, query, productID)
		if errors.Is(err, sql.ErrNoRows) {
			return productNotFound(productID)
		}
		if err != nil {
			return fmt.Errorf("failed to query product: %w", err)
		}
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return product, nil
}

func (c *Conf) GetInventory(ctx context.Context) ([]InventoryItem, error) {
	items := []InventoryItem{}
	err := c.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT id, product_id, product_name, quantity, price FROM inventory`
		if err := tx.SelectContext(ctx, &items, query); err != nil {
			return fmt.Errorf("failed to query inventory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Conf) GetInventoryItem(ctx context.Context, productID int) (InventoryItem, error) {
	var item InventoryItem
	err := c.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT id, product_id, product_name, quantity, price FROM inventory WHERE product_id = $1`
		err := tx.GetContext(ctx, &item, query, productID)
		if errors.Is(err, sql.ErrNoRows) {
			return inventoryNotFound(productID)
		}
		if err != nil {
			return fmt.Errorf("failed to query inventory item: %w", err)
		}
		return nil
	})
	if err != nil {
		return InventoryItem{}, err
	}
	return item, nil
}

// CreateOrder validates the request, checks stock under a row lock,
// inserts the order and decrements the inventory row. The insert and the
// decrement commit or roll back together.
func (c *Conf) CreateOrder(ctx context.Context, no NewOrder) (Order, error) {
	if err := c.validateNewOrder(no); err != nil {
		return Order{}, err
	}

	var order Order
	err := c.withTx(ctx, func(tx *sqlx.Tx) error {
		var product Product
		queryProduct := `SELECT id, name, price, description FROM products WHERE id = $1`
		err := tx.GetContext(ctx, &product, queryProduct, no.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return productNotFound(no.ProductID)
		}
		if err != nil {
			return fmt.Errorf("failed to query product: %w", err)
		}

		// Lock the inventory row so two concurrent orders cannot both
		// pass the availability check against the same quantity.
		var item InventoryItem
		queryLock := `SELECT id, product_id, product_name, quantity, price FROM inventory WHERE product_id = $1 FOR UPDATE`
		err = tx.GetContext(ctx, &item, queryLock, no.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return inventoryMissingForOrder(no.ProductID)
		}
		if err != nil {
			return fmt.Errorf("failed to lock inventory row: %w", err)
		}

		if item.Quantity < no.Quantity {
			return &InsufficientInventoryError{
				ProductID: no.ProductID,
				Available: item.Quantity,
				Requested: no.Quantity,
			}
		}

		now := time.Now().UTC()
		order = Order{
			ID:            newOrderID(),
			CustomerName:  no.CustomerName,
			CustomerEmail: no.CustomerEmail,
			ProductID:     no.ProductID,
			ProductName:   product.Name,
			Quantity:      no.Quantity,
			Status:        StatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		queryInsert := `
			INSERT INTO orders (id, customer_name, customer_email, product_id, product_name, quantity, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		_, err = tx.ExecContext(ctx, queryInsert,
			order.ID, order.CustomerName, order.CustomerEmail, order.ProductID,
			order.ProductName, order.Quantity, order.Status, order.CreatedAt, order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		queryDecrement := `UPDATE inventory SET quantity = quantity - $1 WHERE product_id = $2`
		_, err = tx.ExecContext(ctx, queryDecrement, order.Quantity, order.ProductID)
		if err != nil {
			return fmt.Errorf("failed to decrement inventory: %w", err)
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

func (c *Conf) GetOrder(ctx context.Context, orderID string) (Order, error) {
	var order Order
	err := c.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			SELECT id, customer_name, customer_email, product_id, product_name, quantity, status, created_at, updated_at
			FROM orders WHERE id = $1
		`
		err := tx.GetContext(ctx, &order, query, orderID)
		if errors.Is(err, sql.ErrNoRows) {
			return orderNotFound(orderID)
		}
		if err != nil {
			return fmt.Errorf("failed to query order: %w", err)
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

func (c *Conf) GetAllOrders(ctx context.Context) ([]Order, error) {
	orders := []Order{}
	err := c.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			SELECT id, customer_name, customer_email, product_id, product_name, quantity, status, created_at, updated_at
			FROM orders
		`
		if err := tx.SelectContext(ctx, &orders, query); err != nil {
			return fmt.Errorf("failed to query orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus overwrites the order status unconditionally. Any
// status may follow any status; only membership in the known set is
// checked at the transport edge.
func (c *Conf) UpdateOrderStatus(ctx context.Context, orderID string, newStatus OrderStatus) (Order, error) {
	var order Order
	err := c.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			SELECT id, customer_name, customer_email, product_id, product_name, quantity, status, created_at, updated_at
			FROM orders WHERE id = $1 FOR UPDATE
		`
		err := tx.GetContext(ctx, &order, query, orderID)
		if errors.Is(err, sql.ErrNoRows) {
			return orderNotFound(orderID)
		}
		if err != nil {
			return fmt.Errorf("failed to query order: %w", err)
		}

		order.Status = newStatus
		order.UpdatedAt = time.Now().UTC()

		queryUpdate := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`
		_, err = tx.ExecContext(ctx, queryUpdate, order.Status, order.UpdatedAt, order.ID)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

// CancelOrder restores the order's quantity to the inventory row,
// deletes the order and returns the deleted row. Cancellation is allowed
// from any status. A missing inventory row skips restoration; the order
// is still removed.
func (c *Conf) CancelOrder(ctx context.Context, orderID string) (Order, error) {
	var order Order
	err := c.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			SELECT id, customer_name, customer_email, product_id, product_name, quantity, status, created_at, updated_at
			FROM orders WHERE id = $1 FOR UPDATE
		`
		err := tx.GetContext(ctx, &order, query, orderID)
		if errors.Is(err, sql.ErrNoRows) {
			return orderNotFound(orderID)
		}
		if err != nil {
			return fmt.Errorf("failed to query order: %w", err)
		}

		var item InventoryItem
		queryLock := `SELECT id, product_id, product_name, quantity, price FROM inventory WHERE product_id = $1 FOR UPDATE`
		err = tx.GetContext(ctx, &item, queryLock, order.ProductID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// Orphaned order: nothing to restore, the delete still runs.
		case err != nil:
			return fmt.Errorf("failed to lock inventory row: %w", err)
		default:
			queryRestore := `UPDATE inventory SET quantity = quantity + $1 WHERE product_id = $2`
			if _, err := tx.ExecContext(ctx, queryRestore, order.Quantity, order.ProductID); err != nil {
				return fmt.Errorf("failed to restore inventory: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, order.ID); err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

func (c *Conf) validateNewOrder(no NewOrder) error {
	err := c.validate.Struct(no)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		vErr := vErrs[0]
		switch vErr.Tag() {
		case "email":
			return &InvalidInputError{Field: "customerEmail", Reason: "must be a valid email address"}
		case "gt":
			return &InvalidInputError{Field: "quantity", Reason: "must be greater than 0"}
		default:
			return &InvalidInputError{Field: vErr.Field(), Reason: "value missing"}
		}
	}
	return &InvalidInputError{Field: "order", Reason: err.Error()}
}

// newOrderID builds ids of the form ORD-XXXXXXXX, eight uppercase hex
// characters taken from a v4 UUID. Collisions are treated as negligible.
func newOrderID() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

func (c *Conf) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback withTx: %w", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withTx: %w", err)
	}
	return nil
}

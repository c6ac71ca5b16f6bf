package ledger

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"order-inventory-service/internal/stores/postgres"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getTestingDB connects to the database named by TEST_DATABASE_URL,
// applies migrations and resets all three tables. Tests are skipped when
// the variable is unset.
func getTestingDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}
	t.Setenv("DATABASE_URL", dsn)

	db, err := postgres.OpenDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, postgres.RunMigrations(db))
	db.MustExec("TRUNCATE orders")
	db.MustExec("TRUNCATE inventory CASCADE")
	db.MustExec("TRUNCATE products CASCADE")
	return db
}

func TestOrderLifecycle(t *testing.T) {
	db := getTestingDB(t)
	c, err := NewConf(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Seed(ctx))

	// Seeding is idempotent once products exist.
	require.NoError(t, c.Seed(ctx))
	products, err := c.GetProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 5)

	// Keyboard starts with 8 units.
	item, err := c.GetInventoryItem(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 8, item.Quantity)

	order, err := c.CreateOrder(ctx, NewOrder{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		ProductID:     3,
		Quantity:      5,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, "Keyboard", order.ProductName)
	assert.True(t, order.CreatedAt.Equal(order.UpdatedAt))

	item, err = c.GetInventoryItem(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	// Second order over-subscribes and must leave stock untouched.
	_, err = c.CreateOrder(ctx, NewOrder{
		CustomerName:  "Grace",
		CustomerEmail: "grace@example.com",
		ProductID:     3,
		Quantity:      4,
	})
	var stockErr *InsufficientInventoryError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 4, stockErr.Requested)

	item, err = c.GetInventoryItem(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	// Status updates are permissive and idempotent.
	updated, err := c.UpdateOrderStatus(ctx, order.ID, StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, updated.Status)

	again, err := c.UpdateOrderStatus(ctx, order.ID, StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, again.Status)
	assert.False(t, again.UpdatedAt.Before(updated.UpdatedAt))

	// Cancellation restores stock and removes the order entirely.
	cancelled, err := c.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, cancelled.ID)
	assert.Equal(t, 5, cancelled.Quantity)

	item, err = c.GetInventoryItem(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 8, item.Quantity)

	_, err = c.GetOrder(ctx, order.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = c.CancelOrder(ctx, order.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCreateOrderMissingProductLeavesNoTrace(t *testing.T) {
	db := getTestingDB(t)
	c, err := NewConf(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Seed(ctx))

	_, err = c.CreateOrder(ctx, NewOrder{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		ProductID:     999,
		Quantity:      1,
	})
	assert.True(t, errors.Is(err, ErrNotFound))

	orders, err := c.GetAllOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestSequentialOrdersSumAgainstSeededStock(t *testing.T) {
	db := getTestingDB(t)
	c, err := NewConf(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Seed(ctx))

	// Monitor seeds with 30 units.
	quantities := []int{4, 7, 1, 6}
	total := 0
	for _, q := range quantities {
		_, err := c.CreateOrder(ctx, NewOrder{
			CustomerName:  "Ada",
			CustomerEmail: "ada@example.com",
			ProductID:     4,
			Quantity:      q,
		})
		require.NoError(t, err)
		total += q
	}

	item, err := c.GetInventoryItem(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 30-total, item.Quantity)
}

// Concurrent placements against one product must not jointly pass the
// availability check: the row lock serializes them, so exactly as many
// orders succeed as the stock covers and the quantity never goes
// negative.
func TestConcurrentOrdersNeverOversubscribe(t *testing.T) {
	db := getTestingDB(t)
	c, err := NewConf(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Seed(ctx))

	// Keyboard seeds with 8 units; 20 goroutines each want 3, so at
	// most 2 can succeed.
	const workers = 20
	const perOrder = 3

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.CreateOrder(ctx, NewOrder{
				CustomerName:  "Ada",
				CustomerEmail: "ada@example.com",
				ProductID:     3,
				Quantity:      perOrder,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *InsufficientInventoryError
		require.ErrorAs(t, err, &stockErr)
	}
	assert.Equal(t, 2, succeeded)

	item, err := c.GetInventoryItem(ctx, 3)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, item.Quantity, 0)
	assert.Equal(t, 8-succeeded*perOrder, item.Quantity)

	orders, err := c.GetAllOrders(ctx)
	require.NoError(t, err)
	reserved := 0
	for _, o := range orders {
		reserved += o.Quantity
	}
	assert.Equal(t, 8-reserved, item.Quantity)
}

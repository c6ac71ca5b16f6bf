package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"order-inventory-service/internal/ledger"
	"order-inventory-service/internal/stores/kafka"
	"order-inventory-service/middleware"
	"order-inventory-service/pkg/ctxmanage"
	"order-inventory-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// Ledger is the set of operations the handlers need from the domain
// layer. Conf in internal/ledger implements it; tests substitute a stub.
type Ledger interface {
	Ping(ctx context.Context) error
	GetProducts(ctx context.Context) ([]ledger.Product, error)
	GetProduct(ctx context.Context, productID int) (ledger.Product, error)
	GetInventory(ctx context.Context) ([]ledger.InventoryItem, error)
	GetInventoryItem(ctx context.Context, productID int) (ledger.InventoryItem, error)
	CreateOrder(ctx context.Context, no ledger.NewOrder) (ledger.Order, error)
	GetOrder(ctx context.Context, orderID string) (ledger.Order, error)
	GetAllOrders(ctx context.Context) ([]ledger.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, newStatus ledger.OrderStatus) (ledger.Order, error)
	CancelOrder(ctx context.Context, orderID string) (ledger.Order, error)
}

type Handler struct {
	o Ledger
	k *kafka.Conf // nil when eventing is disabled
}

func NewHandler(o Ledger, k *kafka.Conf) *Handler {
	return &Handler{
		o: o,
		k: k,
	}
}

func API(endpointPrefix string, o Ledger, k *kafka.Conf) *gin.Engine {
	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	h := NewHandler(o, k)
	r.Use(middleware.Logger(), gin.Recovery())

	r.GET("/", h.Root)
	r.GET("/health", h.HealthCheck)

	v1 := r.Group(endpointPrefix)
	{
		v1.GET("/products", h.GetProducts)
		v1.GET("/products/:id", h.GetProduct)
		v1.GET("/inventory", h.GetInventory)
		v1.GET("/inventory/:id", h.GetInventoryItem)
		v1.POST("/orders", h.CreateOrder)
		v1.GET("/orders", h.GetAllOrders)
		v1.GET("/orders/:id", h.GetOrder)
		v1.PUT("/orders/:id/status", h.UpdateOrderStatus)
		v1.DELETE("/orders/:id", h.CancelOrder)
	}
	return r
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":  "Order & Inventory Management API",
		"version":  "2.0.0",
		"database": "PostgreSQL",
		"status":   "running",
	})
}

// HealthCheck reports store connectivity. A broken store yields a
// degraded payload, not an HTTP error.
func (h *Handler) HealthCheck(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	if err := h.o.Ping(c.Request.Context()); err != nil {
		slog.Error("database unreachable", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.JSON(http.StatusOK, gin.H{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

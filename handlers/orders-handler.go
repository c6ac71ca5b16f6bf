package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"order-inventory-service/internal/ledger"
	"order-inventory-service/internal/stores/kafka"
	"order-inventory-service/pkg/ctxmanage"
	"order-inventory-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	if c.Request.ContentLength > 5*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId), slog.Int64("Size Received", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Request body too large."})
		return
	}

	var newOrder ledger.NewOrder
	if err := c.ShouldBindJSON(&newOrder); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	order, err := h.o.CreateOrder(c.Request.Context(), newOrder)
	if err != nil {
		var invalidErr *ledger.InvalidInputError
		var stockErr *ledger.InsufficientInventoryError
		switch {
		case errors.As(err, &invalidErr):
			slog.Error("order validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		case errors.As(err, &stockErr):
			slog.Error("insufficient inventory", slog.String(logkey.TraceID, traceId),
				slog.Int("ProductID", stockErr.ProductID), slog.Int("Available", stockErr.Available), slog.Int("Requested", stockErr.Requested))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		case errors.Is(err, ledger.ErrNotFound):
			slog.Error("order references missing entity", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		default:
			slog.Error("error in creating order", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Order creation failed"})
		}
		return
	}

	h.publishEvent(traceId, kafka.TopicOrderPlaced, order.ID, kafka.OrderPlacedEvent{
		OrderID:   order.ID,
		ProductID: order.ProductID,
		Quantity:  order.Quantity,
		CreatedAt: order.CreatedAt,
	})

	slog.Info("order created", slog.String(logkey.TraceID, traceId),
		slog.String("OrderID", order.ID), slog.Int("ProductID", order.ProductID), slog.Int("Quantity", order.Quantity))
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderID := c.Param("id")

	order, err := h.o.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			slog.Error("order not found", slog.String(logkey.TraceID, traceId), slog.String("OrderID", orderID))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		} else {
			slog.Error("error in retrieving order", slog.String(logkey.TraceID, traceId), slog.String("OrderID", orderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch order"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetAllOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	orders, err := h.o.GetAllOrders(c.Request.Context())
	if err != nil {
		slog.Error("error in fetching orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// UpdateOrderStatus overwrites the status with the new_status query
// parameter. Unknown statuses are rejected; among known statuses any
// transition is allowed.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderID := c.Param("id")

	rawStatus := c.Query("new_status")
	newStatus, ok := ledger.ParseOrderStatus(rawStatus)
	if !ok {
		slog.Error("invalid order status", slog.String(logkey.TraceID, traceId), slog.String("Status", rawStatus))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Invalid status %q", rawStatus)})
		return
	}

	order, err := h.o.UpdateOrderStatus(c.Request.Context(), orderID, newStatus)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			slog.Error("order not found", slog.String(logkey.TraceID, traceId), slog.String("OrderID", orderID))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		} else {
			slog.Error("error in updating order status", slog.String(logkey.TraceID, traceId), slog.String("OrderID", orderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Order status update failed"})
		}
		return
	}

	h.publishEvent(traceId, kafka.TopicOrderStatusUpdated, order.ID, kafka.OrderStatusUpdatedEvent{
		OrderID:   order.ID,
		Status:    string(order.Status),
		UpdatedAt: order.UpdatedAt,
	})

	slog.Info("order status updated", slog.String(logkey.TraceID, traceId),
		slog.String("OrderID", order.ID), slog.String("Status", string(order.Status)))
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Order %s status updated to %s", order.ID, order.Status),
		"order":   order,
	})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderID := c.Param("id")

	order, err := h.o.CancelOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			slog.Error("order not found", slog.String(logkey.TraceID, traceId), slog.String("OrderID", orderID))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		} else {
			slog.Error("error in cancelling order", slog.String(logkey.TraceID, traceId), slog.String("OrderID", orderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Order cancellation failed"})
		}
		return
	}

	h.publishEvent(traceId, kafka.TopicOrderCancelled, order.ID, kafka.OrderCancelledEvent{
		OrderID:     order.ID,
		ProductID:   order.ProductID,
		Quantity:    order.Quantity,
		CancelledAt: time.Now().UTC(),
	})

	slog.Info("order cancelled", slog.String(logkey.TraceID, traceId), slog.String("OrderID", orderID))
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Order %s cancelled successfully", orderID)})
}

// publishEvent sends an order lifecycle event in the background. Eventing
// is best-effort: failures are logged and never surfaced to the client.
func (h *Handler) publishEvent(traceId, topic, key string, event any) {
	if h.k == nil {
		return
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal event", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		return
	}

	go func() {
		if err := h.k.ProduceMessage(topic, []byte(key), jsonData); err != nil {
			slog.Error("failed to produce message", slog.String(logkey.TraceID, traceId),
				slog.String("Topic", topic), slog.String(logkey.ERROR, err.Error()))
			return
		}
		slog.Info("message produced", slog.String(logkey.TraceID, traceId), slog.String("Topic", topic))
	}()
}

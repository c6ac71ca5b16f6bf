package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"order-inventory-service/internal/ledger"
	"order-inventory-service/pkg/ctxmanage"
	"order-inventory-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetInventory(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	items, err := h.o.GetInventory(c.Request.Context())
	if err != nil {
		slog.Error("error in fetching inventory", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch inventory"})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetInventoryItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		slog.Error("invalid product id", slog.String(logkey.TraceID, traceId), slog.String("ProductID", c.Param("id")))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Product id must be an integer"})
		return
	}

	item, err := h.o.GetInventoryItem(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			slog.Error("inventory not found", slog.String(logkey.TraceID, traceId), slog.Int("ProductID", productID))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		} else {
			slog.Error("error in retrieving inventory", slog.String(logkey.TraceID, traceId), slog.Int("ProductID", productID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch inventory"})
		}
		return
	}

	c.JSON(http.StatusOK, item)
}

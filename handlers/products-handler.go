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

func (h *Handler) GetProducts(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	products, err := h.o.GetProducts(c.Request.Context())
	if err != nil {
		slog.Error("error in fetching products", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		slog.Error("invalid product id", slog.String(logkey.TraceID, traceId), slog.String("ProductID", c.Param("id")))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Product id must be an integer"})
		return
	}

	product, err := h.o.GetProduct(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			slog.Error("product not found", slog.String(logkey.TraceID, traceId), slog.Int("ProductID", productID))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		} else {
			slog.Error("error in retrieving product", slog.String(logkey.TraceID, traceId), slog.Int("ProductID", productID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch product"})
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

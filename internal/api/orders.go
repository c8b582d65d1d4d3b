package api

import (
	"net/http" // HTTP status codes
	"time"     // Timestamps in responses

	"order_system/internal/domain"     // Importing domain models
	"order_system/internal/middleware" // Caller lookup
	"order_system/internal/respond"    // JSON error responses
	"order_system/internal/store"      // Order store

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// OrderResponse is the public shape of an order
type OrderResponse struct {
	ID          uint      `json:"id"`           // Order ID
	OrderNumber string    `json:"order_number"` // Unique order number
	TotalAmount string    `json:"total_amount"` // Fixed two-decimal string, e.g. "100.00"
	CreatedAt   time.Time `json:"created_at"`   // Creation time
	UpdatedAt   time.Time `json:"updated_at"`   // Last update time
}

func toOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		TotalAmount: o.TotalAmount.StringFixed(2),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

var errOrderNotFound = gin.H{"error": "order not found"}

// ListOrdersHandler returns the caller's own orders
func ListOrdersHandler(orders *store.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.CurrentAccount(c) // Set by the auth middleware
		list, err := orders.ListForOwner(c.Request.Context(), caller.ID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		resp := make([]OrderResponse, len(list))
		// Map orders to response format
		for i, o := range list {
			resp[i] = toOrderResponse(o)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// CreateOrderHandler creates an order owned by the caller.
// Any owner field in the body is ignored.
func CreateOrderHandler(orders *store.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.CurrentAccount(c)
		var req store.OrderInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err)
			return
		}
		order, err := orders.Create(c.Request.Context(), caller.ID, req)
		if err != nil {
			respond.Error(c, err)
			return
		}
		// Log successful order creation
		logrus.WithFields(logrus.Fields{
			"account_id":   caller.ID,
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
		}).Info("Order created")
		c.JSON(http.StatusCreated, toOrderResponse(*order))
	}
}

// GetOrderHandler returns one of the caller's orders; foreign orders are reported as missing
func GetOrderHandler(orders *store.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.CurrentAccount(c)
		id, ok := parseID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, errOrderNotFound)
			return
		}
		order, err := orders.Get(c.Request.Context(), caller.ID, id)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(*order))
	}
}

// UpdateOrderHandler applies a partial update to one of the caller's orders
func UpdateOrderHandler(orders *store.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.CurrentAccount(c)
		id, ok := parseID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, errOrderNotFound)
			return
		}
		var req store.OrderPatch // Only fields present in the body are set
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err)
			return
		}
		order, err := orders.Update(c.Request.Context(), caller.ID, id, req)
		if err != nil {
			respond.Error(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"account_id": caller.ID,
			"order_id":   order.ID,
		}).Info("Order updated")
		c.JSON(http.StatusOK, toOrderResponse(*order))
	}
}

// DeleteOrderHandler deletes one of the caller's orders
func DeleteOrderHandler(orders *store.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.CurrentAccount(c)
		id, ok := parseID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, errOrderNotFound)
			return
		}
		if err := orders.Delete(c.Request.Context(), caller.ID, id); err != nil {
			respond.Error(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"account_id": caller.ID,
			"order_id":   id,
		}).Info("Order deleted")
		c.Status(http.StatusNoContent)
	}
}

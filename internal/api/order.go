package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Query flag parsing

	"storefront/internal/middleware" // Caller identity
	"storefront/internal/service"    // Order service

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for status changes
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"` // Target status must be provided
}

// CreateOrderHandler places an order for the signed-in user
func CreateOrderHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateOrderInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order must contain at least one valid item"})
			return
		}
		orderID, err := orders.CreateOrder(c.Request.Context(), middleware.IdentityFrom(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "orderId": orderID})
	}
}

// UserOrdersHandler lists the caller's orders, newest first
func UserOrdersHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := orders.GetUserOrders(c.Request.Context(), middleware.IdentityFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, views)
	}
}

// GetOrderHandler returns one order to its owner or an admin
func GetOrderHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := orders.GetOrder(c.Request.Context(), c.Param("orderId"), middleware.IdentityFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// UpdateOrderStatusHandler advances an order; ?force=true bypasses the transition table (admin only)
func UpdateOrderStatusHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
			return
		}
		force, _ := strconv.ParseBool(c.DefaultQuery("force", "false")) // Anything unparsable means no override
		if err := orders.UpdateStatus(c.Request.Context(), c.Param("orderId"), req.Status, force); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "status": req.Status})
	}
}

// CancelOrderHandler cancels an unshipped order and restores its stock
func CancelOrderHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := orders.CancelOrder(c.Request.Context(), c.Param("orderId"), middleware.IdentityFrom(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully"})
	}
}

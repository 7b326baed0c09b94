package api

import (
	"net/http" // HTTP status codes

	"storefront/internal/middleware" // Caller identity
	"storefront/internal/service"    // Cart service

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for adding to the cart
type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"` // Product must be provided
	Quantity  *int   `json:"quantity"`                     // Defaults to 1
}

// Request struct for changing a cart line
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"` // New quantity, must be positive
}

// guestAck answers cart writes from guests, whose carts live on the client
func guestAck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Guest cart is kept on the client", "guest": true})
}

// GetCartHandler returns the caller's cart lines
func GetCartHandler(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lines, err := carts.GetCart(c.Request.Context(), middleware.IdentityFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, lines)
	}
}

// AddToCartHandler adds a product or merges into the existing line
func AddToCartHandler(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddToCartRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
			return
		}
		quantity := 1
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		outcome, err := carts.AddItem(c.Request.Context(), middleware.IdentityFrom(c), req.ProductID, quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		if outcome.Guest {
			guestAck(c)
			return
		}
		if outcome.Merged {
			c.JSON(http.StatusOK, gin.H{"message": "Cart item quantity updated"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart"})
	}
}

// UpdateCartItemHandler sets the quantity of one of the caller's cart lines
func UpdateCartItemHandler(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity is required"})
			return
		}
		outcome, err := carts.UpdateItem(c.Request.Context(), middleware.IdentityFrom(c), c.Param("itemId"), req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		if outcome.Guest {
			guestAck(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item updated"})
	}
}

// RemoveCartItemHandler drops one of the caller's cart lines
func RemoveCartItemHandler(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		outcome, err := carts.RemoveItem(c.Request.Context(), middleware.IdentityFrom(c), c.Param("itemId"))
		if err != nil {
			respondError(c, err)
			return
		}
		if outcome.Guest {
			guestAck(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
	}
}

// ClearCartHandler empties the caller's cart
func ClearCartHandler(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		outcome, err := carts.ClearCart(c.Request.Context(), middleware.IdentityFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		if outcome.Guest {
			guestAck(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

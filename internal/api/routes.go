package api

import (
	"context"  // Health check timeout
	"net/http" // HTTP status codes
	"time"     // Time durations

	"storefront/internal/middleware" // Auth gate
	"storefront/internal/service"    // Business services
	"storefront/internal/store"      // Record store

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// Deps holds everything the handlers need
type Deps struct {
	Store        *store.Store
	Redis        *redis.Client // Optional
	Accounts     *service.AccountService
	Catalog      *service.CatalogService
	Carts        *service.CartService
	Orders       *service.OrderService
	JWTSecret    string
	SecureCookie bool
}

// RegisterRoutes wires every endpoint onto the engine
func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.IdentityMiddleware(d.JWTSecret, d.SecureCookie)) // Resolve caller for every request

	auth := middleware.RequireAuth()
	admin := []gin.HandlerFunc{auth, middleware.AdminOnlyMiddleware(d.Accounts)}

	r.GET("/health", HealthHandler(d.Store, d.Redis))

	// Accounts
	r.POST("/register", RegisterHandler(d.Accounts, d.SecureCookie))
	r.POST("/login", LoginHandler(d.Accounts, d.SecureCookie))
	r.POST("/logout", LogoutHandler(d.SecureCookie))
	r.GET("/me", MeHandler(d.Accounts))

	// Catalog
	r.GET("/products", ListProductsHandler(d.Catalog))
	r.GET("/products/:productId", GetProductHandler(d.Catalog))
	r.GET("/products/category/:categoryId", ProductsByCategoryHandler(d.Catalog))
	r.GET("/search", SearchProductsHandler(d.Catalog))
	r.GET("/categories", ListCategoriesHandler(d.Catalog))
	r.GET("/categories/:categoryId", GetCategoryHandler(d.Catalog))

	adminRoutes := r.Group("/", admin...)
	{
		adminRoutes.POST("/products", CreateProductHandler(d.Catalog))
		adminRoutes.PUT("/products/:productId", UpdateProductHandler(d.Catalog))
		adminRoutes.DELETE("/products/:productId", DeleteProductHandler(d.Catalog))
		adminRoutes.POST("/categories", CreateCategoryHandler(d.Catalog))
		adminRoutes.PUT("/categories/:categoryId", UpdateCategoryHandler(d.Catalog))
		adminRoutes.DELETE("/categories/:categoryId", DeleteCategoryHandler(d.Catalog))
		adminRoutes.GET("/admin/all", ListAllOrdersHandler(d.Orders))
		adminRoutes.GET("/admin/stats", OrderStatsHandler(d.Orders))
		adminRoutes.GET("/admin/products/export", ExportProductsHandler(d.Catalog))
		adminRoutes.PUT("/:orderId/status", UpdateOrderStatusHandler(d.Orders))
	}

	// Cart, guests get acknowledgements only
	r.GET("/cart", GetCartHandler(d.Carts))
	r.POST("/cart/add", AddToCartHandler(d.Carts))
	r.PUT("/cart/update/:itemId", UpdateCartItemHandler(d.Carts))
	r.DELETE("/cart/remove/:itemId", RemoveCartItemHandler(d.Carts))
	r.DELETE("/cart/clear", ClearCartHandler(d.Carts))

	// Orders
	userRoutes := r.Group("/", auth)
	{
		userRoutes.POST("/order", CreateOrderHandler(d.Orders))
		userRoutes.GET("/my", UserOrdersHandler(d.Orders))
		userRoutes.GET("/:orderId", GetOrderHandler(d.Orders))
		userRoutes.DELETE("/:orderId/cancel", CancelOrderHandler(d.Orders))
	}
}

// HealthHandler reports database and cache reachability
func HealthHandler(s *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		status := gin.H{"status": "ok", "database": "ok", "cache": "disabled"}
		code := http.StatusOK
		if err := s.Ping(ctx); err != nil {
			status["status"], status["database"] = "degraded", "unreachable"
			code = http.StatusServiceUnavailable
		}
		if rdb != nil {
			status["cache"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				status["cache"] = "unreachable" // Cache is optional, reads fall back to the database
			}
		}
		c.JSON(code, status)
	}
}

package api

import (
	"net/http" // HTTP status codes

	"storefront/internal/service" // Catalog service

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for category writes
type CategoryRequest struct {
	Name string `json:"name" binding:"required"` // Category name must be provided
}

// ListProductsHandler returns every product
func ListProductsHandler(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := catalog.ListProducts(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// GetProductHandler returns one product by id
func GetProductHandler(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := catalog.GetProduct(c.Request.Context(), c.Param("productId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// ProductsByCategoryHandler returns the products of one category
func ProductsByCategoryHandler(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := catalog.ListProductsByCategory(c.Request.Context(), c.Param("categoryId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// SearchProductsHandler matches ?q= against title and description
func SearchProductsHandler(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := catalog.SearchProducts(c.Request.Context(), c.Query("q"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// CreateProductHandler adds a product (admin only)
func CreateProductHandler(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ProductInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		product, err := catalog.CreateProduct(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Product created", "productId": product.ID, "product": product})
	}
}

// UpdateProductHandler patches the supplied product fields (admin only)
func UpdateProductHandler(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ProductInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		product, err := catalog.UpdateProduct(c.Request.Context(), c.Param("productId"), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
	}
}

// DeleteProductHandler removes a product (admin only)
func DeleteProductHandler(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := catalog.DeleteProduct(c.Request.Context(), c.Param("productId")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}

// ListCategoriesHandler returns every category
func ListCategoriesHandler(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := catalog.ListCategories(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// GetCategoryHandler returns one category by id
func GetCategoryHandler(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		category, err := catalog.GetCategory(c.Request.Context(), c.Param("categoryId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// CreateCategoryHandler adds a category (admin only)
func CreateCategoryHandler(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
			return
		}
		category, err := catalog.CreateCategory(c.Request.Context(), req.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Category created", "categoryId": category.ID, "category": category})
	}
}

// UpdateCategoryHandler renames a category (admin only)
func UpdateCategoryHandler(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
			return
		}
		category, err := catalog.UpdateCategory(c.Request.Context(), c.Param("categoryId"), req.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category updated", "category": category})
	}
}

// DeleteCategoryHandler removes a category; its products become uncategorized (admin only)
func DeleteCategoryHandler(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := catalog.DeleteCategory(c.Request.Context(), c.Param("categoryId")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
	}
}

package service

import (
	"context" // Context for storage and Redis operations
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"strings" // String manipulation
	"time"    // Cache TTL

	"storefront/internal/domain" // Importing domain models
	"storefront/internal/store"  // Record store
	"storefront/internal/utils"  // Cache helpers

	"github.com/google/uuid"        // Identifier generation
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact decimal prices
	"github.com/sirupsen/logrus"    // Logging library
)

// Cache keys for catalog reads
const (
	keyCategories      = "catalog:categories"
	keyCategory        = "catalog:category:"
	keyProducts        = "catalog:products"
	keyProduct         = "catalog:product:"
	keyProductsByCat   = "catalog:products:category:"
	patternProductKeys = "catalog:product*"
	patternCatalogKeys = "catalog:*"
)

// ProductInput carries product fields; nil means "not supplied"
type ProductInput struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	CategoryID  *string          `json:"categoryId"` // Empty string detaches the product
	ImageURL    *string          `json:"imageUrl"`
}

// CatalogService manages categories and products
type CatalogService struct {
	store *store.Store  // Record store
	rdb   *redis.Client // Optional read cache
	ttl   time.Duration // Cache lifetime
}

// NewCatalogService creates a catalog service; rdb may be nil to disable caching
func NewCatalogService(s *store.Store, rdb *redis.Client, ttl time.Duration) *CatalogService {
	return &CatalogService{store: s, rdb: rdb, ttl: ttl}
}

// ListCategories returns every category
func (c *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return cached(ctx, c, keyCategories, func() ([]domain.Category, error) {
		return store.SelectAll[domain.Category](ctx, c.store, "name")
	})
}

// GetCategory returns one category or domain.ErrNotFound
func (c *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return cached(ctx, c, keyCategory+id, func() (*domain.Category, error) {
		return store.SelectOneByField[domain.Category](ctx, c.store, "id", id)
	})
}

// CreateCategory adds a category with a non-empty name
func (c *CatalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrInvalidInput)
	}
	category := &domain.Category{ID: uuid.NewString(), Name: name}
	if err := c.store.Insert(ctx, category); err != nil {
		return nil, err
	}
	c.invalidate(ctx, patternCatalogKeys)
	return category, nil
}

// UpdateCategory renames a category
func (c *CatalogService) UpdateCategory(ctx context.Context, id, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrInvalidInput)
	}
	category, err := store.SelectOneByField[domain.Category](ctx, c.store, "id", id)
	if err != nil {
		return nil, err
	}
	if _, err := c.store.Update(ctx, &domain.Category{}, map[string]any{"name": name}, store.Field{Column: "id", Value: id}); err != nil {
		return nil, err
	}
	c.invalidate(ctx, patternCatalogKeys)
	category.Name = name
	return category, nil
}

// DeleteCategory removes a category and detaches its products
func (c *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	err := c.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := store.SelectOneByField[domain.Category](ctx, tx, "id", id); err != nil {
			return err
		}
		// Detach, never cascade
		if _, err := tx.Update(ctx, &domain.Product{}, map[string]any{"category_id": nil}, store.Field{Column: "category_id", Value: id}); err != nil {
			return err
		}
		_, err := tx.Delete(ctx, &domain.Category{}, "id", id)
		return err
	})
	if err != nil {
		return err
	}
	c.invalidate(ctx, patternCatalogKeys)
	logrus.WithField("category_id", id).Info("Category deleted")
	return nil
}

// ListProducts returns every product, newest first
func (c *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return cached(ctx, c, keyProducts, func() ([]domain.Product, error) {
		return store.SelectAll[domain.Product](ctx, c.store, "created_at desc")
	})
}

// GetProduct returns one product or domain.ErrNotFound
func (c *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return cached(ctx, c, keyProduct+id, func() (*domain.Product, error) {
		return store.SelectOneByField[domain.Product](ctx, c.store, "id", id)
	})
}

// ListProductsByCategory returns the products of one category
func (c *CatalogService) ListProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	return cached(ctx, c, keyProductsByCat+categoryID, func() ([]domain.Product, error) {
		return store.SelectManyByField[domain.Product](ctx, c.store, "category_id", categoryID, "created_at desc")
	})
}

// SearchProducts matches term against titles and descriptions
func (c *CatalogService) SearchProducts(ctx context.Context, term string) ([]domain.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search query is required", domain.ErrInvalidInput)
	}
	return store.Search[domain.Product](ctx, c.store, term, "title", "description")
}

// CreateProduct adds a product; title and price are required
func (c *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" || in.Price == nil {
		return nil, fmt.Errorf("%w: missing required fields", domain.ErrInvalidInput)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	product := &domain.Product{
		ID:    uuid.NewString(),
		Title: strings.TrimSpace(*in.Title),
		Price: *in.Price,
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
	}
	if in.CategoryID != nil && *in.CategoryID != "" {
		if err := c.requireCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = in.CategoryID
	}
	if err := c.store.Insert(ctx, product); err != nil {
		return nil, err
	}
	c.InvalidateProducts(ctx)
	return product, nil
}

// UpdateProduct applies the supplied fields to a product
func (c *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := store.SelectOneByField[domain.Product](ctx, c.store, "id", id); err != nil {
		return nil, err
	}
	patch := map[string]any{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
		patch["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		patch["description"] = *in.Description
	}
	if in.Price != nil {
		patch["price"] = *in.Price
	}
	if in.Stock != nil {
		patch["stock"] = *in.Stock
	}
	if in.ImageURL != nil {
		patch["image_url"] = *in.ImageURL
	}
	if in.CategoryID != nil {
		if *in.CategoryID == "" {
			patch["category_id"] = nil
		} else {
			if err := c.requireCategory(ctx, *in.CategoryID); err != nil {
				return nil, err
			}
			patch["category_id"] = *in.CategoryID
		}
	}
	if len(patch) > 0 {
		if _, err := c.store.Update(ctx, &domain.Product{}, patch, store.Field{Column: "id", Value: id}); err != nil {
			return nil, err
		}
		c.InvalidateProducts(ctx)
	}
	return store.SelectOneByField[domain.Product](ctx, c.store, "id", id)
}

// DeleteProduct removes a product, its cart items, and its references from past orders
func (c *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	err := c.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := store.SelectOneByField[domain.Product](ctx, tx, "id", id); err != nil {
			return err
		}
		if _, err := tx.Delete(ctx, &domain.CartItem{}, "product_id", id); err != nil {
			return err
		}
		// Order history keeps the line, only the reference goes
		if _, err := tx.Update(ctx, &domain.OrderItem{}, map[string]any{"product_id": nil}, store.Field{Column: "product_id", Value: id}); err != nil {
			return err
		}
		_, err := tx.Delete(ctx, &domain.Product{}, "id", id)
		return err
	})
	if err != nil {
		return err
	}
	c.InvalidateProducts(ctx)
	logrus.WithField("product_id", id).Info("Product deleted")
	return nil
}

// InvalidateProducts drops every cached product read; called after any stock change
func (c *CatalogService) InvalidateProducts(ctx context.Context) {
	c.invalidate(ctx, patternProductKeys)
}

func (c *CatalogService) invalidate(ctx context.Context, pattern string) {
	if err := utils.DeleteCachePattern(ctx, c.rdb, pattern); err != nil {
		logrus.WithFields(logrus.Fields{"pattern": pattern, "error": err.Error()}).Warn("Cache invalidation failed")
	}
}

func (c *CatalogService) requireCategory(ctx context.Context, id string) error {
	if _, err := store.SelectOneByField[domain.Category](ctx, c.store, "id", id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: category %s", domain.ErrNotFound, id)
		}
		return err
	}
	return nil
}

func (in ProductInput) validate() error {
	if in.Price != nil {
		if err := validatePrice(*in.Price); err != nil {
			return err
		}
	}
	if in.Stock != nil && *in.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", domain.ErrInvalidInput)
	}
	return nil
}

// validatePrice accepts non-negative amounts with at most two decimal places, the scale of every money column
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", domain.ErrInvalidInput)
	}
	if !price.Equal(price.Round(2)) {
		return fmt.Errorf("%w: price %s has more than two decimal places", domain.ErrInvalidInput, price.String())
	}
	return nil
}

// cached serves key from Redis when present, otherwise loads and stores it
func cached[T any](ctx context.Context, c *CatalogService, key string, load func() (T, error)) (T, error) {
	var value T
	found, err := utils.GetCache(ctx, c.rdb, key, &value)
	if err == nil && found {
		return value, nil
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache read failed")
	}
	value, err = load()
	if err != nil {
		return value, err
	}
	if err := utils.SetCache(ctx, c.rdb, key, value, c.ttl); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache write failed")
	}
	return value, nil
}

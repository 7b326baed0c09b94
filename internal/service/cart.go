package service

import (
	"context" // Context for storage operations
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"storefront/internal/domain" // Importing domain models
	"storefront/internal/store"  // Record store

	"github.com/google/uuid"     // Identifier generation
	"github.com/sirupsen/logrus" // Logging library
)

// CartOutcome describes how a cart mutation was applied
type CartOutcome struct {
	Guest  bool `json:"guest,omitempty"` // Acknowledged only; the client keeps guest carts
	Merged bool `json:"-"`               // An existing line absorbed the added quantity
}

// CartService maintains persisted carts of authenticated users
type CartService struct {
	store *store.Store // Record store
}

// NewCartService creates a cart service
func NewCartService(s *store.Store) *CartService {
	return &CartService{store: s}
}

// GetCart returns the caller's cart lines; guests always get an empty cart and nothing is written
func (c *CartService) GetCart(ctx context.Context, who domain.Identity) ([]domain.CartLine, error) {
	userID, ok := who.UserID()
	if !ok {
		return []domain.CartLine{}, nil
	}
	cart, created, err := c.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if created {
		return []domain.CartLine{}, nil
	}
	items, err := store.SelectManyByField[domain.CartItem](ctx, c.store, "cart_id", cart.ID, "added_at")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := productsByID(ctx, c.store, ids)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.CartLine{CartItem: it, Product: products[it.ProductID]})
	}
	return lines, nil
}

// AddItem puts quantity units of a product in the caller's cart
func (c *CartService) AddItem(ctx context.Context, who domain.Identity, productID string, quantity int) (CartOutcome, error) {
	if quantity < 1 {
		return CartOutcome{}, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
	}
	if _, err := store.SelectOneByField[domain.Product](ctx, c.store, "id", productID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return CartOutcome{}, fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
		}
		return CartOutcome{}, err
	}
	userID, ok := who.UserID()
	if !ok {
		return CartOutcome{Guest: true}, nil
	}
	cart, _, err := c.ensureCart(ctx, userID)
	if err != nil {
		return CartOutcome{}, err
	}
	// Stock is only enforced when the order is placed
	merged, err := c.mergeItem(ctx, cart.ID, productID, quantity)
	if err == nil && !merged {
		err = c.store.Insert(ctx, &domain.CartItem{ID: uuid.NewString(), CartID: cart.ID, ProductID: productID, Quantity: quantity})
		if errors.Is(err, domain.ErrConflict) {
			// Lost a race with a concurrent add of the same product
			merged, err = c.mergeItem(ctx, cart.ID, productID, quantity)
		}
	}
	if err != nil {
		return CartOutcome{}, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
		"merged":     merged,
	}).Debug("Cart item added")
	return CartOutcome{Merged: merged}, nil
}

// UpdateItem sets the quantity of one of the caller's cart items
func (c *CartService) UpdateItem(ctx context.Context, who domain.Identity, itemID string, quantity int) (CartOutcome, error) {
	if quantity < 1 {
		return CartOutcome{}, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
	}
	userID, ok := who.UserID()
	if !ok {
		return CartOutcome{Guest: true}, nil
	}
	if _, err := c.ownedItem(ctx, userID, itemID); err != nil {
		return CartOutcome{}, err
	}
	_, err := c.store.Update(ctx, &domain.CartItem{}, map[string]any{"quantity": quantity}, store.Field{Column: "id", Value: itemID})
	return CartOutcome{}, err
}

// RemoveItem deletes one of the caller's cart items
func (c *CartService) RemoveItem(ctx context.Context, who domain.Identity, itemID string) (CartOutcome, error) {
	userID, ok := who.UserID()
	if !ok {
		return CartOutcome{Guest: true}, nil
	}
	if _, err := c.ownedItem(ctx, userID, itemID); err != nil {
		return CartOutcome{}, err
	}
	_, err := c.store.Delete(ctx, &domain.CartItem{}, "id", itemID)
	return CartOutcome{}, err
}

// ClearCart empties the caller's cart
func (c *CartService) ClearCart(ctx context.Context, who domain.Identity) (CartOutcome, error) {
	userID, ok := who.UserID()
	if !ok {
		return CartOutcome{Guest: true}, nil
	}
	cart, err := store.SelectOneByField[domain.Cart](ctx, c.store, "user_id", userID)
	if errors.Is(err, domain.ErrNotFound) {
		return CartOutcome{}, nil // Nothing to clear
	}
	if err != nil {
		return CartOutcome{}, err
	}
	_, err = c.store.Delete(ctx, &domain.CartItem{}, "cart_id", cart.ID)
	return CartOutcome{}, err
}

// ensureCart returns the user's cart, creating it on first use
func (c *CartService) ensureCart(ctx context.Context, userID string) (*domain.Cart, bool, error) {
	cart, err := store.SelectOneByField[domain.Cart](ctx, c.store, "user_id", userID)
	if err == nil {
		return cart, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}
	cart = &domain.Cart{ID: uuid.NewString(), UserID: userID}
	if err := c.store.Insert(ctx, cart); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Created concurrently by another request
			cart, err = store.SelectOneByField[domain.Cart](ctx, c.store, "user_id", userID)
			return cart, false, err
		}
		return nil, false, err
	}
	return cart, true, nil
}

// mergeItem adds quantity to an existing line for the product, reporting whether one existed
func (c *CartService) mergeItem(ctx context.Context, cartID, productID string, quantity int) (bool, error) {
	item, err := store.SelectOneWhere[domain.CartItem](ctx, c.store,
		store.Field{Column: "cart_id", Value: cartID},
		store.Field{Column: "product_id", Value: productID},
	)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_, err = c.store.Increment(ctx, &domain.CartItem{}, "quantity", quantity, store.Field{Column: "id", Value: item.ID})
	return true, err
}

// ownedItem loads a cart item and checks it sits in the user's cart
func (c *CartService) ownedItem(ctx context.Context, userID, itemID string) (*domain.CartItem, error) {
	item, err := store.SelectOneByField[domain.CartItem](ctx, c.store, "id", itemID)
	if err != nil {
		return nil, err
	}
	cart, err := store.SelectOneByField[domain.Cart](ctx, c.store, "user_id", userID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && cart.ID != item.CartID) {
		return nil, fmt.Errorf("%w: cart item belongs to another cart", domain.ErrForbidden)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// productsByID loads products keyed by id; ids with no product are absent from the map
func productsByID(ctx context.Context, s *store.Store, ids []string) (map[string]*domain.Product, error) {
	products, err := store.SelectManyIn[domain.Product](ctx, s, "id", ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return byID, nil
}

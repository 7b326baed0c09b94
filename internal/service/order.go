package service

import (
	"context" // Context for storage operations
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"time"    // Timestamps for logs

	"storefront/internal/domain" // Importing domain models
	"storefront/internal/store"  // Record store

	"github.com/google/uuid"        // Identifier generation
	"github.com/shopspring/decimal" // Exact decimal totals
	"github.com/sirupsen/logrus"    // Logging library
)

// OrderLineInput is one requested line of a new order
type OrderLineInput struct {
	ProductID string           `json:"productId" binding:"required"`      // Product to buy
	Quantity  int              `json:"quantity" binding:"required,gte=1"` // Units requested
	Price     *decimal.Decimal `json:"price"`                             // Unit price seen by the client; live price when absent
}

// CreateOrderInput is the checkout payload
type CreateOrderInput struct {
	Items           []OrderLineInput       `json:"items" binding:"required,min=1,dive"` // Requested lines
	TotalAmount     *decimal.Decimal       `json:"totalAmount"`                         // Client-side total, informational
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`                     // Delivery address
}

// OrderService places, reads, advances and cancels orders
type OrderService struct {
	store   *store.Store    // Record store
	catalog *CatalogService // Product cache to invalidate on stock changes, may be nil
}

// NewOrderService creates an order service
func NewOrderService(s *store.Store, catalog *CatalogService) *OrderService {
	return &OrderService{store: s, catalog: catalog}
}

// CreateOrder validates stock, then persists the order, its items and the stock decrements in one transaction.
// Either every write lands or none does.
func (o *OrderService) CreateOrder(ctx context.Context, who domain.Identity, in CreateOrderInput) (string, error) {
	userID, ok := who.UserID()
	if !ok {
		return "", domain.ErrUnauthorized
	}
	if err := validateLines(in.Items); err != nil {
		return "", err
	}
	order := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		ShippingAddress: in.ShippingAddress,
	}
	err := o.store.Transaction(ctx, func(tx *store.Store) error {
		items, total, err := priceLines(ctx, tx, in.Items)
		if err != nil {
			return err
		}
		order.Total = total
		if err := tx.Insert(ctx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Insert(ctx, &items[i]); err != nil {
				return err
			}
			// Conditional decrement; a concurrent order may have taken the stock since validation
			n, err := tx.Decrement(ctx, &domain.Product{}, "stock", items[i].Quantity, store.Field{Column: "id", Value: *items[i].ProductID})
			if err != nil {
				return err
			}
			if n == 0 {
				return stockShortfall(ctx, tx, *items[i].ProductID, items[i].Quantity)
			}
		}
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"lines":   len(in.Items),
			"error":   err.Error(),
		}).Warn("Order creation failed")
		return "", err
	}
	if in.TotalAmount != nil && !in.TotalAmount.Equal(order.Total) {
		logrus.WithFields(logrus.Fields{
			"order_id":     order.ID,
			"client_total": in.TotalAmount.String(),
			"stored_total": order.Total.String(),
		}).Warn("Client total differs from computed total")
	}
	o.invalidateProducts(ctx)
	logrus.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"user_id":   userID,
		"total":     order.Total.String(),
		"lines":     len(in.Items),
		"timestamp": time.Now().Format(time.RFC3339),
	}).Info("Order created")
	return order.ID, nil
}

// GetUserOrders lists the caller's orders, newest first
func (o *OrderService) GetUserOrders(ctx context.Context, who domain.Identity) ([]domain.OrderView, error) {
	userID, ok := who.UserID()
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	orders, err := store.SelectManyByField[domain.Order](ctx, o.store, "user_id", userID, "created_at desc")
	if err != nil {
		return nil, err
	}
	return o.enrich(ctx, orders, false)
}

// GetOrder returns one order to its owner or an admin
func (o *OrderService) GetOrder(ctx context.Context, orderID string, who domain.Identity) (*domain.OrderView, error) {
	if who.IsGuest() {
		return nil, domain.ErrUnauthorized
	}
	order, err := o.loadOrder(ctx, o.store, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.authorize(ctx, o.store, who, order.UserID); err != nil {
		return nil, err
	}
	views, err := o.enrich(ctx, []domain.Order{*order}, true)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListAllOrders returns every order with owner contact details, newest first
func (o *OrderService) ListAllOrders(ctx context.Context) ([]domain.OrderView, error) {
	orders, err := store.SelectAll[domain.Order](ctx, o.store, "created_at desc")
	if err != nil {
		return nil, err
	}
	return o.enrich(ctx, orders, true)
}

// UpdateStatus moves an order along the transition table.
// force lets an admin overwrite the status with any non-cancelled state.
func (o *OrderService) UpdateStatus(ctx context.Context, orderID, status string, force bool) error {
	next, ok := domain.ParseOrderStatus(status)
	if !ok {
		return fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidInput, status)
	}
	if next == domain.OrderStatusCancelled {
		return fmt.Errorf("%w: use cancellation to cancel an order", domain.ErrConflict)
	}
	order, err := o.loadOrder(ctx, o.store, orderID)
	if err != nil {
		return err
	}
	if order.Status == next {
		return nil
	}
	if !force && !order.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot move order from %s to %s", domain.ErrConflict, order.Status, next)
	}
	// Only applies while the order still has the status the transition was checked against
	n, err := o.store.Update(ctx, &domain.Order{}, map[string]any{"status": next},
		store.Field{Column: "id", Value: orderID},
		store.Field{Column: "status", Value: order.Status},
	)
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := o.loadOrder(ctx, o.store, orderID); err != nil {
			return err
		}
		return fmt.Errorf("%w: order %s changed status concurrently", domain.ErrConflict, orderID)
	}
	logrus.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     order.Status,
		"to":       next,
		"forced":   force,
	}).Info("Order status updated")
	return nil
}

// CancelOrder restores stock for every line and deletes the order, all in one transaction.
// The order is only deleted while its status still allows cancellation.
func (o *OrderService) CancelOrder(ctx context.Context, orderID string, who domain.Identity) error {
	if who.IsGuest() {
		return domain.ErrUnauthorized
	}
	var restored int
	err := o.store.Transaction(ctx, func(tx *store.Store) error {
		order, err := o.loadOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if err := o.authorize(ctx, tx, who, order.UserID); err != nil {
			return err
		}
		if !order.Status.Cancellable() {
			return notCancellable(order.Status)
		}
		// Read the lines before the order goes; MySQL cascades the delete to them
		items, err := store.SelectManyByField[domain.OrderItem](ctx, tx, "order_id", orderID)
		if err != nil {
			return err
		}
		n, err := tx.DeleteWhere(ctx, &domain.Order{},
			store.Field{Column: "id", Value: orderID},
			store.Field{Column: "status", Value: domain.CancellableStatuses()},
		)
		if err != nil {
			return err
		}
		if n == 0 {
			// Cancelled or advanced since it was read
			current, err := o.loadOrder(ctx, tx, orderID)
			if err != nil {
				return err
			}
			return notCancellable(current.Status)
		}
		for _, it := range items {
			if it.ProductID == nil {
				continue // Product deleted since; nothing to restore
			}
			if _, err := tx.Increment(ctx, &domain.Product{}, "stock", it.Quantity, store.Field{Column: "id", Value: *it.ProductID}); err != nil {
				return err
			}
			restored += it.Quantity
		}
		_, err = tx.Delete(ctx, &domain.OrderItem{}, "order_id", orderID)
		return err
	})
	if err != nil {
		return err
	}
	o.invalidateProducts(ctx)
	logrus.WithFields(logrus.Fields{
		"order_id":       orderID,
		"restored_units": restored,
		"timestamp":      time.Now().Format(time.RFC3339),
	}).Info("Order cancelled")
	return nil
}

func notCancellable(status domain.OrderStatus) error {
	return fmt.Errorf("%w: order cannot be cancelled. Current status: %s", domain.ErrConflict, status)
}

// GetOrderStats counts orders by status and sums delivered revenue
func (o *OrderService) GetOrderStats(ctx context.Context) (*domain.OrderStats, error) {
	orders, err := store.SelectAll[domain.Order](ctx, o.store)
	if err != nil {
		return nil, err
	}
	stats := &domain.OrderStats{TotalOrders: len(orders), TotalRevenue: decimal.Zero}
	for _, ord := range orders {
		switch ord.Status {
		case domain.OrderStatusPending:
			stats.PendingOrders++
		case domain.OrderStatusProcessing:
			stats.ProcessingOrders++
		case domain.OrderStatusShipped:
			stats.ShippedOrders++
		case domain.OrderStatusDelivered:
			stats.DeliveredOrders++
			stats.TotalRevenue = stats.TotalRevenue.Add(ord.Total)
		}
	}
	return stats, nil
}

func (o *OrderService) loadOrder(ctx context.Context, s *store.Store, orderID string) (*domain.Order, error) {
	order, err := store.SelectOneByField[domain.Order](ctx, s, "id", orderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
	}
	return order, err
}

// authorize lets the owner through, or a caller whose stored role is admin.
// The token's role claim is not trusted, matching the admin route gate.
func (o *OrderService) authorize(ctx context.Context, s *store.Store, who domain.Identity, ownerID string) error {
	userID, ok := who.UserID()
	if !ok {
		return domain.ErrUnauthorized
	}
	if userID == ownerID {
		return nil
	}
	caller, err := store.SelectOneByField[domain.User](ctx, s, "id", userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrForbidden
	}
	if err != nil {
		return err
	}
	if caller.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func (o *OrderService) invalidateProducts(ctx context.Context) {
	if o.catalog != nil {
		o.catalog.InvalidateProducts(ctx)
	}
}

// enrich attaches items, their products, the parsed address and optionally the owner's contact
func (o *OrderService) enrich(ctx context.Context, orders []domain.Order, withUser bool) ([]domain.OrderView, error) {
	views := make([]domain.OrderView, 0, len(orders))
	if len(orders) == 0 {
		return views, nil
	}
	orderIDs := make([]string, 0, len(orders))
	userIDs := make([]string, 0, len(orders))
	for _, ord := range orders {
		orderIDs = append(orderIDs, ord.ID)
		userIDs = append(userIDs, ord.UserID)
	}
	items, err := store.SelectManyIn[domain.OrderItem](ctx, o.store, "order_id", orderIDs)
	if err != nil {
		return nil, err
	}
	productIDs := make([]string, 0, len(items))
	for _, it := range items {
		if it.ProductID != nil {
			productIDs = append(productIDs, *it.ProductID)
		}
	}
	products, err := productsByID(ctx, o.store, productIDs)
	if err != nil {
		return nil, err
	}
	linesByOrder := make(map[string][]domain.OrderLine, len(orders))
	for _, it := range items {
		line := domain.OrderLine{OrderItem: it}
		if it.ProductID != nil {
			line.Product = products[*it.ProductID]
		}
		linesByOrder[it.OrderID] = append(linesByOrder[it.OrderID], line)
	}
	contacts := map[string]*domain.Contact{}
	if withUser {
		users, err := store.SelectManyIn[domain.User](ctx, o.store, "id", userIDs)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			contact := u.Contact()
			contacts[u.ID] = &contact
		}
	}
	for _, ord := range orders {
		address := ord.ShippingAddress
		lines := linesByOrder[ord.ID]
		if lines == nil {
			lines = []domain.OrderLine{}
		}
		views = append(views, domain.OrderView{
			Order:           ord,
			Items:           lines,
			ShippingAddress: &address,
			User:            contacts[ord.UserID],
		})
	}
	return views, nil
}

func validateLines(lines []OrderLineInput) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: order has no items", domain.ErrInvalidInput)
	}
	for _, l := range lines {
		if l.ProductID == "" {
			return fmt.Errorf("%w: product id is required", domain.ErrInvalidInput)
		}
		if l.Quantity < 1 {
			return fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
		}
		if l.Price != nil {
			if err := validatePrice(*l.Price); err != nil {
				return err
			}
		}
	}
	return nil
}

// priceLines checks every line against current stock before anything is written and builds the order items
func priceLines(ctx context.Context, tx *store.Store, lines []OrderLineInput) ([]domain.OrderItem, decimal.Decimal, error) {
	total := decimal.Zero
	requested := map[string]int{} // Units per product across duplicate lines
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		product, err := store.SelectOneByField[domain.Product](ctx, tx, "id", l.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, total, fmt.Errorf("%w: product %s", domain.ErrNotFound, l.ProductID)
		}
		if err != nil {
			return nil, total, err
		}
		requested[product.ID] += l.Quantity
		if requested[product.ID] > product.Stock {
			return nil, total, &domain.InsufficientStockError{
				ProductID: product.ID,
				Title:     product.Title,
				Requested: requested[product.ID],
				Available: product.Stock,
			}
		}
		price := product.Price
		if l.Price != nil {
			price = *l.Price // Snapshot what the customer saw
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		productID := product.ID
		items = append(items, domain.OrderItem{
			ID:        uuid.NewString(),
			ProductID: &productID,
			Quantity:  l.Quantity,
			Price:     price,
		})
	}
	return items, total, nil
}

// stockShortfall reports a failed conditional decrement with the stock currently available
func stockShortfall(ctx context.Context, tx *store.Store, productID string, requested int) error {
	product, err := store.SelectOneByField[domain.Product](ctx, tx, "id", productID)
	if err != nil {
		return err
	}
	return &domain.InsufficientStockError{
		ProductID: product.ID,
		Title:     product.Title,
		Requested: requested,
		Available: product.Stock,
	}
}

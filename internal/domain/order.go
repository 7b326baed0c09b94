package domain

import (
	"time" // Time for timestamps

	"github.com/shopspring/decimal" // Exact decimal totals
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // Placed, awaiting processing
	OrderStatusProcessing OrderStatus = "processing" // Being prepared
	OrderStatusShipped    OrderStatus = "shipped"    // Handed to the carrier
	OrderStatusDelivered  OrderStatus = "delivered"  // Received by the customer
	OrderStatusCancelled  OrderStatus = "cancelled"  // Terminal; cancelled orders are deleted
)

// orderTransitions lists the forward moves an order may make
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// orderStatuses is every known status in lifecycle order
var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus maps a raw string to a known status
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range orderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// CanTransitionTo reports whether the transition table allows moving to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in this status may still be cancelled
func (s OrderStatus) Cancellable() bool {
	return s.CanTransitionTo(OrderStatusCancelled)
}

// CancellableStatuses returns the raw statuses an order may be cancelled from
func CancellableStatuses() []string {
	var out []string
	for _, st := range orderStatuses {
		if st.Cancellable() {
			out = append(out, string(st))
		}
	}
	return out
}

// ShippingAddress is stored as JSON text on the order row
type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
}

// Order Model
type Order struct {
	ID              string          `gorm:"primaryKey;type:char(36)" json:"orderId"`                       // Primary key (UUID)
	UserID          string          `gorm:"type:char(36);not null;index" json:"userId"`                    // Owner
	User            *User           `gorm:"constraint:OnDelete:CASCADE;" json:"-"`                         // Owner relation
	Total           decimal.Decimal `gorm:"type:decimal(10,2)" json:"total"`                               // Order total
	Status          OrderStatus     `gorm:"type:varchar(50);not null;default:pending;index" json:"status"` // Lifecycle state
	ShippingAddress ShippingAddress `gorm:"column:shipping_address;type:text;serializer:json" json:"-"`    // Serialized address
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"createdAt"`                               // Placement time
}

// OrderItem Model; Price is the unit price snapshotted at purchase time
type OrderItem struct {
	ID        string          `gorm:"primaryKey;type:char(36)" json:"orderItemId"` // Primary key (UUID)
	OrderID   string          `gorm:"type:char(36);not null;index" json:"orderId"` // Parent order
	Order     *Order          `gorm:"constraint:OnDelete:CASCADE;" json:"-"`       // Parent relation
	ProductID *string         `gorm:"type:char(36);index" json:"productId"`        // Nulled when the product is deleted
	Product   *Product        `gorm:"constraint:OnDelete:SET NULL;" json:"-"`      // Product relation
	Quantity  int             `gorm:"not null" json:"quantity"`                    // Units purchased
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`    // Snapshot unit price
}

// OrderLine is an order item with its product, nil when the product is gone
type OrderLine struct {
	OrderItem
	Product *Product `json:"product"`
}

// OrderView is an order enriched for display
type OrderView struct {
	Order
	Items           []OrderLine      `json:"items"`
	ShippingAddress *ShippingAddress `json:"shippingAddress"`
	User            *Contact         `json:"user,omitempty"`
}

// OrderStats aggregates the order table for the admin dashboard
type OrderStats struct {
	TotalOrders      int             `json:"totalOrders"`
	PendingOrders    int             `json:"pendingOrders"`
	ProcessingOrders int             `json:"processingOrders"`
	ShippedOrders    int             `json:"shippedOrders"`
	DeliveredOrders  int             `json:"deliveredOrders"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
}

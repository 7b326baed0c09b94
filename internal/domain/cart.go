package domain

import "time"

// Cart Model, one per authenticated user
type Cart struct {
	ID     string `gorm:"primaryKey;type:char(36)" json:"cartId"`
	UserID string `gorm:"type:char(36);uniqueIndex;not null" json:"userId"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

// CartItem Model, unique per (cart, product)
type CartItem struct {
	ID        string    `gorm:"primaryKey;type:char(36)" json:"cartItemId"`
	CartID    string    `gorm:"type:char(36);not null;uniqueIndex:idx_cart_product" json:"cartId"`
	Cart      *Cart     `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	ProductID string    `gorm:"type:char(36);not null;uniqueIndex:idx_cart_product" json:"productId"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	AddedAt   time.Time `gorm:"autoCreateTime" json:"addedAt"`
}

// CartLine is a cart item with the product it points at, nil when the product is gone
type CartLine struct {
	CartItem
	Product *Product `json:"product"`
}

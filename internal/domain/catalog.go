package domain

import (
	"time" // Time for timestamps

	"github.com/shopspring/decimal" // Exact decimal prices
)

// Category Model
type Category struct {
	ID        string    `gorm:"primaryKey;type:char(36)" json:"categoryId"` // Primary key (UUID)
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`     // Category name
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`            // Creation time
}

// Product Model
type Product struct {
	ID          string          `gorm:"primaryKey;type:char(36)" json:"productId"`               // Primary key (UUID)
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`                 // Product title
	Description string          `gorm:"type:text" json:"description"`                            // Long description
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`                // Current unit price
	Stock       int             `gorm:"not null;default:0" json:"stock"`                         // Sellable units
	CategoryID  *string         `gorm:"type:char(36);index" json:"categoryId"`                   // Nullable category reference
	Category    *Category       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"` // Detached when the category goes
	ImageURL    string          `gorm:"column:image_url;type:varchar(255)" json:"imageUrl"`      // Image location
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"createdAt"`                         // Creation time
}

package domain

import "time" // Time for timestamps

// Role is the access level of a user
type Role string

const (
	RoleAdmin Role = "admin" // Back-office access
	RoleUser  Role = "user"  // Regular customer
)

// User Model
type User struct {
	ID        string    `gorm:"primaryKey;type:char(36)" json:"userId"`              // Primary key (UUID)
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`              // Display name
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"` // Unique login email
	Phone     string    `gorm:"type:varchar(50)" json:"phone"`                       // Contact phone
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`                 // Hashed password, never serialized
	Role      Role      `gorm:"type:varchar(20);not null;default:user" json:"role"`  // Role: user or admin
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`                     // Registration time
}

// Contact is the subset of a user shown next to an order
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Contact returns the user's contact details
func (u User) Contact() Contact {
	return Contact{Name: u.Name, Email: u.Email, Phone: u.Phone}
}

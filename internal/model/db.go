package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:128;not null"`
	Email        string `gorm:"size:128;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:128;not null"`
	Role         string `gorm:"size:16;index;not null"` // user, admin
	CreatedAt    time.Time
}

type Product struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:128;not null"`
	UnitPrice int64  `gorm:"not null"` // minor currency units
	Stock     int64  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Order rows are append-only: created once by checkout, never updated.
type Order struct {
	ID        uint   `gorm:"primaryKey"`
	Reference string `gorm:"size:64;uniqueIndex;not null"`
	// FK → users.id
	UserID    uint  `gorm:"index;not null"`
	Total     int64 `gorm:"not null"` // sum of quantity * unit_price over lines
	CreatedAt time.Time
}

type OrderLine struct {
	ID uint `gorm:"primaryKey"`
	// FK → orders.id
	OrderID uint `gorm:"index;not null"`
	// FK → products.id
	ProductID uint  `gorm:"index;not null"`
	Quantity  int64 `gorm:"not null"`
	// unit price at time of sale, not a live reference to the product
	UnitPrice int64 `gorm:"not null"`
	CreatedAt time.Time
}

// ProductSalesSummary is the precomputed (OLAP) side of the sales report,
// rebuilt as a whole by the refresh operation. RefreshedAt is authoritative
// for staleness.
type ProductSalesSummary struct {
	ProductID   uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:128;not null"`
	Units       int64  `gorm:"not null"`
	Revenue     int64  `gorm:"not null"`
	RefreshedAt time.Time
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item listed by a user.
// OwnerID is set once at creation and never reassigned.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OwnerID     uint            `gorm:"index;not null" json:"owner_id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string          `gorm:"not null" json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) TableName() string {
	return "products"
}

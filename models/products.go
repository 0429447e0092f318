package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog.
// It always belongs to exactly one category and its price is never negative.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text;not null;default:''"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;check:chk_products_price_non_negative,price >= 0"`
	CategoryID  uint            `gorm:"not null;index"`
	Category    Category        `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Image       *string         `gorm:"type:varchar(255)"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

func (p *Product) TableName() string {
	return "products"
}

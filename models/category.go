package models

import "time"

// Category represents a product category.
// Names are unique across the catalog; deleting a category deletes its products.
type Category struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (c *Category) TableName() string {
	return "categories"
}

// CategoryWithCount is a category annotated with the live number of products it owns.
type CategoryWithCount struct {
	Category
	ProductCount int64
}

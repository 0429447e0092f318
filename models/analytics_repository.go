package models

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategoryAggregate holds the raw price aggregates of one category. Sum, Min and
// Max are invalid when the category has no products.
type CategoryAggregate struct {
	CategoryID   uint
	Name         string
	ProductCount int64
	TotalValue   decimal.NullDecimal
	MinPrice     decimal.NullDecimal
	MaxPrice     decimal.NullDecimal
}

type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{
		db: db,
	}
}

// GetCategoryAggregates reads count, sum, min and max of product prices for every
// category in a single grouped query, so all groups come from one snapshot.
func (r *AnalyticsRepository) GetCategoryAggregates(ctx context.Context) ([]CategoryAggregate, error) {
	var rows []CategoryAggregate

	err := r.db.WithContext(ctx).
		Table("categories").
		Select(`categories.id AS category_id,
			categories.name AS name,
			COUNT(products.id) AS product_count,
			SUM(products.price) AS total_value,
			MIN(products.price) AS min_price,
			MAX(products.price) AS max_price`).
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Group("categories.id, categories.name").
		Order("categories.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate product prices: %w", err)
	}

	return rows, nil
}

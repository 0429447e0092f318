// Package seed fills an empty catalog with demo data. Running it again
// creates nothing new: rows are looked up by name first.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mytheresa/go-catalog-analytics/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type product struct {
	name        string
	price       string
	category    string
	description string
}

var categoryNames = []string{"Electronics", "Clothing", "Books", "Sports", "Home & Garden"}

var products = []product{
	{"Samsung Smartphone", "29999.99", "Electronics", "Modern smartphone with a great camera"},
	{"HP Laptop", "54999.50", "Electronics", "Powerful laptop for work and games"},
	{"Cotton T-shirt", "1499.99", "Clothing", "Comfortable t-shirt made of natural cotton"},
	{"Jeans", "3999.00", "Clothing", "Stylish classic cut jeans"},
	{"Python for Beginners", "1299.00", "Books", "The best book for learning Python"},
	{"War and Peace", "899.00", "Books", "Classic of Russian literature"},
	{"Football", "2499.00", "Sports", "Professional football"},
	{"Dumbbells 5kg", "1999.00", "Sports", "Dumbbell set for home workouts"},
	{"Flower Pot", "499.00", "Home & Garden", "Ceramic flower pot"},
	{"Tool Set", "3599.00", "Home & Garden", "Essential tools for the home"},
}

// Result counts the rows created by one run.
type Result struct {
	CategoriesCreated int
	ProductsCreated   int
}

// Run creates the demo categories and products that are missing.
func Run(ctx context.Context, db *gorm.DB, logger *slog.Logger) (Result, error) {
	var result Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make(map[string]uint, len(categoryNames))
		for _, name := range categoryNames {
			var category models.Category
			found, err := findByName(tx, &category, name)
			if err != nil {
				return fmt.Errorf("seed category %q: %w", name, err)
			}
			if !found {
				category = models.Category{Name: name}
				if err := tx.Create(&category).Error; err != nil {
					return fmt.Errorf("seed category %q: %w", name, err)
				}
				result.CategoriesCreated++
				logger.InfoContext(ctx, "category created", "name", name)
			}
			ids[name] = category.ID
		}

		for _, p := range products {
			var row models.Product
			found, err := findByName(tx, &row, p.name)
			if err != nil {
				return fmt.Errorf("seed product %q: %w", p.name, err)
			}
			if found {
				logger.DebugContext(ctx, "product already exists", "name", p.name)
				continue
			}

			row = models.Product{
				Name:        p.name,
				Description: p.description,
				Price:       decimal.RequireFromString(p.price),
				CategoryID:  ids[p.category],
			}
			if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
				return fmt.Errorf("seed product %q: %w", p.name, err)
			}
			result.ProductsCreated++
			logger.InfoContext(ctx, "product created", "name", p.name, "price", p.price)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func findByName(tx *gorm.DB, dest any, name string) (bool, error) {
	res := tx.Where("name = ?", name).Limit(1).Find(dest)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

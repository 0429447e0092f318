package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductsRepository struct {
	db *gorm.DB
}

// ProductFilters is the validated form of the product listing parameters.
// Nil fields impose no constraint.
type ProductFilters struct {
	CategoryID *uint
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       ProductSort
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

// productOrder turns a whitelisted sort key into ORDER BY columns. Ties are broken
// by id in the same direction, so "-price" is exactly the reverse of "price".
func productOrder(sort ProductSort) []clause.OrderByColumn {
	if !sort.Valid() {
		sort = DefaultProductSort
	}
	desc := sort.Desc()
	return []clause.OrderByColumn{
		{Column: clause.Column{Table: "products", Name: sort.Field()}, Desc: desc},
		{Column: clause.Column{Table: "products", Name: "id"}, Desc: desc},
	}
}

func (r *ProductsRepository) GetFilteredProducts(ctx context.Context, offset, limit int, filters ProductFilters) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := r.db.WithContext(ctx).Model(&Product{}).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Preload("Category")

	// Filter
	if filters.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filters.CategoryID)
	}
	if filters.MinPrice != nil {
		query = query.Where("products.price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filters.MaxPrice)
	}

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	for _, col := range productOrder(filters.Sort) {
		query = query.Order(col)
	}

	// Apply pagination
	if err := query.Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

// GetByCategory returns every product of one category in the default order.
func (r *ProductsRepository) GetByCategory(ctx context.Context, categoryID uint) ([]Product, error) {
	var products []Product
	query := r.db.WithContext(ctx).
		Preload("Category").
		Where("products.category_id = ?", categoryID)
	for _, col := range productOrder(DefaultProductSort) {
		query = query.Order(col)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products of category %d: %w", categoryID, err)
	}
	return products, nil
}

func (r *ProductsRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

// CreateProduct inserts a product bound to an existing category and reloads it
// with its category.
func (r *ProductsRepository) CreateProduct(ctx context.Context, product *Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := categoryMustExist(tx, product.CategoryID); err != nil {
			return err
		}
		product.ID = 0
		if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
			return err
		}
		return tx.Preload("Category").First(product, product.ID).Error
	})
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return err
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// UpdateProduct overwrites every mutable field of an existing product. The
// creation timestamp is kept from the stored row.
func (r *ProductsRepository) UpdateProduct(ctx context.Context, product *Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Product
		if err := tx.First(&existing, product.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if err := categoryMustExist(tx, product.CategoryID); err != nil {
			return err
		}

		existing.Name = product.Name
		existing.Description = product.Description
		existing.Price = product.Price
		existing.CategoryID = product.CategoryID
		existing.Image = product.Image
		if err := tx.Omit(clause.Associations).Save(&existing).Error; err != nil {
			return err
		}
		return tx.Preload("Category").First(product, product.ID).Error
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrCategoryNotFound) {
			return err
		}
		return fmt.Errorf("update product %d: %w", product.ID, err)
	}
	return nil
}

func (r *ProductsRepository) DeleteProduct(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func categoryMustExist(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

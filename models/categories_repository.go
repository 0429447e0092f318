package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{
		db: db,
	}
}

// categoryOrder turns a whitelisted sort key into ORDER BY columns.
// product_count ties fall back to the name, created_at ties to the id.
func categoryOrder(sort CategorySort) []clause.OrderByColumn {
	if !sort.Valid() {
		sort = DefaultCategorySort
	}
	desc := sort.Desc()
	switch sort.Field() {
	case "product_count":
		return []clause.OrderByColumn{
			{Column: clause.Column{Name: "product_count"}, Desc: desc},
			{Column: clause.Column{Table: "categories", Name: "name"}},
		}
	case "created_at":
		return []clause.OrderByColumn{
			{Column: clause.Column{Table: "categories", Name: "created_at"}, Desc: desc},
			{Column: clause.Column{Table: "categories", Name: "id"}, Desc: desc},
		}
	default:
		return []clause.OrderByColumn{
			{Column: clause.Column{Table: "categories", Name: "name"}, Desc: desc},
		}
	}
}

// GetAllCategories returns every category ordered by name.
func (r *CategoriesRepository) GetAllCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// GetCategoriesWithCounts annotates every category with its live product count
// and orders by the requested key.
func (r *CategoriesRepository) GetCategoriesWithCounts(ctx context.Context, sort CategorySort) ([]CategoryWithCount, error) {
	var rows []CategoryWithCount

	query := r.db.WithContext(ctx).Model(&Category{}).
		Select("categories.*, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Group("categories.id")
	for _, col := range categoryOrder(sort) {
		query = query.Order(col)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list categories with counts: %w", err)
	}
	return rows, nil
}

func (r *CategoriesRepository) GetByID(ctx context.Context, id uint) (*Category, error) {
	var category Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// Exists reports whether a category with the given id is stored.
func (r *CategoriesRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("lookup category %d: %w", id, err)
	}
	return count > 0, nil
}

// Count returns the number of stored categories.
func (r *CategoriesRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Category{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return count, nil
}

// CreateCategory stores a new category. A name that is already taken yields
// ErrDuplicateCategoryName, whether caught by the pre-check or by the unique index
// when two writers race.
func (r *CategoriesRepository) CreateCategory(ctx context.Context, category *Category) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := nameMustBeFree(tx, category.Name, 0); err != nil {
			return err
		}
		category.ID = 0
		return tx.Create(category).Error
	})
	return translateCategoryWriteError(err, "create category")
}

// UpdateCategory renames an existing category.
func (r *CategoriesRepository) UpdateCategory(ctx context.Context, category *Category) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Category
		if err := tx.First(&existing, category.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
		if err := nameMustBeFree(tx, category.Name, category.ID); err != nil {
			return err
		}

		existing.Name = category.Name
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*category = existing
		return nil
	})
	return translateCategoryWriteError(err, "update category")
}

// DeleteCategory removes a category and every product it owns in one
// transaction. It returns the number of products removed.
func (r *CategoriesRepository) DeleteCategory(ctx context.Context, id uint) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := categoryMustExist(tx, id); err != nil {
			return err
		}

		res := tx.Where("category_id = ?", id).Delete(&Product{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected

		return tx.Delete(&Category{}, id).Error
	})
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("delete category %d: %w", id, err)
	}
	return removed, nil
}

func nameMustBeFree(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	query := tx.Model(&Category{}).Where("name = ?", name)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateCategoryName
	}
	return nil
}

func translateCategoryWriteError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrCategoryNotFound), errors.Is(err, ErrDuplicateCategoryName):
		return err
	case isUniqueViolation(err):
		return ErrDuplicateCategoryName
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

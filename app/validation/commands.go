package validation

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductInput is the raw create/update product payload.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	CategoryID  json.RawMessage `json:"category_id"`
	Image       *string         `json:"image"`
}

// ProductCommand is a product payload that passed validation.
type ProductCommand struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"-" validate:"-"`
	CategoryID  uint            `json:"category_id" validate:"-"`
	Image       *string         `json:"image" validate:"omitempty,max=255"`
}

// CategoryInput is the raw create/update category payload.
type CategoryInput struct {
	Name string `json:"name"`
}

// CategoryCommand is a category payload that passed validation.
type CategoryCommand struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ValidateProduct trims and checks a product payload. On failure the error is
// of type Errors and lists every invalid field.
func ValidateProduct(in ProductInput) (ProductCommand, error) {
	cmd := ProductCommand{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	}
	if in.Image != nil {
		if image := strings.TrimSpace(*in.Image); image != "" {
			cmd.Image = &image
		}
	}

	errs := Errors{}
	if err := collect(validate.Struct(cmd), errs); err != nil {
		return ProductCommand{}, err
	}

	categoryID, msg := parseCategoryID(in.CategoryID)
	if msg != "" {
		errs.Add("category_id", msg)
	}
	cmd.CategoryID = categoryID

	price, msg := parsePrice(in.Price)
	if msg != "" {
		errs.Add("price", msg)
	}
	cmd.Price = price

	if len(errs) > 0 {
		return ProductCommand{}, errs
	}
	return cmd, nil
}

// ValidateCategory trims and checks a category payload.
func ValidateCategory(in CategoryInput) (CategoryCommand, error) {
	cmd := CategoryCommand{Name: strings.TrimSpace(in.Name)}

	errs := Errors{}
	if err := collect(validate.Struct(cmd), errs); err != nil {
		return CategoryCommand{}, err
	}
	if len(errs) > 0 {
		return CategoryCommand{}, errs
	}
	return cmd, nil
}

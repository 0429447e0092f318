// Package filters turns raw listing query parameters into validated filter and
// sort values. Malformed parameters never fail a request: they are dropped and
// the listing falls back to its defaults.
package filters

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/mytheresa/go-catalog-analytics/models"
	"github.com/shopspring/decimal"
)

// PageSize is the number of products on one listing page.
const PageSize = 10

// maxPage keeps the computed offset within int32 range.
const maxPage = math.MaxInt32 / PageSize

// CategoryResolver checks that a category id refers to a stored category.
type CategoryResolver interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// ParseProductFilters reads category, min_price, max_price and sort_by. The only
// error it returns comes from the category lookup.
func ParseProductFilters(ctx context.Context, values url.Values, categories CategoryResolver) (models.ProductFilters, error) {
	f := models.ProductFilters{
		Sort: ParseProductSort(values.Get("sort_by")),
	}

	if id, ok := ParseID(values.Get("category")); ok {
		exists, err := categories.Exists(ctx, id)
		if err != nil {
			return models.ProductFilters{}, err
		}
		if exists {
			f.CategoryID = &id
		}
	}

	if p, ok := ParsePrice(values.Get("min_price")); ok {
		f.MinPrice = &p
	}
	if p, ok := ParsePrice(values.Get("max_price")); ok {
		f.MaxPrice = &p
	}

	return f, nil
}

// ParsePrice parses a non-negative decimal with at most two fractional digits.
func ParsePrice(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if models.CheckPrice(d) != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParseID parses a positive integer identifier.
func ParseID(raw string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || n == 0 || n > uint64(^uint(0)) {
		return 0, false
	}
	return uint(n), true
}

// ParsePage returns the requested page number, or 1 when absent or malformed.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	if n > maxPage {
		return maxPage
	}
	return n
}

func ParseProductSort(raw string) models.ProductSort {
	if s := models.ProductSort(strings.TrimSpace(raw)); s.Valid() {
		return s
	}
	return models.DefaultProductSort
}

func ParseCategorySort(raw string) models.CategorySort {
	if s := models.CategorySort(strings.TrimSpace(raw)); s.Valid() {
		return s
	}
	return models.DefaultCategorySort
}

func ParseAnalyticsSort(raw string) models.AnalyticsSort {
	if s := models.AnalyticsSort(strings.TrimSpace(raw)); s.Valid() {
		return s
	}
	return models.DefaultAnalyticsSort
}

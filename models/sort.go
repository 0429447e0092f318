package models

import "strings"

// ProductSort is the closed set of orderings accepted for product listings.
type ProductSort string

const (
	ProductSortNameAsc       ProductSort = "name"
	ProductSortNameDesc      ProductSort = "-name"
	ProductSortPriceAsc      ProductSort = "price"
	ProductSortPriceDesc     ProductSort = "-price"
	ProductSortCreatedAtAsc  ProductSort = "created_at"
	ProductSortCreatedAtDesc ProductSort = "-created_at"

	DefaultProductSort = ProductSortCreatedAtDesc
)

// CategorySort is the closed set of orderings accepted for category listings.
type CategorySort string

const (
	CategorySortNameAsc          CategorySort = "name"
	CategorySortNameDesc         CategorySort = "-name"
	CategorySortProductCountAsc  CategorySort = "product_count"
	CategorySortProductCountDesc CategorySort = "-product_count"
	CategorySortCreatedAtAsc     CategorySort = "created_at"
	CategorySortCreatedAtDesc    CategorySort = "-created_at"

	DefaultCategorySort = CategorySortNameAsc
)

// AnalyticsSort is the closed set of orderings accepted for per-category statistics.
type AnalyticsSort string

const (
	AnalyticsSortNameAsc          AnalyticsSort = "name"
	AnalyticsSortNameDesc         AnalyticsSort = "-name"
	AnalyticsSortProductCountAsc  AnalyticsSort = "product_count"
	AnalyticsSortProductCountDesc AnalyticsSort = "-product_count"
	AnalyticsSortTotalValueAsc    AnalyticsSort = "total_value"
	AnalyticsSortTotalValueDesc   AnalyticsSort = "-total_value"

	DefaultAnalyticsSort = AnalyticsSortNameAsc
)

var (
	productSorts = []ProductSort{
		ProductSortNameAsc, ProductSortNameDesc,
		ProductSortPriceAsc, ProductSortPriceDesc,
		ProductSortCreatedAtAsc, ProductSortCreatedAtDesc,
	}
	categorySorts = []CategorySort{
		CategorySortNameAsc, CategorySortNameDesc,
		CategorySortProductCountAsc, CategorySortProductCountDesc,
		CategorySortCreatedAtAsc, CategorySortCreatedAtDesc,
	}
	analyticsSorts = []AnalyticsSort{
		AnalyticsSortNameAsc, AnalyticsSortNameDesc,
		AnalyticsSortProductCountAsc, AnalyticsSortProductCountDesc,
		AnalyticsSortTotalValueAsc, AnalyticsSortTotalValueDesc,
	}
)

// Valid reports whether s is one of the whitelisted product orderings.
func (s ProductSort) Valid() bool {
	for _, v := range productSorts {
		if v == s {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the whitelisted category orderings.
func (s CategorySort) Valid() bool {
	for _, v := range categorySorts {
		if v == s {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the whitelisted analytics orderings.
func (s AnalyticsSort) Valid() bool {
	for _, v := range analyticsSorts {
		if v == s {
			return true
		}
	}
	return false
}

// splitSort separates a "-field" key into its field name and direction.
func splitSort(key string) (field string, desc bool) {
	if strings.HasPrefix(key, "-") {
		return key[1:], true
	}
	return key, false
}

// Field returns the sort field without its direction prefix.
func (s ProductSort) Field() string {
	f, _ := splitSort(string(s))
	return f
}

// Desc reports whether the ordering is descending.
func (s ProductSort) Desc() bool {
	_, d := splitSort(string(s))
	return d
}

func (s CategorySort) Field() string {
	f, _ := splitSort(string(s))
	return f
}

func (s CategorySort) Desc() bool {
	_, d := splitSort(string(s))
	return d
}

func (s AnalyticsSort) Field() string {
	f, _ := splitSort(string(s))
	return f
}

func (s AnalyticsSort) Desc() bool {
	_, d := splitSort(string(s))
	return d
}

// Package analytics computes price statistics over the catalog: global figures
// and one row per category.
//
// All arithmetic is exact decimal. Totals, minimums and maximums keep the two
// fractional digits of a stored price; averages are total/count rounded half-up
// to two digits. Categories without products report their total, average, min
// and max as absent (nil) rather than zero.
package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mytheresa/go-catalog-analytics/models"
	"github.com/shopspring/decimal"
)

// Stats is the set of aggregates over a group of prices.
type Stats struct {
	ProductCount int64
	TotalValue   *decimal.Decimal
	AveragePrice *decimal.Decimal
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
}

// CategoryStats is Stats for the products of one category.
type CategoryStats struct {
	CategoryID uint
	Name       string
	Stats
}

// Report is the full analytics view. Global never depends on Sort.
type Report struct {
	Global     Stats
	Categories []CategoryStats
	Sort       models.AnalyticsSort
}

// Summary is the short catalog overview.
type Summary struct {
	TotalProducts   int64
	TotalCategories int64
	TotalValue      decimal.Decimal
}

// Compute builds a report from one snapshot of per-category aggregates.
//
// Global figures are reduced from the same groups: every product belongs to
// exactly one category, so the groups partition the product set.
func Compute(groups []models.CategoryAggregate, sort models.AnalyticsSort) Report {
	if !sort.Valid() {
		sort = models.DefaultAnalyticsSort
	}

	report := Report{
		Categories: make([]CategoryStats, 0, len(groups)),
		Sort:       sort,
	}

	var (
		count  int64
		total  = decimal.Zero
		lo, hi *decimal.Decimal
	)
	for _, g := range groups {
		st := categoryStats(g)
		report.Categories = append(report.Categories, st)

		if st.ProductCount == 0 {
			continue
		}
		count += st.ProductCount
		total = total.Add(*st.TotalValue)
		if st.MinPrice != nil && (lo == nil || st.MinPrice.LessThan(*lo)) {
			lo = st.MinPrice
		}
		if st.MaxPrice != nil && (hi == nil || st.MaxPrice.GreaterThan(*hi)) {
			hi = st.MaxPrice
		}
	}

	report.Global = Stats{
		ProductCount: count,
		TotalValue:   &total,
		MinPrice:     lo,
		MaxPrice:     hi,
	}
	if count > 0 {
		report.Global.AveragePrice = average(total, count)
	}

	SortCategories(report.Categories, sort)
	return report
}

// Summarize reduces a snapshot to the catalog overview.
func Summarize(groups []models.CategoryAggregate) Summary {
	s := Summary{
		TotalCategories: int64(len(groups)),
		TotalValue:      decimal.Zero,
	}
	for _, g := range groups {
		s.TotalProducts += g.ProductCount
		if g.ProductCount > 0 && g.TotalValue.Valid {
			s.TotalValue = s.TotalValue.Add(*money(g.TotalValue.Decimal))
		}
	}
	return s
}

func categoryStats(g models.CategoryAggregate) CategoryStats {
	st := CategoryStats{
		CategoryID: g.CategoryID,
		Name:       g.Name,
		Stats:      Stats{ProductCount: g.ProductCount},
	}
	if g.ProductCount == 0 || !g.TotalValue.Valid {
		st.ProductCount = 0
		return st
	}

	st.TotalValue = money(g.TotalValue.Decimal)
	st.AveragePrice = average(*st.TotalValue, g.ProductCount)
	if g.MinPrice.Valid {
		st.MinPrice = money(g.MinPrice.Decimal)
	}
	if g.MaxPrice.Valid {
		st.MaxPrice = money(g.MaxPrice.Decimal)
	}
	return st
}

// money normalizes an engine-returned amount to the price scale. Engines that sum
// NUMERIC columns in floating point (sqlite) leave binary noise past the cents.
func money(d decimal.Decimal) *decimal.Decimal {
	v := d.Round(models.PriceScale)
	return &v
}

// average divides with half-up rounding at the price scale.
func average(total decimal.Decimal, count int64) *decimal.Decimal {
	v := total.DivRound(decimal.NewFromInt(count), models.PriceScale)
	return &v
}

// SortCategories orders stats by the requested key. Ties fall back to the name
// ascending, then the id. Absent totals sort below every present total.
func SortCategories(stats []CategoryStats, sort models.AnalyticsSort) {
	if !sort.Valid() {
		sort = models.DefaultAnalyticsSort
	}
	field, desc := sort.Field(), sort.Desc()

	slices.SortStableFunc(stats, func(a, b CategoryStats) int {
		var c int
		switch field {
		case "product_count":
			c = cmp.Compare(a.ProductCount, b.ProductCount)
		case "total_value":
			c = compareAbsent(a.TotalValue, b.TotalValue)
		default:
			c = strings.Compare(a.Name, b.Name)
		}
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		if c = strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.CategoryID, b.CategoryID)
	})
}

func compareAbsent(a, b *decimal.Decimal) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Cmp(*b)
	}
}

package analytics

import (
	"testing"

	"github.com/mytheresa/go-catalog-analytics/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func nullDecimal(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func aggregate(id uint, name string, count int64, total, lo, hi string) models.CategoryAggregate {
	return models.CategoryAggregate{
		CategoryID:   id,
		Name:         name,
		ProductCount: count,
		TotalValue:   nullDecimal(total),
		MinPrice:     nullDecimal(lo),
		MaxPrice:     nullDecimal(hi),
	}
}

func fixed(t *testing.T, d *decimal.Decimal) string {
	t.Helper()
	require.NotNil(t, d)
	return d.StringFixed(2)
}

func names(stats []CategoryStats) []string {
	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = s.Name
	}
	return out
}

// --- Tests ---

func TestCompute_ElectronicsAndBooks(t *testing.T) {
	groups := []models.CategoryAggregate{
		aggregate(1, "Electronics", 1, "100.00", "100.00", "100.00"),
		aggregate(2, "Books", 1, "50.00", "50.00", "50.00"),
	}

	report := Compute(groups, models.AnalyticsSortNameAsc)

	assert.Equal(t, int64(2), report.Global.ProductCount)
	assert.Equal(t, "150.00", fixed(t, report.Global.TotalValue))
	assert.Equal(t, "75.00", fixed(t, report.Global.AveragePrice))
	assert.Equal(t, "50.00", fixed(t, report.Global.MinPrice))
	assert.Equal(t, "100.00", fixed(t, report.Global.MaxPrice))

	require.Len(t, report.Categories, 2)
	assert.Equal(t, []string{"Books", "Electronics"}, names(report.Categories))

	books, electronics := report.Categories[0], report.Categories[1]
	assert.Equal(t, int64(1), electronics.ProductCount)
	assert.Equal(t, "100.00", fixed(t, electronics.TotalValue))
	assert.Equal(t, int64(1), books.ProductCount)
	assert.Equal(t, "50.00", fixed(t, books.TotalValue))
}

func TestCompute_EmptyCategoryReportsAbsentValues(t *testing.T) {
	groups := []models.CategoryAggregate{
		aggregate(1, "Empty", 0, "", "", ""),
	}

	report := Compute(groups, models.AnalyticsSortNameAsc)

	require.Len(t, report.Categories, 1)
	empty := report.Categories[0]
	assert.Equal(t, int64(0), empty.ProductCount)
	assert.Nil(t, empty.TotalValue)
	assert.Nil(t, empty.AveragePrice)
	assert.Nil(t, empty.MinPrice)
	assert.Nil(t, empty.MaxPrice)

	assert.Equal(t, int64(0), report.Global.ProductCount)
	assert.Equal(t, "0.00", fixed(t, report.Global.TotalValue))
	assert.Nil(t, report.Global.AveragePrice)
	assert.Nil(t, report.Global.MinPrice)
	assert.Nil(t, report.Global.MaxPrice)
}

func TestCompute_NoCategories(t *testing.T) {
	report := Compute(nil, models.AnalyticsSortNameAsc)

	assert.Empty(t, report.Categories)
	assert.Equal(t, int64(0), report.Global.ProductCount)
	assert.Equal(t, "0.00", fixed(t, report.Global.TotalValue))
}

func TestCompute_GlobalMatchesSumOfCategories(t *testing.T) {
	groups := []models.CategoryAggregate{
		aggregate(1, "Electronics", 2, "84999.49", "29999.99", "54999.50"),
		aggregate(2, "Clothing", 2, "5498.99", "1499.99", "3999.00"),
		aggregate(3, "Books", 2, "2198.00", "899.00", "1299.00"),
		aggregate(4, "Empty", 0, "", "", ""),
		aggregate(5, "Home", 2, "4098.00", "499.00", "3599.00"),
	}

	report := Compute(groups, models.AnalyticsSortTotalValueDesc)

	var count int64
	total := decimal.Zero
	for _, c := range report.Categories {
		count += c.ProductCount
		if c.TotalValue != nil {
			total = total.Add(*c.TotalValue)
		}
	}
	assert.Equal(t, report.Global.ProductCount, count)
	assert.True(t, report.Global.TotalValue.Equal(total), "global %s != categories %s", report.Global.TotalValue, total)
	assert.Equal(t, "96794.48", fixed(t, report.Global.TotalValue))
	assert.Equal(t, "12099.31", fixed(t, report.Global.AveragePrice))
	assert.Equal(t, "499.00", fixed(t, report.Global.MinPrice))
	assert.Equal(t, "54999.50", fixed(t, report.Global.MaxPrice))
}

func TestCompute_AverageRoundsHalfUp(t *testing.T) {
	testCases := []struct {
		name     string
		total    string
		count    int64
		expected string
	}{
		{name: "exact", total: "150.00", count: 2, expected: "75.00"},
		{name: "half rounds up", total: "0.05", count: 2, expected: "0.03"},
		{name: "smallest half rounds up", total: "0.01", count: 2, expected: "0.01"},
		{name: "below half rounds down", total: "10.00", count: 3, expected: "3.33"},
		{name: "above half rounds up", total: "20.00", count: 3, expected: "6.67"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			report := Compute([]models.CategoryAggregate{
				aggregate(1, "Only", tc.count, tc.total, "0.00", tc.total),
			}, models.AnalyticsSortNameAsc)

			assert.Equal(t, tc.expected, fixed(t, report.Categories[0].AveragePrice))
			assert.Equal(t, tc.expected, fixed(t, report.Global.AveragePrice))
		})
	}
}

func TestCompute_NormalizesFloatingPointSums(t *testing.T) {
	report := Compute([]models.CategoryAggregate{
		aggregate(1, "Clothing", 2, "44.980000000000004", "19.99", "24.99"),
	}, models.AnalyticsSortNameAsc)

	assert.Equal(t, "44.98", report.Categories[0].TotalValue.String())
	assert.Equal(t, "22.49", fixed(t, report.Categories[0].AveragePrice))
}

func TestCompute_GlobalIgnoresSort(t *testing.T) {
	groups := []models.CategoryAggregate{
		aggregate(1, "Electronics", 1, "100.00", "100.00", "100.00"),
		aggregate(2, "Books", 1, "50.00", "50.00", "50.00"),
	}

	byName := Compute(groups, models.AnalyticsSortNameAsc)
	byValue := Compute(groups, models.AnalyticsSortTotalValueDesc)

	assert.Equal(t, byName.Global, byValue.Global)
}

func TestSortCategories(t *testing.T) {
	groups := []models.CategoryAggregate{
		aggregate(1, "Electronics", 2, "150.00", "50.00", "100.00"),
		aggregate(2, "Books", 1, "50.00", "50.00", "50.00"),
		aggregate(3, "Empty", 0, "", "", ""),
		aggregate(4, "Art", 1, "150.00", "150.00", "150.00"),
		aggregate(5, "Clothing", 1, "20.00", "20.00", "20.00"),
	}

	testCases := []struct {
		sort     models.AnalyticsSort
		expected []string
	}{
		{sort: models.AnalyticsSortNameAsc, expected: []string{"Art", "Books", "Clothing", "Electronics", "Empty"}},
		{sort: models.AnalyticsSortNameDesc, expected: []string{"Empty", "Electronics", "Clothing", "Books", "Art"}},
		{sort: models.AnalyticsSortProductCountAsc, expected: []string{"Empty", "Art", "Books", "Clothing", "Electronics"}},
		{sort: models.AnalyticsSortProductCountDesc, expected: []string{"Electronics", "Art", "Books", "Clothing", "Empty"}},
		{sort: models.AnalyticsSortTotalValueAsc, expected: []string{"Empty", "Clothing", "Books", "Art", "Electronics"}},
		{sort: models.AnalyticsSortTotalValueDesc, expected: []string{"Art", "Electronics", "Books", "Clothing", "Empty"}},
		{sort: models.AnalyticsSort("bogus"), expected: []string{"Art", "Books", "Clothing", "Electronics", "Empty"}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.sort), func(t *testing.T) {
			report := Compute(groups, tc.sort)
			assert.Equal(t, tc.expected, names(report.Categories))
		})
	}
}

func TestSummarize(t *testing.T) {
	groups := []models.CategoryAggregate{
		aggregate(1, "Electronics", 1, "100.00", "100.00", "100.00"),
		aggregate(2, "Books", 1, "50.00", "50.00", "50.00"),
		aggregate(3, "Empty", 0, "", "", ""),
	}

	s := Summarize(groups)

	assert.Equal(t, int64(2), s.TotalProducts)
	assert.Equal(t, int64(3), s.TotalCategories)
	assert.Equal(t, "150.00", s.TotalValue.StringFixed(2))
}

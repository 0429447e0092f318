package analytics

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mytheresa/go-catalog-analytics/app/api"
	"github.com/mytheresa/go-catalog-analytics/app/filters"
	"github.com/mytheresa/go-catalog-analytics/models"
)

type StatsResponse struct {
	ProductCount int64   `json:"product_count"`
	TotalValue   *string `json:"total_value"`
	AvgPrice     *string `json:"avg_price"`
	MinPrice     *string `json:"min_price"`
	MaxPrice     *string `json:"max_price"`
}

type CategoryStatsResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	StatsResponse
}

type Response struct {
	Global     StatsResponse           `json:"global"`
	Categories []CategoryStatsResponse `json:"categories"`
	SortBy     string                  `json:"sort_by"`
}

type SummaryResponse struct {
	TotalProducts   int64  `json:"total_products"`
	TotalCategories int64  `json:"total_categories"`
	TotalValue      string `json:"total_value"`
}

type AggregateProvider interface {
	GetCategoryAggregates(ctx context.Context) ([]models.CategoryAggregate, error)
}

type AnalyticsHandler struct {
	repo   AggregateProvider
	logger *slog.Logger
}

func NewAnalyticsHandler(r AggregateProvider, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		repo:   r,
		logger: logger,
	}
}

// HandleGet serves GET /analytics.
func (h *AnalyticsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sort := filters.ParseAnalyticsSort(r.URL.Query().Get("sort_by"))

	groups, err := h.repo.GetCategoryAggregates(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to aggregate prices", "error", err)
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}

	report := Compute(groups, sort)

	categories := make([]CategoryStatsResponse, len(report.Categories))
	for i, c := range report.Categories {
		categories[i] = CategoryStatsResponse{
			ID:            c.CategoryID,
			Name:          c.Name,
			StatsResponse: statsResponse(c.Stats),
		}
	}

	api.OKResponse(w, Response{
		Global:     statsResponse(report.Global),
		Categories: categories,
		SortBy:     string(report.Sort),
	})
}

// HandleSummary serves GET /, the catalog overview.
func (h *AnalyticsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	groups, err := h.repo.GetCategoryAggregates(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to aggregate prices", "error", err)
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	s := Summarize(groups)
	api.OKResponse(w, SummaryResponse{
		TotalProducts:   s.TotalProducts,
		TotalCategories: s.TotalCategories,
		TotalValue:      api.Money(s.TotalValue),
	})
}

func statsResponse(s Stats) StatsResponse {
	return StatsResponse{
		ProductCount: s.ProductCount,
		TotalValue:   api.OptionalMoney(s.TotalValue),
		AvgPrice:     api.OptionalMoney(s.AveragePrice),
		MinPrice:     api.OptionalMoney(s.MinPrice),
		MaxPrice:     api.OptionalMoney(s.MaxPrice),
	}
}

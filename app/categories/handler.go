package categories

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mytheresa/go-catalog-analytics/app/api"
	"github.com/mytheresa/go-catalog-analytics/app/events"
	"github.com/mytheresa/go-catalog-analytics/app/filters"
	"github.com/mytheresa/go-catalog-analytics/app/validation"
	"github.com/mytheresa/go-catalog-analytics/models"
)

const maxBodyBytes = 1 << 20

type CategoryResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	ProductCount *int64    `json:"product_count,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ListResponse struct {
	SortBy     string             `json:"sort_by"`
	Categories []CategoryResponse `json:"categories"`
}

type DeleteResponse struct {
	ID              uint  `json:"id"`
	DeletedProducts int64 `json:"deleted_products"`
}

type ProductResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Image       *string   `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CategoryProductsResponse struct {
	Category CategoryResponse  `json:"category"`
	Total    int               `json:"total"`
	Products []ProductResponse `json:"products"`
}

type CategoryProvider interface {
	GetCategoriesWithCounts(ctx context.Context, sort models.CategorySort) ([]models.CategoryWithCount, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uint) (int64, error)
}

type ProductLister interface {
	GetByCategory(ctx context.Context, categoryID uint) ([]models.Product, error)
}

// ChangeNotifier is told about every committed write.
type ChangeNotifier interface {
	Notify(ctx context.Context, event events.Event)
}

type CategoryHandler struct {
	repo     CategoryProvider
	products ProductLister
	notifier ChangeNotifier
	logger   *slog.Logger
}

func NewCategoryHandler(r CategoryProvider, products ProductLister, notifier ChangeNotifier, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		repo:     r,
		products: products,
		notifier: notifier,
		logger:   logger,
	}
}

// HandleGetAll serves GET /categories with live product counts.
func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	sort := filters.ParseCategorySort(r.URL.Query().Get("sort_by"))

	categories, err := h.repo.GetCategoriesWithCounts(r.Context(), sort)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list categories", "error", err)
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		count := c.ProductCount
		response[i] = toCategory(&c.Category)
		response[i].ProductCount = &count
	}

	api.OKResponse(w, ListResponse{SortBy: string(sort), Categories: response})
}

// HandleCreate serves POST /categories.
func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	cmd, ok := h.decodeCommand(w, r)
	if !ok {
		return
	}

	category := &models.Category{Name: cmd.Name}
	if err := h.repo.CreateCategory(r.Context(), category); err != nil {
		h.writeStoreError(w, r, err, "Failed to create category")
		return
	}

	h.notifier.Notify(r.Context(), events.New(events.CategoryCreated, category.ID, events.CategoryPayload{Name: category.Name}))
	api.JSONResponse(w, http.StatusCreated, toCategory(category))
}

// HandleUpdate serves PUT /categories/{id}.
func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := filters.ParseID(chi.URLParam(r, "id"))
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "Category not found")
		return
	}
	cmd, ok := h.decodeCommand(w, r)
	if !ok {
		return
	}

	category := &models.Category{ID: id, Name: cmd.Name}
	if err := h.repo.UpdateCategory(r.Context(), category); err != nil {
		h.writeStoreError(w, r, err, "Failed to update category")
		return
	}

	h.notifier.Notify(r.Context(), events.New(events.CategoryUpdated, category.ID, events.CategoryPayload{Name: category.Name}))
	api.OKResponse(w, toCategory(category))
}

// HandleDelete serves DELETE /categories/{id}. The category's products go with it.
func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := filters.ParseID(chi.URLParam(r, "id"))
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "Category not found")
		return
	}

	removed, err := h.repo.DeleteCategory(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err, "Failed to delete category")
		return
	}

	h.logger.InfoContext(r.Context(), "category deleted", "category_id", id, "deleted_products", removed)
	h.notifier.Notify(r.Context(), events.New(events.CategoryDeleted, id, events.CategoryPayload{DeletedProducts: removed}))
	api.OKResponse(w, DeleteResponse{ID: id, DeletedProducts: removed})
}

// HandleProducts serves GET /categories/{id}/products.
func (h *CategoryHandler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := filters.ParseID(chi.URLParam(r, "id"))
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "Category not found")
		return
	}

	category, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err, "Failed to retrieve category")
		return
	}

	products, err := h.products.GetByCategory(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err, "Failed to retrieve products")
		return
	}

	response := CategoryProductsResponse{
		Category: toCategory(category),
		Total:    len(products),
		Products: make([]ProductResponse, len(products)),
	}
	for i, p := range products {
		response.Products[i] = ProductResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       api.Money(p.Price),
			Image:       p.Image,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		}
	}
	api.OKResponse(w, response)
}

func (h *CategoryHandler) decodeCommand(w http.ResponseWriter, r *http.Request) (validation.CategoryCommand, bool) {
	var input validation.CategoryInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return validation.CategoryCommand{}, false
	}

	cmd, err := validation.ValidateCategory(input)
	if err != nil {
		if fields, ok := validation.AsErrors(err); ok {
			api.ValidationErrorResponse(w, fields)
			return validation.CategoryCommand{}, false
		}
		h.logger.ErrorContext(r.Context(), "failed to validate category", "error", err)
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to validate category")
		return validation.CategoryCommand{}, false
	}
	return cmd, true
}

func (h *CategoryHandler) writeStoreError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, models.ErrCategoryNotFound):
		api.ErrorResponse(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, models.ErrDuplicateCategoryName):
		api.ValidationErrorResponse(w, validation.Field("name", validation.MsgDuplicateName))
	default:
		h.logger.ErrorContext(r.Context(), "category store failure", "error", err)
		api.ErrorResponse(w, http.StatusInternalServerError, message)
	}
}

func toCategory(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

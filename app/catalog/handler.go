package catalog

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

type Response struct {
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int64           `json:"total_pages"`
	Filters    FiltersResponse `json:"filters"`
	Products   []Product       `json:"products"`
}

// FiltersResponse echoes the filters that were actually applied.
type FiltersResponse struct {
	Category *uint   `json:"category"`
	MinPrice *string `json:"min_price"`
	MaxPrice *string `json:"max_price"`
	SortBy   string  `json:"sort_by"`
}

type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Category    Category  `json:"category"`
	Image       *string   `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductProvider interface {
	GetFilteredProducts(ctx context.Context, offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
}

// ChangeNotifier is told about every committed write.
type ChangeNotifier interface {
	Notify(ctx context.Context, event events.Event)
}

type CatalogHandler struct {
	repo       ProductProvider
	categories filters.CategoryResolver
	notifier   ChangeNotifier
	logger     *slog.Logger
}

func NewCatalogHandler(r ProductProvider, categories filters.CategoryResolver, notifier ChangeNotifier, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		repo:       r,
		categories: categories,
		notifier:   notifier,
		logger:     logger,
	}
}

// HandleList serves GET /products.
func (h *CatalogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	f, err := filters.ParseProductFilters(r.Context(), query, h.categories)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to resolve category filter", "error", err)
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}
	page := filters.ParsePage(query.Get("page"))

	res, total, err := h.repo.GetFilteredProducts(r.Context(), (page-1)*filters.PageSize, filters.PageSize, f)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list products", "error", err)
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	products := make([]Product, len(res))
	for i := range res {
		products[i] = toProduct(&res[i])
	}

	api.OKResponse(w, Response{
		Total:      total,
		Page:       page,
		PageSize:   filters.PageSize,
		TotalPages: (total + filters.PageSize - 1) / filters.PageSize,
		Filters: FiltersResponse{
			Category: f.CategoryID,
			MinPrice: api.OptionalMoney(f.MinPrice),
			MaxPrice: api.OptionalMoney(f.MaxPrice),
			SortBy:   string(f.Sort),
		},
		Products: products,
	})
}

// HandleGet serves GET /products/{id}.
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := filters.ParseID(chi.URLParam(r, "id"))
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err, "Failed to retrieve product")
		return
	}

	api.OKResponse(w, toProduct(product))
}

// HandleCreate serves POST /products.
func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	cmd, ok := h.decodeCommand(w, r)
	if !ok {
		return
	}

	product := fromCommand(cmd)
	if err := h.repo.CreateProduct(r.Context(), product); err != nil {
		h.writeStoreError(w, r, err, "Failed to create product")
		return
	}

	h.notifier.Notify(r.Context(), events.New(events.ProductCreated, product.ID, payload(product)))
	api.JSONResponse(w, http.StatusCreated, toProduct(product))
}

// HandleUpdate serves PUT /products/{id}. Every mutable field is replaced.
func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := filters.ParseID(chi.URLParam(r, "id"))
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}
	cmd, ok := h.decodeCommand(w, r)
	if !ok {
		return
	}

	product := fromCommand(cmd)
	product.ID = id
	if err := h.repo.UpdateProduct(r.Context(), product); err != nil {
		h.writeStoreError(w, r, err, "Failed to update product")
		return
	}

	h.notifier.Notify(r.Context(), events.New(events.ProductUpdated, product.ID, payload(product)))
	api.OKResponse(w, toProduct(product))
}

// HandleDelete serves DELETE /products/{id}.
func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := filters.ParseID(chi.URLParam(r, "id"))
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}

	if err := h.repo.DeleteProduct(r.Context(), id); err != nil {
		h.writeStoreError(w, r, err, "Failed to delete product")
		return
	}

	h.notifier.Notify(r.Context(), events.New(events.ProductDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// decodeCommand reads and validates the product payload, answering the
// request itself when it is unusable.
func (h *CatalogHandler) decodeCommand(w http.ResponseWriter, r *http.Request) (validation.ProductCommand, bool) {
	var input validation.ProductInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return validation.ProductCommand{}, false
	}

	cmd, err := validation.ValidateProduct(input)
	if err != nil {
		if fields, ok := validation.AsErrors(err); ok {
			api.ValidationErrorResponse(w, fields)
			return validation.ProductCommand{}, false
		}
		h.logger.ErrorContext(r.Context(), "failed to validate product", "error", err)
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to validate product")
		return validation.ProductCommand{}, false
	}
	return cmd, true
}

func (h *CatalogHandler) writeStoreError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, models.ErrCategoryNotFound):
		api.ValidationErrorResponse(w, validation.Field("category_id", validation.MsgInvalidCategory))
	default:
		h.logger.ErrorContext(r.Context(), "product store failure", "error", err)
		api.ErrorResponse(w, http.StatusInternalServerError, message)
	}
}

func fromCommand(cmd validation.ProductCommand) *models.Product {
	return &models.Product{
		Name:        cmd.Name,
		Description: cmd.Description,
		Price:       cmd.Price,
		CategoryID:  cmd.CategoryID,
		Image:       cmd.Image,
	}
}

func toProduct(p *models.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       api.Money(p.Price),
		Category: Category{
			ID:   p.Category.ID,
			Name: p.Category.Name,
		},
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func payload(p *models.Product) events.ProductPayload {
	return events.ProductPayload{
		Name:       p.Name,
		Price:      api.Money(p.Price),
		CategoryID: p.CategoryID,
	}
}

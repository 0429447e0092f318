package categories

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mytheresa/go-catalog-analytics/app/api"
	"github.com/mytheresa/go-catalog-analytics/app/events"
	"github.com/mytheresa/go-catalog-analytics/app/validation"
	"github.com/mytheresa/go-catalog-analytics/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock Repository ---

type MockCategoryRepo struct {
	Categories []models.CategoryWithCount
	Products   []models.Product
	CreateErr  error
	ListErr    error
	LastSaved  *models.Category
	LastSort   models.CategorySort
}

func (m *MockCategoryRepo) GetCategoriesWithCounts(_ context.Context, sort models.CategorySort) ([]models.CategoryWithCount, error) {
	m.LastSort = sort
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Categories, nil
}

func (m *MockCategoryRepo) GetByID(_ context.Context, id uint) (*models.Category, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	for _, c := range m.Categories {
		if c.ID == id {
			return &c.Category, nil
		}
	}
	return nil, models.ErrCategoryNotFound
}

func (m *MockCategoryRepo) CreateCategory(_ context.Context, cat *models.Category) error {
	m.LastSaved = cat
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, c := range m.Categories {
		if c.Name == cat.Name {
			return models.ErrDuplicateCategoryName
		}
	}
	cat.ID = uint(len(m.Categories) + 1)
	return nil
}

func (m *MockCategoryRepo) UpdateCategory(_ context.Context, cat *models.Category) error {
	m.LastSaved = cat
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, err := m.GetByID(context.Background(), cat.ID); err != nil {
		return err
	}
	for _, c := range m.Categories {
		if c.Name == cat.Name && c.ID != cat.ID {
			return models.ErrDuplicateCategoryName
		}
	}
	return nil
}

func (m *MockCategoryRepo) DeleteCategory(_ context.Context, id uint) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	for _, c := range m.Categories {
		if c.ID == id {
			return c.ProductCount, nil
		}
	}
	return 0, models.ErrCategoryNotFound
}

func (m *MockCategoryRepo) GetByCategory(_ context.Context, categoryID uint) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.Products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

type MockNotifier struct {
	Events []events.Event
}

func (m *MockNotifier) Notify(_ context.Context, event events.Event) {
	m.Events = append(m.Events, event)
}

// --- Helpers ---

func seededRepo() *MockCategoryRepo {
	return &MockCategoryRepo{
		Categories: []models.CategoryWithCount{
			{Category: models.Category{ID: 1, Name: "Electronics"}, ProductCount: 2},
			{Category: models.Category{ID: 2, Name: "Books"}, ProductCount: 1},
			{Category: models.Category{ID: 3, Name: "Empty"}, ProductCount: 0},
		},
		Products: []models.Product{
			{ID: 1, Name: "Laptop", Price: decimal.RequireFromString("999.99"), CategoryID: 1},
			{ID: 2, Name: "Phone", Price: decimal.RequireFromString("150"), CategoryID: 1},
			{ID: 3, Name: "Novel", Price: decimal.RequireFromString("12.5"), CategoryID: 2},
		},
	}
}

func newHandler(repo *MockCategoryRepo, notifier *MockNotifier) *CategoryHandler {
	return NewCategoryHandler(repo, repo, notifier, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// --- Tests: GET /categories ---

func TestHandleGetAll(t *testing.T) {
	testCases := []struct {
		name               string
		url                string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCall      func(t *testing.T, repo *MockCategoryRepo)
	}{
		{
			name:               "Success with product counts",
			url:                "/categories",
			mockRepoSetup:      seededRepo,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ListResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "name", resp.SortBy)
				require.Len(t, resp.Categories, 3)
				assert.Equal(t, "Electronics", resp.Categories[0].Name)
				require.NotNil(t, resp.Categories[0].ProductCount)
				assert.Equal(t, int64(2), *resp.Categories[0].ProductCount)
				require.NotNil(t, resp.Categories[2].ProductCount)
				assert.Equal(t, int64(0), *resp.Categories[2].ProductCount)
			},
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.Equal(t, models.CategorySortNameAsc, repo.LastSort)
			},
		},
		{
			name:               "Whitelisted sort is passed through",
			url:                "/categories?sort_by=-product_count",
			mockRepoSetup:      seededRepo,
			expectedStatusCode: http.StatusOK,
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.Equal(t, models.CategorySortProductCountDesc, repo.LastSort)
			},
		},
		{
			name:               "Unknown sort falls back to name",
			url:                "/categories?sort_by=price",
			mockRepoSetup:      seededRepo,
			expectedStatusCode: http.StatusOK,
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.Equal(t, models.CategorySortNameAsc, repo.LastSort)
			},
		},
		{
			name: "Repository error",
			url:  "/categories",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{ListErr: errors.New("db down")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
				assert.Equal(t, "failed to fetch categories", errResp["error"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			repo := tc.mockRepoSetup()
			handler := newHandler(repo, &MockNotifier{})
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGetAll(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, repo)
			}
		})
	}
}

// --- Tests: POST /categories ---

func TestHandleCreate(t *testing.T) {
	testCases := []struct {
		name               string
		body               string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		expectedEvents     int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCall      func(t *testing.T, repo *MockCategoryRepo)
	}{
		{
			name:               "Successful creation trims the name",
			body:               `{"name":"  Garden  "}`,
			mockRepoSetup:      seededRepo,
			expectedStatusCode: http.StatusCreated,
			expectedEvents:     1,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp CategoryResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, uint(4), resp.ID)
				assert.Equal(t, "Garden", resp.Name)
				assert.Nil(t, resp.ProductCount)
			},
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				require.NotNil(t, repo.LastSaved)
				assert.Equal(t, "Garden", repo.LastSaved.Name)
			},
		},
		{
			name:               "Duplicate name",
			body:               `{"name":"Books"}`,
			mockRepoSetup:      seededRepo,
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp api.ValidationResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, []string{validation.MsgDuplicateName}, resp.Fields["name"])
			},
		},
		{
			name:               "Blank name",
			body:               `{"name":"   "}`,
			mockRepoSetup:      seededRepo,
			expectedStatusCode: http.StatusBadRequest,
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.Nil(t, repo.LastSaved)
			},
		},
		{
			name:               "Name too long",
			body:               `{"name":"` + strings.Repeat("x", 101) + `"}`,
			mockRepoSetup:      seededRepo,
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Invalid JSON",
			body:               `{"name":`,
			mockRepoSetup:      seededRepo,
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
				assert.Equal(t, "Invalid JSON body", errResp["error"])
			},
		},
		{
			name: "Repository error",
			body: `{"name":"Garden"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{CreateErr: errors.New("insert failed")}
			},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			repo := tc.mockRepoSetup()
			notifier := &MockNotifier{}
			handler := newHandler(repo, notifier)
			req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			// Act
			handler.HandleCreate(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Len(t, notifier.Events, tc.expectedEvents)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, repo)
			}
		})
	}
}

// --- Tests: PUT /categories/{id} ---

func TestHandleUpdate(t *testing.T) {
	testCases := []struct {
		name               string
		categoryID         string
		body               string
		expectedStatusCode int
	}{
		{name: "Renamed", categoryID: "2", body: `{"name":"Literature"}`, expectedStatusCode: http.StatusOK},
		{name: "Same name is allowed", categoryID: "2", body: `{"name":"Books"}`, expectedStatusCode: http.StatusOK},
		{name: "Name taken by another category", categoryID: "2", body: `{"name":"Electronics"}`, expectedStatusCode: http.StatusBadRequest},
		{name: "Unknown category", categoryID: "9", body: `{"name":"Other"}`, expectedStatusCode: http.StatusNotFound},
		{name: "Non-numeric id", categoryID: "abc", body: `{"name":"Other"}`, expectedStatusCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			handler := newHandler(seededRepo(), &MockNotifier{})
			req := httptest.NewRequest(http.MethodPut, "/categories/"+tc.categoryID, strings.NewReader(tc.body))
			req = withURLParam(req, "id", tc.categoryID)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleUpdate(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
		})
	}
}

// --- Tests: DELETE /categories/{id} ---

func TestHandleDelete(t *testing.T) {
	testCases := []struct {
		name               string
		categoryID         string
		expectedStatusCode int
		expectedDeleted    int64
	}{
		{name: "Cascade removes products", categoryID: "1", expectedStatusCode: http.StatusOK, expectedDeleted: 2},
		{name: "Empty category", categoryID: "3", expectedStatusCode: http.StatusOK, expectedDeleted: 0},
		{name: "Unknown category", categoryID: "9", expectedStatusCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			notifier := &MockNotifier{}
			handler := newHandler(seededRepo(), notifier)
			req := withURLParam(httptest.NewRequest(http.MethodDelete, "/categories/"+tc.categoryID, nil), "id", tc.categoryID)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleDelete(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedStatusCode != http.StatusOK {
				assert.Empty(t, notifier.Events)
				return
			}
			var resp DeleteResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tc.expectedDeleted, resp.DeletedProducts)
			require.Len(t, notifier.Events, 1)
			assert.Equal(t, events.CategoryDeleted, notifier.Events[0].Type)
			assert.Equal(t, events.CategoryPayload{DeletedProducts: tc.expectedDeleted}, notifier.Events[0].Payload)
		})
	}
}

// --- Tests: GET /categories/{id}/products ---

func TestHandleProducts(t *testing.T) {
	testCases := []struct {
		name               string
		categoryID         string
		expectedStatusCode int
		expectedNames      []string
	}{
		{name: "Products of one category", categoryID: "1", expectedStatusCode: http.StatusOK, expectedNames: []string{"Laptop", "Phone"}},
		{name: "Empty category", categoryID: "3", expectedStatusCode: http.StatusOK, expectedNames: []string{}},
		{name: "Unknown category", categoryID: "9", expectedStatusCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			handler := newHandler(seededRepo(), &MockNotifier{})
			req := withURLParam(httptest.NewRequest(http.MethodGet, "/categories/"+tc.categoryID+"/products", nil), "id", tc.categoryID)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleProducts(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedStatusCode != http.StatusOK {
				return
			}
			var resp CategoryProductsResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, len(tc.expectedNames), resp.Total)
			names := make([]string, len(resp.Products))
			for i, p := range resp.Products {
				names[i] = p.Name
			}
			assert.Equal(t, tc.expectedNames, names)
		})
	}
}

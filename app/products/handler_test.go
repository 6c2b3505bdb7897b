package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/veo1/online-marketplace/models"
)

// --- Mock Service ---

type MockProductService struct {
	Products []models.Product
	Err      error

	// Fields to capture call arguments
	lastCalledUserID    uint
	lastCalledProductID uint
	lastCalledInput     *Input
	lastCalledName      *string
	deleted             bool
}

func (m *MockProductService) Create(_ context.Context, userID uint, in Input) (*models.Product, error) {
	m.lastCalledUserID = userID
	captured := in
	m.lastCalledInput = &captured
	if m.Err != nil {
		return nil, m.Err
	}
	in = in.withDefaults()
	return &models.Product{
		ID:          10,
		OwnerID:     userID,
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		Category:    in.Category,
	}, nil
}

func (m *MockProductService) List(_ context.Context, userID uint) ([]models.Product, error) {
	m.lastCalledUserID = userID
	if m.Err != nil {
		return nil, m.Err
	}
	var owned []models.Product
	for _, p := range m.Products {
		if p.OwnerID == userID {
			owned = append(owned, p)
		}
	}
	return owned, nil
}

func (m *MockProductService) Get(_ context.Context, productID uint) (*models.Product, error) {
	m.lastCalledProductID = productID
	return m.find(productID)
}

func (m *MockProductService) Rename(_ context.Context, productID uint, name string) (*models.Product, error) {
	m.lastCalledProductID = productID
	m.lastCalledName = &name
	p, err := m.find(productID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = DefaultRename
	}
	p.Name = name
	return p, nil
}

func (m *MockProductService) Delete(_ context.Context, productID uint) error {
	m.lastCalledProductID = productID
	if _, err := m.find(productID); err != nil {
		return err
	}
	m.deleted = true
	return nil
}

func (m *MockProductService) find(id uint) (*models.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("find product %d: %w", id, models.ErrProductNotFound)
}

var mockProducts = []models.Product{
	{ID: 1, OwnerID: 1, Name: "Lamp", Description: "Desk lamp", Price: decimal.NewFromFloat(19.90), Category: "Home"},
	{ID: 2, OwnerID: 1, Name: "Mug", Description: "Blue", Price: decimal.NewFromFloat(4.50), Category: "Kitchen"},
	{ID: 3, OwnerID: 2, Name: "Chair", Price: decimal.NewFromFloat(80), Category: "Home"},
}

func serve(h *ProductHandler, legacy bool, method, target string, body io.Reader) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r, legacy)
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var errResp map[string]string
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	return errResp["error"]
}

// --- Tests ---

func TestHandleCreate(t *testing.T) {
	testCases := []struct {
		name               string
		method             string
		target             string
		body               string
		mockErr            error
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkServiceCall   func(t *testing.T, svc *MockProductService)
	}{
		{
			name:               "Placeholder product without body",
			method:             http.MethodPost,
			target:             "/users/7/products",
			expectedStatusCode: http.StatusCreated,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Product
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, uint(7), resp.OwnerID)
				assert.Equal(t, "Product Title", resp.Name)
				assert.Equal(t, "Product Description", resp.Description)
				assert.Equal(t, 99.99, resp.Price)
				assert.Equal(t, "Electronics", resp.Category)
			},
			checkServiceCall: func(t *testing.T, svc *MockProductService) {
				assert.Equal(t, uint(7), svc.lastCalledUserID)
				assert.Equal(t, Input{}, *svc.lastCalledInput)
			},
		},
		{
			name:               "Fields from body",
			method:             http.MethodPost,
			target:             "/users/7/products",
			body:               `{"name":"Kettle","price":"24.95","category":"Kitchen"}`,
			expectedStatusCode: http.StatusCreated,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Product
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "Kettle", resp.Name)
				assert.Equal(t, 24.95, resp.Price)
				assert.Equal(t, "Kitchen", resp.Category)
				assert.Equal(t, "Product Description", resp.Description)
			},
		},
		{
			name:               "Legacy GET route",
			method:             http.MethodGet,
			target:             "/create/3",
			expectedStatusCode: http.StatusCreated,
			checkServiceCall: func(t *testing.T, svc *MockProductService) {
				assert.Equal(t, uint(3), svc.lastCalledUserID)
			},
		},
		{
			name:               "Unknown user",
			method:             http.MethodPost,
			target:             "/users/999/products",
			mockErr:            fmt.Errorf("find owner 999: %w", models.ErrUserNotFound),
			expectedStatusCode: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "User not found", decodeError(t, rec))
			},
		},
		{
			name:               "Invalid user id",
			method:             http.MethodPost,
			target:             "/users/abc/products",
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "Invalid user id", decodeError(t, rec))
			},
			checkServiceCall: func(t *testing.T, svc *MockProductService) {
				assert.Nil(t, svc.lastCalledInput, "Create should not be called with a bad id")
			},
		},
		{
			name:               "Invalid JSON body",
			method:             http.MethodPost,
			target:             "/users/7/products",
			body:               `{invalid json`,
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "Invalid JSON body", decodeError(t, rec))
			},
			checkServiceCall: func(t *testing.T, svc *MockProductService) {
				assert.Nil(t, svc.lastCalledInput)
			},
		},
		{
			name:               "Trailing data after JSON body",
			method:             http.MethodPost,
			target:             "/users/7/products",
			body:               `{"name":"A"} trailing junk`,
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "Invalid JSON body", decodeError(t, rec))
			},
			checkServiceCall: func(t *testing.T, svc *MockProductService) {
				assert.Nil(t, svc.lastCalledInput, "Create should not be called with trailing data")
			},
		},
		{
			name:               "Two JSON values",
			method:             http.MethodPost,
			target:             "/users/7/products",
			body:               `{"name":"A"}{"name":"B"}`,
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Trailing whitespace is fine",
			method:             http.MethodPost,
			target:             "/users/7/products",
			body:               "{\"name\":\"A\"}\n  ",
			expectedStatusCode: http.StatusCreated,
			checkServiceCall: func(t *testing.T, svc *MockProductService) {
				assert.Equal(t, "A", svc.lastCalledInput.Name)
			},
		},
		{
			name:               "Service internal error",
			method:             http.MethodPost,
			target:             "/users/7/products",
			mockErr:            errors.New("insert failed"),
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "Failed to create product", decodeError(t, rec))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			svc := &MockProductService{Err: tc.mockErr}
			handler := NewProductHandler(svc, nil)

			// Act
			rec := serve(handler, true, tc.method, tc.target, strings.NewReader(tc.body))

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
			if tc.checkServiceCall != nil {
				tc.checkServiceCall(t, svc)
			}
		})
	}
}

func TestHandleList(t *testing.T) {
	testCases := []struct {
		name               string
		target             string
		mockErr            error
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:               "Products of one user",
			target:             "/users/1/products",
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []Product
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Len(t, resp, 2)
				assert.Equal(t, "Lamp", resp[0].Name)
				assert.Equal(t, 19.90, resp[0].Price)
				assert.Equal(t, "Mug", resp[1].Name)
			},
		},
		{
			name:               "Empty list is an array",
			target:             "/users/5/products",
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, "[]", rec.Body.String())
			},
		},
		{
			name:               "Legacy GET route",
			target:             "/get/2",
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []Product
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Len(t, resp, 1)
				assert.Equal(t, "Chair", resp[0].Name)
			},
		},
		{
			name:               "Unknown user",
			target:             "/users/999/products",
			mockErr:            models.ErrUserNotFound,
			expectedStatusCode: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "User not found", decodeError(t, rec))
			},
		},
		{
			name:               "Service internal error",
			target:             "/users/1/products",
			mockErr:            errors.New("db connection lost"),
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "Failed to retrieve products", decodeError(t, rec))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &MockProductService{Products: mockProducts, Err: tc.mockErr}
			handler := NewProductHandler(svc, nil)

			rec := serve(handler, true, http.MethodGet, tc.target, nil)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

func TestHandleGetProduct(t *testing.T) {
	svc := &MockProductService{Products: mockProducts}
	handler := NewProductHandler(svc, nil)

	rec := serve(handler, false, http.MethodGet, "/products/2", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp Product
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, uint(2), resp.ID)
	assert.Equal(t, "Blue", resp.Description)
	assert.Equal(t, 4.50, resp.Price)

	rec = serve(handler, false, http.MethodGet, "/products/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decodeError(t, rec))
}

func TestHandleUpdate(t *testing.T) {
	testCases := []struct {
		name               string
		method             string
		target             string
		body               string
		mockErr            error
		expectedStatusCode int
		expectedName       string
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:               "Default title",
			method:             http.MethodPatch,
			target:             "/products/1",
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Product
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "New Title", resp.Name)
				assert.Equal(t, "Desk lamp", resp.Description, "other fields unchanged")
				assert.Equal(t, 19.90, resp.Price)
			},
		},
		{
			name:               "Title from body",
			method:             http.MethodPatch,
			target:             "/products/1",
			body:               `{"name":"Reading Lamp"}`,
			expectedStatusCode: http.StatusOK,
			expectedName:       "Reading Lamp",
		},
		{
			name:               "Legacy GET route",
			method:             http.MethodGet,
			target:             "/update/2",
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Product
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, uint(2), resp.ID)
				assert.Equal(t, "New Title", resp.Name)
			},
		},
		{
			name:               "Product not found",
			method:             http.MethodPatch,
			target:             "/products/999",
			expectedStatusCode: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "Product not found", decodeError(t, rec))
			},
		},
		{
			name:               "Invalid product id",
			method:             http.MethodPatch,
			target:             "/products/-1",
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "Invalid product id", decodeError(t, rec))
			},
		},
		{
			name:               "Service internal error",
			method:             http.MethodPatch,
			target:             "/products/1",
			mockErr:            errors.New("write failed"),
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "Failed to update product", decodeError(t, rec))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &MockProductService{Products: mockProducts, Err: tc.mockErr}
			handler := NewProductHandler(svc, nil)

			rec := serve(handler, true, tc.method, tc.target, strings.NewReader(tc.body))

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
			if tc.expectedName != "" {
				assert.Equal(t, tc.expectedName, *svc.lastCalledName)
			}
		})
	}
}

func TestHandleDelete(t *testing.T) {
	testCases := []struct {
		name               string
		method             string
		target             string
		mockErr            error
		expectedStatusCode int
		expectDeleted      bool
	}{
		{
			name:               "Deleted",
			method:             http.MethodDelete,
			target:             "/products/3",
			expectedStatusCode: http.StatusNoContent,
			expectDeleted:      true,
		},
		{
			name:               "Legacy GET route",
			method:             http.MethodGet,
			target:             "/delete/3",
			expectedStatusCode: http.StatusNoContent,
			expectDeleted:      true,
		},
		{
			name:               "Product not found",
			method:             http.MethodDelete,
			target:             "/products/999",
			expectedStatusCode: http.StatusNotFound,
		},
		{
			name:               "Service internal error",
			method:             http.MethodDelete,
			target:             "/products/3",
			mockErr:            errors.New("db connection lost"),
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &MockProductService{Products: mockProducts, Err: tc.mockErr}
			handler := NewProductHandler(svc, nil)

			rec := serve(handler, true, tc.method, tc.target, nil)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, tc.expectDeleted, svc.deleted)
			if tc.expectDeleted {
				assert.Empty(t, rec.Body.String())
			}
		})
	}
}

func TestLegacyRoutesDisabled(t *testing.T) {
	svc := &MockProductService{Products: mockProducts}
	handler := NewProductHandler(svc, nil)

	for _, target := range []string{"/create/1", "/get/1", "/update/1", "/delete/1"} {
		rec := serve(handler, false, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
	assert.False(t, svc.deleted)
}

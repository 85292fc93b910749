package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/msaleh-dev/catalog-backend/internal/products"
	"github.com/msaleh-dev/catalog-backend/pkg/db/models"
	pkgerrors "github.com/msaleh-dev/catalog-backend/pkg/errors"
)

type stubProductService struct {
	createResp   *models.Product
	createErr    error
	createParams *products.CreateParams
	items        []products.ListItem
	listErr      error
	deleteErr    error
	deletedID    uuid.UUID
}

func (s *stubProductService) Create(ctx context.Context, params products.CreateParams) (*models.Product, error) {
	s.createParams = &params
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.createResp, nil
}

func (s *stubProductService) List(ctx context.Context) ([]products.ListItem, error) {
	return s.items, s.listErr
}

func (s *stubProductService) Delete(ctx context.Context, id uuid.UUID) error {
	s.deletedID = id
	return s.deleteErr
}

func multipartProductRequest(t *testing.T, fields map[string]string, withImage bool) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if withImage {
		part, err := writer.CreateFormFile("image", "photo.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := io.WriteString(part, "image-bytes"); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/addProduct", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func validProductFields(categoryID uuid.UUID) map[string]string {
	return map[string]string{
		"name":        "Field Guide",
		"category_id": categoryID.String(),
		"description": "Pocket-sized",
		"price":       "19.99",
		"stock":       "3",
	}
}

func TestProductCreateSuccess(t *testing.T) {
	categoryID := uuid.New()
	image := "1750000000000.png"
	svc := &stubProductService{createResp: &models.Product{
		ID:          uuid.New(),
		Name:        "Field Guide",
		CategoryID:  categoryID,
		Description: "Pocket-sized",
		Price:       decimal.RequireFromString("19.99"),
		Stock:       3,
		Image:       &image,
	}}
	handler := ProductCreate(svc, nil, 20)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, multipartProductRequest(t, validProductFields(categoryID), true))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.createParams == nil {
		t.Fatal("service was not called")
	}
	if svc.createParams.CategoryID != categoryID || svc.createParams.Stock != 3 {
		t.Fatalf("unexpected params: %+v", svc.createParams)
	}
	if !svc.createParams.Price.Equal(decimal.RequireFromString("19.99")) {
		t.Fatalf("unexpected price: %s", svc.createParams.Price)
	}
	if svc.createParams.ImageName != "photo.png" {
		t.Fatalf("unexpected image name: %s", svc.createParams.ImageName)
	}

	var envelope struct {
		Data createProductResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Product.Image == nil || *envelope.Data.Product.Image != image {
		t.Fatalf("expected stored filename in payload: %+v", envelope.Data.Product)
	}
}

func TestProductCreateMissingField(t *testing.T) {
	svc := &stubProductService{}
	handler := ProductCreate(svc, nil, 20)

	fields := validProductFields(uuid.New())
	delete(fields, "price")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, multipartProductRequest(t, fields, true))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.createParams != nil {
		t.Fatal("service should not be called on validation failure")
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if envelope.Error.Message != "all fields are required" {
		t.Fatalf("unexpected message: %s", envelope.Error.Message)
	}
}

func TestProductCreateMissingImage(t *testing.T) {
	handler := ProductCreate(&stubProductService{}, nil, 20)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, multipartProductRequest(t, validProductFields(uuid.New()), false))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProductCreateBadNumericFields(t *testing.T) {
	for name, mutate := range map[string]func(map[string]string){
		"bad category": func(f map[string]string) { f["category_id"] = "not-a-uuid" },
		"bad price":    func(f map[string]string) { f["price"] = "abc" },
		"bad stock":    func(f map[string]string) { f["stock"] = "many" },
	} {
		fields := validProductFields(uuid.New())
		mutate(fields)
		resp := httptest.NewRecorder()
		ProductCreate(&stubProductService{}, nil, 20).ServeHTTP(resp, multipartProductRequest(t, fields, true))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", name, resp.Code)
		}
	}
}

func TestProductListSuccess(t *testing.T) {
	image := "1.png"
	svc := &stubProductService{items: []products.ListItem{{
		ID:           uuid.New(),
		Name:         "Field Guide",
		CategoryName: "Books",
		Price:        decimal.RequireFromString("19.99"),
		Stock:        3,
		Image:        &image,
	}}}
	handler := ProductList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/product", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data []products.ListItem `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].CategoryName != "Books" {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestProductListStoreFailureIsGeneric500(t *testing.T) {
	svc := &stubProductService{listErr: pkgerrors.New(pkgerrors.CodeInternal, "list products")}
	handler := ProductList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/product", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code: %s", envelope.Error.Code)
	}
	if envelope.Error.Message != "internal server error" {
		t.Fatalf("internal detail must stay generic, got %q", envelope.Error.Message)
	}
}

func TestProductDeleteSuccess(t *testing.T) {
	svc := &stubProductService{}
	productID := uuid.New()

	router := chi.NewRouter()
	router.Delete("/api/product/{id}", ProductDelete(svc, nil))

	req := httptest.NewRequest(http.MethodDelete, "/api/product/"+productID.String(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.deletedID != productID {
		t.Fatalf("expected delete of %s, got %s", productID, svc.deletedID)
	}
}

func TestProductDeleteNotFound(t *testing.T) {
	svc := &stubProductService{deleteErr: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}

	router := chi.NewRouter()
	router.Delete("/api/product/{id}", ProductDelete(svc, nil))

	req := httptest.NewRequest(http.MethodDelete, "/api/product/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestProductDeleteBadID(t *testing.T) {
	router := chi.NewRouter()
	router.Delete("/api/product/{id}", ProductDelete(&stubProductService{}, nil))

	req := httptest.NewRequest(http.MethodDelete, "/api/product/not-a-uuid", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

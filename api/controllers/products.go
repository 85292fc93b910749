package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/msaleh-dev/catalog-backend/api/responses"
	"github.com/msaleh-dev/catalog-backend/api/validators"
	"github.com/msaleh-dev/catalog-backend/internal/products"
	"github.com/msaleh-dev/catalog-backend/pkg/db/models"
	pkgerrors "github.com/msaleh-dev/catalog-backend/pkg/errors"
	"github.com/msaleh-dev/catalog-backend/pkg/logger"
)

// createProductForm mirrors the multipart fields of the create endpoint.
type createProductForm struct {
	Name        string `json:"name" validate:"required"`
	CategoryID  string `json:"category_id" validate:"required,uuid"`
	Description string `json:"description" validate:"required"`
	Price       string `json:"price" validate:"required"`
	Stock       string `json:"stock" validate:"required"`
}

type productResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Image       *string         `json:"image"`
	CreatedAt   time.Time       `json:"created_at"`
}

type createProductResponse struct {
	Message string          `json:"message"`
	Product productResponse `json:"product"`
}

// ProductList returns all products joined with their category names.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ProductCreate handles the multipart create endpoint. Every field and
// the image file are required.
func ProductCreate(svc products.Service, logg *logger.Logger, maxUploadMB int) http.HandlerFunc {
	maxBytes := int64(maxUploadMB) * 1024 * 1024
	if maxBytes <= 0 {
		maxBytes = 20 * 1024 * 1024
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1024)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		form := createProductForm{
			Name:        r.FormValue("name"),
			CategoryID:  r.FormValue("category_id"),
			Description: r.FormValue("description"),
			Price:       r.FormValue("price"),
			Stock:       r.FormValue("stock"),
		}
		if err := validators.ValidateStruct(form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := uuid.Parse(form.CategoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "category_id must be a valid uuid"))
			return
		}
		price, err := decimal.NewFromString(form.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "price must be a number"))
			return
		}
		stock, err := strconv.Atoi(form.Stock)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "stock must be an integer"))
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "image is required"))
			return
		}
		defer file.Close()

		product, err := svc.Create(r.Context(), products.CreateParams{
			Name:        form.Name,
			CategoryID:  categoryID,
			Description: form.Description,
			Price:       price,
			Stock:       stock,
			Image:       file,
			ImageName:   header.Filename,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, createProductResponse{
			Message: "product created successfully",
			Product: toProductResponse(product),
		})
	}
}

// ProductDelete removes a product row and its stored image.
func ProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "id must be a valid uuid"))
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "product deleted successfully"})
	}
}

func toProductResponse(p *models.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		CategoryID:  p.CategoryID,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
	}
}

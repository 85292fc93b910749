package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/msaleh-dev/catalog-backend/pkg/db/models"
)

// ListItem is a product row joined with its category name, the shape
// the listing endpoint returns.
type ListItem struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	Image        *string         `json:"image"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateProductDTO holds the fields the repo needs to persist a product.
type CreateProductDTO struct {
	Name        string
	CategoryID  uuid.UUID
	Description string
	Price       decimal.Decimal
	Stock       int
	Image       string
}

func (c CreateProductDTO) ToModel() *models.Product {
	var image *string
	if c.Image != "" {
		img := c.Image
		image = &img
	}
	return &models.Product{
		ID:          uuid.New(),
		Name:        c.Name,
		CategoryID:  c.CategoryID,
		Description: c.Description,
		Price:       c.Price,
		Stock:       c.Stock,
		Image:       image,
	}
}

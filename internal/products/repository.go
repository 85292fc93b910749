package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/msaleh-dev/catalog-backend/pkg/db/models"
)

// Repository defines the persistence operations the product service needs.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, dto CreateProductDTO) (*models.Product, error) {
	product := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// ListWithCategory returns every product joined with its category name.
// Products whose category row is missing are omitted by the inner join.
func (r *Repository) ListWithCategory(ctx context.Context) ([]ListItem, error) {
	var items []ListItem
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("products.id, products.name, products.category_id, categories.name AS category_name, " +
			"products.description, products.price, products.stock, products.image, " +
			"products.created_at, products.updated_at").
		Joins("INNER JOIN categories ON categories.id = products.category_id").
		Order("products.created_at DESC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindByIDWithTx loads the product using the provided transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var product models.Product
	if err := tx.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteByIDWithTx removes the product row using the provided
// transaction. Deleting an absent row is not an error here; the service
// fetches first inside the same transaction.
func (r *Repository) DeleteByIDWithTx(tx *gorm.DB, id uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Delete(&models.Product{}, "id = ?", id).Error
}

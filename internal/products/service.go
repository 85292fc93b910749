package products

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/msaleh-dev/catalog-backend/pkg/db/models"
	pkgerrors "github.com/msaleh-dev/catalog-backend/pkg/errors"
	"github.com/msaleh-dev/catalog-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productRepository interface {
	Create(ctx context.Context, dto CreateProductDTO) (*models.Product, error)
	ListWithCategory(ctx context.Context) ([]ListItem, error)
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Product, error)
	DeleteByIDWithTx(tx *gorm.DB, id uuid.UUID) error
}

type categoryRepository interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type imageStore interface {
	Save(src io.Reader, originalName string) (string, error)
	Remove(filename string) error
}

type dlqRecorder interface {
	Record(ctx context.Context, filename, reason string, cause error) error
}

// Service exposes catalog product operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Product, error)
	List(ctx context.Context) ([]ListItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	db         txRunner
	repo       productRepository
	categories categoryRepository
	store      imageStore
	dlq        dlqRecorder
	logg       *logger.Logger
}

// NewService constructs the product service from its dependencies.
func NewService(db txRunner, repo productRepository, categories categoryRepository, store imageStore, dlq dlqRecorder, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repository required")
	}
	if categories == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category repository required")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image store required")
	}
	if dlq == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dlq recorder required")
	}
	return &service{db: db, repo: repo, categories: categories, store: store, dlq: dlq, logg: logg}, nil
}

// CreateParams models a product creation request, image included.
type CreateParams struct {
	Name        string
	CategoryID  uuid.UUID
	Description string
	Price       decimal.Decimal
	Stock       int
	Image       io.Reader
	ImageName   string
}

// Create saves the image first, then the row. When the insert fails the
// freshly written file is deleted again; if even that fails the filename
// is parked in the dead-letter table so the reconciler can retry.
func (s *service) Create(ctx context.Context, params CreateParams) (*models.Product, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if params.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category_id is required")
	}
	if strings.TrimSpace(params.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if params.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if params.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	if params.Image == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image is required")
	}

	ok, err := s.categories.Exists(ctx, params.CategoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category")
	}

	filename, err := s.store.Save(params.Image, params.ImageName)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.Create(ctx, CreateProductDTO{
		Name:        strings.TrimSpace(params.Name),
		CategoryID:  params.CategoryID,
		Description: strings.TrimSpace(params.Description),
		Price:       params.Price,
		Stock:       params.Stock,
		Image:       filename,
	})
	if err != nil {
		s.cleanupOrphan(ctx, filename)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist product")
	}
	return product, nil
}

// List returns all products with their category names.
func (s *service) List(ctx context.Context) ([]ListItem, error) {
	items, err := s.repo.ListWithCategory(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	if items == nil {
		items = []ListItem{}
	}
	return items, nil
}

// Delete removes the row first, then deletes the stored image. The
// fetch and row delete share one transaction. A file that cannot be
// removed is logged and parked for the reconciler; the request still
// succeeds once the row is gone.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var product *models.Product
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		found, err := s.repo.FindByIDWithTx(tx, id)
		if err != nil {
			return err
		}
		product = found
		return s.repo.DeleteByIDWithTx(tx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}

	if product.Image != nil && *product.Image != "" {
		if err := s.store.Remove(*product.Image); err != nil {
			s.parkFile(ctx, *product.Image, models.UploadDLQReasonDeleteFailed, err)
		}
	}
	return nil
}

func (s *service) cleanupOrphan(ctx context.Context, filename string) {
	if err := s.store.Remove(filename); err != nil {
		s.parkFile(ctx, filename, models.UploadDLQReasonOrphanedWrite, err)
	}
}

func (s *service) parkFile(ctx context.Context, filename, reason string, cause error) {
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"filename": filename,
			"reason":   reason,
		})
		s.logg.Error(logCtx, "products.image_cleanup_failed", cause)
	}
	if err := s.dlq.Record(ctx, filename, reason, cause); err != nil && s.logg != nil {
		s.logg.Error(ctx, "products.dead_letter_record_failed", err)
	}
}

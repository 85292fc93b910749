package controllers

import (
	"context"
	"net/http"

	"github.com/msaleh-dev/catalog-backend/api/responses"
	"github.com/msaleh-dev/catalog-backend/pkg/db/models"
	pkgerrors "github.com/msaleh-dev/catalog-backend/pkg/errors"
	"github.com/msaleh-dev/catalog-backend/pkg/logger"
)

// CategoryLister is the read surface the listing endpoint needs.
type CategoryLister interface {
	ListAll(ctx context.Context) ([]models.Category, error)
}

// CategoryList returns the seeded category set.
func CategoryList(repo CategoryLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category repository unavailable"))
			return
		}

		cats, err := repo.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories"))
			return
		}
		if cats == nil {
			cats = []models.Category{}
		}
		responses.WriteSuccess(w, cats)
	}
}

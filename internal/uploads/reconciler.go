package uploads

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/msaleh-dev/catalog-backend/pkg/db/models"
	pkgerrors "github.com/msaleh-dev/catalog-backend/pkg/errors"
	"github.com/msaleh-dev/catalog-backend/pkg/logger"
)

type fileStore interface {
	Remove(filename string) error
}

type dlqRepository interface {
	ListUnresolved(ctx context.Context, limit int) ([]models.UploadDLQ, error)
	MarkResolved(ctx context.Context, id uuid.UUID) error
	MarkAttempt(ctx context.Context, id uuid.UUID, cause error) error
}

// Reconciler retries upload-directory cleanups that failed in the
// request path and were parked in the dead-letter table.
type Reconciler struct {
	store fileStore
	repo  dlqRepository
	logg  *logger.Logger
	batch int
}

func NewReconciler(store fileStore, repo dlqRepository, logg *logger.Logger, batch int) (*Reconciler, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file store required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dlq repository required")
	}
	if batch <= 0 {
		batch = 50
	}
	return &Reconciler{store: store, repo: repo, logg: logg, batch: batch}, nil
}

// Run sweeps on the given interval until the context is cancelled.
// A non-positive interval falls back to the default.
func (r *Reconciler) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = 10 * time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil && r.logg != nil {
				r.logg.Error(ctx, "uploads.reconcile.sweep_failed", err)
			}
		}
	}
}

// Sweep processes one batch of unresolved rows. Per-row failures are
// recorded on the row and aggregated into the returned error; a failed
// row never stops the rest of the batch.
func (r *Reconciler) Sweep(ctx context.Context) error {
	rows, err := r.repo.ListUnresolved(ctx, r.batch)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dead-letter rows")
	}

	var errs error
	for _, row := range rows {
		if err := r.reconcileRow(ctx, row); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (r *Reconciler) reconcileRow(ctx context.Context, row models.UploadDLQ) error {
	removeErr := r.store.Remove(row.Filename)
	if removeErr == nil {
		if r.logg != nil {
			logCtx := r.logg.WithFields(ctx, map[string]any{
				"filename": row.Filename,
				"reason":   row.Reason,
				"attempts": row.Attempts,
			})
			r.logg.Info(logCtx, "uploads.reconcile.resolved")
		}
		return r.repo.MarkResolved(ctx, row.ID)
	}

	if err := r.repo.MarkAttempt(ctx, row.ID, removeErr); err != nil {
		return multierr.Append(removeErr, err)
	}
	return removeErr
}

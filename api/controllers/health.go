package controllers

import (
	"net/http"

	"github.com/msaleh-dev/catalog-backend/api/responses"
	"github.com/msaleh-dev/catalog-backend/pkg/db"
	pkgerrors "github.com/msaleh-dev/catalog-backend/pkg/errors"
	"github.com/msaleh-dev/catalog-backend/pkg/logger"
)

// HealthLive reports process liveness.
func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// HealthReady reports readiness by pinging the database.
func HealthReady(pinger db.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database unavailable"))
			return
		}
		if err := pinger.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ping database"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

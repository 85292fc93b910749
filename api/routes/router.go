package routes

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/msaleh-dev/catalog-backend/api/controllers"
	"github.com/msaleh-dev/catalog-backend/api/middleware"
	"github.com/msaleh-dev/catalog-backend/api/responses"
	"github.com/msaleh-dev/catalog-backend/internal/auth"
	"github.com/msaleh-dev/catalog-backend/internal/products"
	"github.com/msaleh-dev/catalog-backend/pkg/config"
	"github.com/msaleh-dev/catalog-backend/pkg/db"
	pkgerrors "github.com/msaleh-dev/catalog-backend/pkg/errors"
	"github.com/msaleh-dev/catalog-backend/pkg/logger"
	"github.com/msaleh-dev/catalog-backend/pkg/metrics"
	"github.com/msaleh-dev/catalog-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	registerService auth.RegisterService,
	productService products.Service,
	categoryRepo controllers.CategoryLister,
	userRepo controllers.UserFinder,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	rateLimit := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if redisClient == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(policy, redisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(dbP, logg))
	})

	if httpMetrics != nil {
		r.Handle("/metrics", httpMetrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.With(rateLimit(registerPolicy)).Post("/register", controllers.AuthRegister(registerService, logg))
		r.With(rateLimit(loginPolicy)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).Get("/me", controllers.AuthMe(userRepo, logg))

		r.Get("/category", controllers.CategoryList(categoryRepo, logg))
		r.Get("/product", controllers.ProductList(productService, logg))
		r.Post("/addProduct", controllers.ProductCreate(productService, logg, cfg.Uploads.MaxUploadMB))
		r.Delete("/product/{id}", controllers.ProductDelete(productService, logg))
	})

	r.Get("/uploads/*", uploadsHandler(cfg.Uploads.Dir, logg))

	r.NotFound(spaHandler(cfg.Static.ClientDir, cfg.Static.IndexFile))

	return r
}

// uploadsHandler serves raw files out of the upload directory. Anything
// that is not a bare filename inside the directory is a 404.
func uploadsHandler(dir string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "*")
		if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "file not found"))
			return
		}

		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "file not found"))
			return
		}
		http.ServeFile(w, r, path)
	}
}

// spaHandler serves the prebuilt web client, falling back to its index
// document so client-side routes deep-link correctly.
func spaHandler(clientDir, indexFile string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}

		rel := filepath.Clean("/" + r.URL.Path)
		path := filepath.Join(clientDir, rel)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.ServeFile(w, r, filepath.Join(clientDir, indexFile))
	}
}

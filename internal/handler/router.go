package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/recipebox/recipe-api/internal/middleware"
	"github.com/recipebox/recipe-api/internal/service"
)

// RouterConfig carries everything the HTTP API needs.
type RouterConfig struct {
	Auth           *service.AuthService
	Tags           *service.AttributeService
	Ingredients    *service.AttributeService
	Recipes        *service.RecipeService
	MaxUploadBytes int64

	// CORSOrigins enables cross-origin requests from the listed origins.
	CORSOrigins []string

	// Registry, when set, receives HTTP metrics and is exposed on /metrics.
	Registry *prometheus.Registry

	// MediaRoot and MediaPrefix serve locally stored images. Leave MediaRoot
	// empty when images live elsewhere.
	MediaRoot   string
	MediaPrefix string
}

// NewRouter builds the chi router for the whole API.
func NewRouter(cfg RouterConfig) http.Handler {
	users := NewUserHandler(cfg.Auth)
	tags := NewAttributeHandler(cfg.Tags)
	ingredients := NewAttributeHandler(cfg.Ingredients)
	recipes := NewRecipeHandler(cfg.Recipes, cfg.MaxUploadBytes)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	if cfg.Registry != nil {
		r.Use(middleware.NewMetrics(cfg.Registry).Instrument)
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse("not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse("method not allowed"))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	r.Post("/api/user/create", users.HandleCreate)
	r.Post("/api/user/token", users.HandleToken)

	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(cfg.Auth))

		r.Get("/api/user/me", users.HandleMe)
		r.Patch("/api/user/me", users.HandleUpdateMe)

		r.Get("/api/recipe/tags", tags.HandleList)
		r.Post("/api/recipe/tags", tags.HandleCreate)
		r.Get("/api/recipe/ingredients", ingredients.HandleList)
		r.Post("/api/recipe/ingredients", ingredients.HandleCreate)

		r.Get("/api/recipe/recipes", recipes.HandleList)
		r.Post("/api/recipe/recipes", recipes.HandleCreate)
		r.Get("/api/recipe/recipes/{id}", recipes.HandleGet)
		r.Put("/api/recipe/recipes/{id}", recipes.HandleReplace)
		r.Patch("/api/recipe/recipes/{id}", recipes.HandlePatch)
		r.Delete("/api/recipe/recipes/{id}", recipes.HandleDelete)
		r.Post("/api/recipe/recipes/{id}/upload-image", recipes.HandleUploadImage)
	})

	if p := strings.Trim(cfg.MediaPrefix, "/"); cfg.MediaRoot != "" && p != "" {
		prefix := "/" + p + "/"
		r.Get(prefix+"*", mediaHandler(prefix, cfg.MediaRoot))
	}

	return r
}

// mediaHandler serves files below root without directory listings.
func mediaHandler(prefix, root string) http.HandlerFunc {
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(root)))
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			writeJSON(w, http.StatusNotFound, errorResponse("not found"))
			return
		}
		files.ServeHTTP(w, r)
	}
}

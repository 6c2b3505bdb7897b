package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veo1/online-marketplace/app/middleware"
	"github.com/veo1/online-marketplace/app/products"
	"github.com/veo1/online-marketplace/app/users"
	"github.com/veo1/online-marketplace/app/welcome"
)

// Deps are the handlers and settings the router is built from.
type Deps struct {
	Products     *products.ProductHandler
	Users        *users.UserHandler
	Welcome      http.Handler
	Logger       *slog.Logger
	Registry     *prometheus.Registry
	LegacyRoutes bool
	// WriteTimeout is the http.Server write timeout. Requests are cancelled
	// shortly before it so the handler can still answer.
	WriteTimeout time.Duration
}

const defaultRequestTimeout = 60 * time.Second

// requestTimeout leaves a tenth of the write timeout for the response.
func requestTimeout(writeTimeout time.Duration) time.Duration {
	if writeTimeout <= 0 {
		return defaultRequestTimeout
	}
	return writeTimeout - writeTimeout/10
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}
	if d.Welcome == nil {
		d.Welcome = welcome.NewHandler("Online Marketplace", d.Logger)
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.NewMetrics(d.Registry).Handler)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout(d.WriteTimeout)))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Method(http.MethodGet, "/", d.Welcome)
	r.Get("/health", health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))

	r.Get("/users/{userId}", d.Users.HandleGet)
	d.Products.Register(r, d.LegacyRoutes)

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

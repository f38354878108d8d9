package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/review"
	"github.com/utafrali/storefront/internal/session"
)

const serviceName = "storefront"

// RouterConfig holds the HTTP-level options.
type RouterConfig struct {
	CORS        middleware.CORSConfig
	ReviewLimit middleware.RateLimitConfig
}

// NewRouter creates a chi router with all storefront routes registered.
// Background work started by the router stops when ctx is done.
func NewRouter(
	ctx context.Context,
	products *catalog.Store,
	reviews *review.Store,
	sessions *session.Manager,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Session)
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	productHandler := NewProductHandler(products, reviews, logger)
	searchHandler := NewSearchHandler(sessions, logger)
	cartHandler := NewCartHandler(products, sessions, logger)
	wishlistHandler := NewWishlistHandler(products, sessions, logger)
	reviewHandler := NewReviewHandler(products, reviews, logger)
	limitReviews := middleware.RateLimit(ctx, cfg.ReviewLimit, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/facets", productHandler.Facets)
			r.Get("/suggestions", productHandler.Suggestions)
			r.Get("/{id}", productHandler.Get)
			r.Get("/{id}/reviews", reviewHandler.ListForProduct)
			r.With(limitReviews).Post("/{id}/reviews", reviewHandler.Submit)
		})

		r.Route("/session", func(r chi.Router) {
			r.Delete("/", searchHandler.EndSession)

			r.Route("/search", func(r chi.Router) {
				r.Get("/", searchHandler.Get)
				r.Post("/init", searchHandler.Init)
				r.Patch("/filters", searchHandler.UpdateFilters)
				r.Delete("/filters", searchHandler.ClearFilters)
				r.Put("/sort", searchHandler.UpdateSort)
				r.Post("/query", searchHandler.Search)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlistHandler.Get)
				r.Delete("/", wishlistHandler.Clear)
				r.Post("/items", wishlistHandler.Add)
				r.Delete("/items/{id}", wishlistHandler.Remove)
				r.Post("/items/{id}/toggle", wishlistHandler.Toggle)
				r.Post("/items/{id}/move-to-cart", wishlistHandler.MoveToCart)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.Get)
				r.Delete("/", cartHandler.Clear)
				r.Post("/items", cartHandler.AddItem)
				r.Patch("/items/{id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{id}", cartHandler.RemoveItem)
			})
		})

		r.Route("/reviews/{id}", func(r chi.Router) {
			r.Patch("/", reviewHandler.Update)
			r.Delete("/", reviewHandler.Delete)
			r.Post("/votes", reviewHandler.Vote)
		})

		r.Get("/users/{id}/reviews", reviewHandler.ListForUser)

		r.Route("/admin/reviews", func(r chi.Router) {
			r.Get("/", reviewHandler.Queue)
			r.Post("/{id}/moderation", reviewHandler.Moderate)
		})
	})

	return r
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/sweetshop/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Handlers struct {
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Auth     *AuthHandler
	Orders   *OrderHandler
	Payments *PaymentHandler
	Comments *CommentHandler
	Status   *StatusHandler
}

type RouterConfig struct {
	RequestTimeout time.Duration
	ServiceName    string
}

// NewRouter mounts every route under /api/v1 plus /health and wraps the
// result in OpenTelemetry instrumentation.
func NewRouter(h Handlers, cfg RouterConfig, log *slog.Logger) http.Handler {
	log = logger.OrNop(log)
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "storefront"
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(log.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.Status.Status)
		r.Delete("/session", h.Status.EndSession)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Catalog.ListProducts)
			r.Get("/{id}", h.Catalog.GetProduct)
			r.Get("/{id}/comments", h.Comments.ListByProduct)
			r.Post("/{id}/comments", h.Comments.AddComment)
		})
		r.Get("/stores", h.Catalog.ListStores)
		r.Get("/stores/cities", h.Catalog.Cities)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{item_id}", h.Cart.UpdateQuantity)
			r.Delete("/items/{item_id}", h.Cart.RemoveItem)
			r.Post("/items/{item_id}/toggle", h.Cart.ToggleSelected)
			r.Post("/select", h.Cart.SelectAll)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/register", h.Auth.Register)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/me", h.Auth.Me)
			r.Patch("/me", h.Auth.UpdateMe)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Auth.AdminLogin)
			r.Post("/logout", h.Auth.AdminLogout)
			r.Get("/me", h.Auth.AdminMe)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.Orders.PlaceOrder)
			r.Get("/", h.Orders.ListOrders)
			r.Get("/{id}", h.Orders.GetOrder)
			r.Put("/{id}/status", h.Orders.UpdateStatus)
			r.Post("/{id}/cancel", h.Orders.CancelOrder)
			r.Post("/{id}/pay", h.Orders.Pay)
		})

		r.Route("/payment", func(r chi.Router) {
			r.Get("/", h.Payments.GetPayment)
			r.Put("/method", h.Payments.SetMethod)
			r.Delete("/", h.Payments.Reset)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Post("/{id}/like", h.Comments.Like)
			r.Delete("/{id}", h.Comments.Delete)
		})
	})

	return otelhttp.NewHandler(r, cfg.ServiceName)
}

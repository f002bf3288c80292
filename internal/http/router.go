package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/coldfrontcalls/cart-service-go/internal/middleware"
)

type RouterOptions struct {
	Logger           *zap.Logger
	CORSAllowOrigins []string
	Cookie           middleware.CartCookieOptions
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := opts.CORSAllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(origins))

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CartID(opts.Cookie))

		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Get("/upsell", h.GetUpsell)
			r.Post("/items", h.AddItem)
			r.Put("/items/{id}", h.UpdateQuantity)
			r.Delete("/items/{id}", h.RemoveItem)
		})

		r.Route("/api/checkout", func(r chi.Router) {
			r.Get("/", h.GetCheckout)
			r.Post("/", h.BeginCheckout)
			r.Post("/upsell/accept", h.AcceptUpsell)
			r.Post("/upsell/decline", h.DeclineUpsell)
			r.Post("/submit", h.SubmitOrder)
			r.Post("/confirm", h.ConfirmOrder)
		})
	})

	return r
}

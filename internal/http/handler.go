package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/coldfrontcalls/cart-service-go/internal/cart"
	"github.com/coldfrontcalls/cart-service-go/internal/checkout"
	"github.com/coldfrontcalls/cart-service-go/internal/contracts"
	"github.com/coldfrontcalls/cart-service-go/internal/middleware"
	"github.com/coldfrontcalls/cart-service-go/internal/session"
)

// Sessions gives serialized access to the session of one anonymous cart.
type Sessions interface {
	Do(ctx context.Context, cartID string, fn func(*session.Session) error) error
}

type Handler struct {
	sessions      Sessions
	logger        *zap.Logger
	submitTimeout time.Duration
}

func NewHandler(sessions Sessions, logger *zap.Logger, submitTimeout time.Duration) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if submitTimeout <= 0 {
		submitTimeout = 8 * time.Second
	}
	return &Handler{sessions: sessions, logger: logger, submitTimeout: submitTimeout}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "cart-service"})
}

// withSession runs fn on the caller's session.
func (h *Handler) withSession(r *http.Request, fn func(*session.Session) error) error {
	return h.sessions.Do(r.Context(), middleware.GetCartID(r.Context()), fn)
}

// fail maps an error to its HTTP answer.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, errBadRequest):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, contracts.ErrInvalidCustomer):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, checkout.ErrEmptyCart):
		status, msg = http.StatusConflict, "cart is empty"
	case errors.Is(err, checkout.ErrInvalidTransition):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, checkout.ErrSubmissionFailed):
		status, msg = http.StatusBadGateway, "order could not be submitted, please try again"
	}

	if status >= 500 {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("cartId", middleware.GetCartID(r.Context())),
			zap.String("correlationId", middleware.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
	}
	middleware.WriteError(w, r, status, msg)
}

var errBadRequest = errors.New("bad request")

func badRequest(msg string) error {
	return fmt.Errorf("%w: %s", errBadRequest, msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(v); err != nil {
		return badRequest("invalid json")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type itemView struct {
	ID        cart.ID `json:"id"`
	Name      string  `json:"name"`
	Price     string  `json:"price"`
	Image     string  `json:"image,omitempty"`
	Category  string  `json:"category"`
	Quantity  int     `json:"quantity"`
	LineTotal string  `json:"lineTotal"`
}

type cartView struct {
	Items     []itemView `json:"items"`
	ItemCount int        `json:"itemCount"`
	Subtotal  string     `json:"subtotal"`
	Upsell    *string    `json:"upsell"`
	OpenCart  bool       `json:"openCart,omitempty"`
}

func newCartView(s *cart.Store) cartView {
	items := s.Items()
	v := cartView{
		Items:     make([]itemView, 0, len(items)),
		ItemCount: s.ItemCount(),
		Subtotal:  s.Subtotal().StringFixed(2),
		Upsell:    categoryPtr(s.UpsellOpportunity()),
	}
	for _, it := range items {
		v.Items = append(v.Items, itemView{
			ID:        it.ID,
			Name:      it.Name,
			Price:     it.Price.StringFixed(2),
			Image:     it.Image,
			Category:  it.Category,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal().StringFixed(2),
		})
	}
	return v
}

func categoryPtr(c cart.Category) *string {
	if c == cart.CategoryNone {
		return nil
	}
	s := string(c)
	return &s
}

package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/coldfrontcalls/cart-service-go/internal/cart"
	"github.com/coldfrontcalls/cart-service-go/internal/session"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	var view cartView
	err := h.withSession(r, func(s *session.Session) error {
		view = newCartView(s.Cart)
		return nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type addItemRequest struct {
	ID       cart.ID         `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Category string          `json:"category"`
}

// AddItem puts one unit of the posted product in the cart. The response asks
// the storefront to open its cart panel.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if strings.TrimSpace(string(req.ID)) == "" {
		h.fail(w, r, badRequest("id is required"))
		return
	}
	if req.Price.IsNegative() {
		h.fail(w, r, badRequest("price must not be negative"))
		return
	}

	var view cartView
	err := h.withSession(r, func(s *session.Session) error {
		err := s.Cart.AddItem(r.Context(), cart.Candidate{
			ID:       req.ID,
			Name:     req.Name,
			Price:    req.Price,
			Image:    req.Image,
			Category: req.Category,
		})
		view = newCartView(s.Cart)
		return err
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view.OpenCart = true
	writeJSON(w, http.StatusOK, view)
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Quantity == nil {
		h.fail(w, r, badRequest("quantity is required"))
		return
	}

	id := cart.ID(chi.URLParam(r, "id"))
	h.mutate(w, r, func(s *session.Session) error {
		return s.Cart.UpdateQuantity(r.Context(), id, *req.Quantity)
	})
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := cart.ID(chi.URLParam(r, "id"))
	h.mutate(w, r, func(s *session.Session) error {
		return s.Cart.RemoveItem(r.Context(), id)
	})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(s *session.Session) error {
		return s.Checkout.Abandon(r.Context())
	})
}

func (h *Handler) GetUpsell(w http.ResponseWriter, r *http.Request) {
	var category *string
	err := h.withSession(r, func(s *session.Session) error {
		category = categoryPtr(s.Cart.UpsellOpportunity())
		return nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*string{"category": category})
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	var view cartView
	err := h.withSession(r, func(s *session.Session) error {
		wasEmpty := s.Cart.IsEmpty()
		err := fn(s)
		if err == nil && !wasEmpty && s.Cart.IsEmpty() {
			// an emptied cart ends the checkout session
			err = s.Checkout.Abandon(r.Context())
		}
		view = newCartView(s.Cart)
		return err
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

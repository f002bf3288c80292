package httpapi

import (
	"context"
	"net/http"

	"github.com/coldfrontcalls/cart-service-go/internal/checkout"
	"github.com/coldfrontcalls/cart-service-go/internal/contracts"
	"github.com/coldfrontcalls/cart-service-go/internal/middleware"
	"github.com/coldfrontcalls/cart-service-go/internal/session"
)

const successPath = "/success"

type checkoutView struct {
	State  checkout.State   `json:"state"`
	Upsell *checkout.Prompt `json:"upsell,omitempty"`
	Cart   *cartView        `json:"cart,omitempty"`
}

type submitView struct {
	State    checkout.State `json:"state"`
	OrderID  string         `json:"orderId"`
	Summary  string         `json:"summary"`
	Total    string         `json:"total"`
	Redirect string         `json:"redirect"`
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	var view checkoutView
	err := h.withSession(r, func(s *session.Session) error {
		view = checkoutView{State: s.Checkout.State(), Upsell: s.Checkout.Prompt()}
		return nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// BeginCheckout answers checkout intent with either the upsell prompt or
// the go-ahead for the hand-off.
func (h *Handler) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	var view checkoutView
	err := h.withSession(r, func(s *session.Session) error {
		d, err := s.Checkout.Begin()
		view = checkoutView{State: d.State, Upsell: d.Prompt}
		return err
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) AcceptUpsell(w http.ResponseWriter, r *http.Request) {
	h.resolveUpsell(w, r, func(ctx context.Context, o *checkout.Orchestrator) (checkout.Decision, error) {
		return o.Accept(ctx)
	})
}

func (h *Handler) DeclineUpsell(w http.ResponseWriter, r *http.Request) {
	h.resolveUpsell(w, r, func(_ context.Context, o *checkout.Orchestrator) (checkout.Decision, error) {
		return o.Decline()
	})
}

func (h *Handler) resolveUpsell(w http.ResponseWriter, r *http.Request, fn func(context.Context, *checkout.Orchestrator) (checkout.Decision, error)) {
	var view checkoutView
	err := h.withSession(r, func(s *session.Session) error {
		d, err := fn(r.Context(), s.Checkout)
		cv := newCartView(s.Cart)
		view = checkoutView{State: d.State, Cart: &cv}
		return err
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SubmitOrder hands the order off with the shopper's shipping details.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var customer contracts.Customer
	if err := decodeJSON(w, r, &customer); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.submitTimeout)
	defer cancel()

	var view submitView
	err := h.sessions.Do(ctx, middleware.GetCartID(r.Context()), func(s *session.Session) error {
		summary, err := s.Checkout.Submit(ctx, customer)
		view = submitView{
			State:    s.Checkout.State(),
			OrderID:  summary.OrderID,
			Summary:  summary.Text(),
			Total:    summary.TotalField(),
			Redirect: successPath,
		}
		return err
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ConfirmOrder is called from the order confirmation page and empties the
// cart if the hand-off did not already.
func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	var view checkoutView
	err := h.withSession(r, func(s *session.Session) error {
		err := s.Checkout.ConfirmLanding(r.Context())
		cv := newCartView(s.Cart)
		view = checkoutView{State: s.Checkout.State(), Cart: &cv}
		return err
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

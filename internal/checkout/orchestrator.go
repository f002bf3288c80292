package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/coldfrontcalls/cart-service-go/internal/cart"
	"github.com/coldfrontcalls/cart-service-go/internal/contracts"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid checkout transition")
	ErrSubmissionFailed  = errors.New("order submission failed")
)

// ProductLookup resolves a recommended category to the product offered for it.
type ProductLookup interface {
	Lookup(c cart.Category) (cart.Candidate, bool)
}

// Prompt is the upsell interstitial offered to the shopper.
type Prompt struct {
	Category cart.Category  `json:"category"`
	Label    string         `json:"label"`
	Product  cart.Candidate `json:"product"`
}

type Decision struct {
	State  State   `json:"state"`
	Prompt *Prompt `json:"upsell,omitempty"`
}

type Options struct {
	CartID string
	Policy ClearPolicy
	Logger *zap.Logger
	Now    func() time.Time
}

// Orchestrator sequences one cart from checkout intent to a handed-off order.
// It offers the upsell at most once per checkout session. Like cart.Store it
// is not safe for concurrent use.
type Orchestrator struct {
	store     *cart.Store
	products  ProductLookup
	submitter Submitter
	cartID    string
	policy    ClearPolicy
	logger    *zap.Logger
	now       func() time.Time

	state       State
	upsellShown bool
	prompt      *Prompt
	// last order whose hand-off failed; a retry of the same order keeps its id
	pending *contracts.OrderSummary
}

func New(store *cart.Store, products ProductLookup, submitter Submitter, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Orchestrator{
		store:     store,
		products:  products,
		submitter: submitter,
		cartID:    opts.CartID,
		policy:    opts.Policy,
		logger:    logger.With(zap.String("cartId", opts.CartID)),
		now:       now,
		state:     Idle,
	}
}

func (o *Orchestrator) State() State { return o.state }

// Prompt returns the pending upsell offer, or nil outside upsell-prompt.
func (o *Orchestrator) Prompt() *Prompt {
	if o.state != UpsellPrompt {
		return nil
	}
	return o.prompt
}

// Begin handles checkout intent. An empty cart is refused with ErrEmptyCart
// and leaves the state untouched. Starting again after a completed order
// opens a new session in which the upsell may be offered again.
func (o *Orchestrator) Begin() (Decision, error) {
	if o.store.IsEmpty() {
		return Decision{State: o.state}, ErrEmptyCart
	}

	if o.state == CartCleared {
		o.upsellShown = false
		o.pending = nil
	}
	o.prompt = nil
	o.state = UpsellCheck

	if cat := o.store.UpsellOpportunity(); cat != cart.CategoryNone && !o.upsellShown {
		if p, ok := o.products.Lookup(cat); ok {
			o.upsellShown = true
			o.prompt = &Prompt{Category: cat, Label: cat.Label(), Product: p}
			o.state = UpsellPrompt
			o.logger.Debug("upsell offered", zap.String("category", string(cat)), zap.String("productId", string(p.ID)))
			return Decision{State: o.state, Prompt: o.prompt}, nil
		}
		o.logger.Warn("no upsell product configured", zap.String("category", string(cat)))
	}

	o.state = DirectHandoff
	return Decision{State: o.state}, nil
}

// Accept adds the offered product to the cart and moves on to the hand-off.
// If the cart changed since the offer and no longer calls for it, nothing is
// added. A persistence fault is returned after the transition has happened;
// the product stays in the in-memory cart.
func (o *Orchestrator) Accept(ctx context.Context) (Decision, error) {
	if o.state != UpsellPrompt {
		return Decision{State: o.state}, fmt.Errorf("%w: accept from %s", ErrInvalidTransition, o.state)
	}
	offer := o.prompt
	o.prompt = nil
	o.state = DirectHandoff

	if current := o.store.UpsellOpportunity(); current != offer.Category {
		o.logger.Info("upsell no longer applies, not added",
			zap.String("offered", string(offer.Category)),
			zap.String("current", string(current)),
		)
		return Decision{State: o.state}, nil
	}

	if err := o.store.AddItem(ctx, offer.Product); err != nil {
		return Decision{State: o.state}, fmt.Errorf("add upsell product: %w", err)
	}
	return Decision{State: o.state}, nil
}

// Decline skips the offer. Checkout continues.
func (o *Orchestrator) Decline() (Decision, error) {
	if o.state != UpsellPrompt {
		return Decision{State: o.state}, fmt.Errorf("%w: decline from %s", ErrInvalidTransition, o.state)
	}
	o.prompt = nil
	o.state = DirectHandoff
	return Decision{State: o.state}, nil
}

// Submit builds the order summary and hands it to the submitter, then clears
// the cart according to the clear policy. The summary is returned even when
// the hand-off failed.
func (o *Orchestrator) Submit(ctx context.Context, customer contracts.Customer) (contracts.OrderSummary, error) {
	if o.state != DirectHandoff {
		return contracts.OrderSummary{}, fmt.Errorf("%w: submit from %s", ErrInvalidTransition, o.state)
	}
	if o.store.IsEmpty() {
		return contracts.OrderSummary{}, ErrEmptyCart
	}

	customer = customer.Sanitize()
	if err := customer.Validate(); err != nil {
		return contracts.OrderSummary{}, err
	}

	summary := contracts.BuildOrderSummary(o.cartID, o.store.Items(), customer, contracts.SummaryOptions{
		CreatedAt: o.now(),
	})
	if o.pending != nil && o.pending.Customer == summary.Customer && o.pending.Text() == summary.Text() {
		summary.OrderID = o.pending.OrderID
	}
	o.state = OrderSubmitted

	var submitErr error
	if err := o.submitter.Submit(ctx, summary); err != nil {
		submitErr = fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
		o.logger.Error("order hand-off failed",
			zap.String("orderId", summary.OrderID),
			zap.Stringer("clearPolicy", o.policy),
			zap.Error(err),
		)
		if o.policy == ClearOnSuccess {
			o.state = DirectHandoff
			o.pending = &summary
			return summary, submitErr
		}
	}

	o.pending = nil
	o.state = CartCleared
	if err := o.store.Clear(ctx); err != nil {
		return summary, errors.Join(submitErr, fmt.Errorf("clear cart: %w", err))
	}
	if submitErr == nil {
		o.logger.Info("order handed off",
			zap.String("orderId", summary.OrderID),
			zap.String("total", summary.TotalField()),
		)
	}
	return summary, submitErr
}

// ConfirmLanding clears the cart when the shopper reaches the order
// confirmation page, in case the hand-off path did not.
func (o *Orchestrator) ConfirmLanding(ctx context.Context) error {
	o.prompt = nil
	o.pending = nil
	o.state = CartCleared
	if err := o.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Abandon ends the checkout session because the shopper emptied the cart
// outside checkout. A later checkout on a new cart starts a new session.
func (o *Orchestrator) Abandon(ctx context.Context) error {
	o.prompt = nil
	o.pending = nil
	o.state = CartCleared
	if o.store.IsEmpty() {
		return nil
	}
	if err := o.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/coldfrontcalls/cart-service-go/internal/cart"
	"github.com/coldfrontcalls/cart-service-go/internal/checkout"
)

const DefaultIdleTTL = 30 * time.Minute

// Session is the state of one anonymous shopper.
type Session struct {
	ID       string
	Cart     *cart.Store
	Checkout *checkout.Orchestrator
}

type Config struct {
	Slots      cart.SlotStore
	StorageKey string
	Products   checkout.ProductLookup
	Submitter  checkout.Submitter
	Policy     checkout.ClearPolicy
	IdleTTL    time.Duration
	Logger     *zap.Logger
	Now        func() time.Time
}

// Registry owns the live sessions. Work on one session is serialized through
// Do; different sessions proceed in parallel.
type Registry struct {
	cfg    Config
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	sess *Session

	// guarded by Registry.mu
	lastUsed time.Time
	active   int
}

func NewRegistry(cfg Config) *Registry {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*entry),
	}
}

// Do runs fn with exclusive access to the session of cartID, restoring the
// persisted cart on first use.
func (r *Registry) Do(ctx context.Context, cartID string, fn func(*Session) error) error {
	if cartID == "" {
		return errors.New("session: empty cart id")
	}

	r.mu.Lock()
	e, ok := r.sessions[cartID]
	if !ok {
		e = &entry{}
		r.sessions[cartID] = e
	}
	e.active++
	e.lastUsed = r.cfg.Now()
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		e.active--
		e.lastUsed = r.cfg.Now()
		r.mu.Unlock()
	}()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		sess, err := r.open(ctx, cartID)
		if err != nil {
			return err
		}
		e.sess = sess
	}
	return fn(e.sess)
}

func (r *Registry) open(ctx context.Context, cartID string) (*Session, error) {
	logger := r.logger.With(zap.String("cartId", cartID))
	p := cart.NewSlotPersistence(r.cfg.Slots, cart.SlotKey(r.cfg.StorageKey, cartID), logger)
	store, err := cart.Restore(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return &Session{
		ID:   cartID,
		Cart: store,
		Checkout: checkout.New(store, r.cfg.Products, r.cfg.Submitter, checkout.Options{
			CartID: cartID,
			Policy: r.cfg.Policy,
			Logger: r.logger,
		}),
	}, nil
}

// Sweep drops sessions idle for longer than the TTL and reports how many
// went. Their carts stay persisted; only checkout progress is lost.
func (r *Registry) Sweep() int {
	cutoff := r.cfg.Now().Add(-r.cfg.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, e := range r.sessions {
		if e.active == 0 && e.lastUsed.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Run sweeps idle sessions until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := r.cfg.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Debug("evicted idle sessions", zap.Int("count", n), zap.Int("remaining", r.Len()))
			}
		}
	}
}

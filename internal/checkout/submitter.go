package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/coldfrontcalls/cart-service-go/internal/contracts"
)

// Submitter hands a finished order to an external collaborator (form
// backend, message bus).
type Submitter interface {
	Submit(ctx context.Context, s contracts.OrderSummary) error
}

type SubmitterFunc func(ctx context.Context, s contracts.OrderSummary) error

func (f SubmitterFunc) Submit(ctx context.Context, s contracts.OrderSummary) error {
	return f(ctx, s)
}

// FanoutSubmitter hands the same order to every collaborator, in order, and
// reports all of their failures together. When an order is submitted again
// under the same OrderID, collaborators that already accepted it are skipped.
type FanoutSubmitter struct {
	targets []namedSubmitter

	mu        sync.Mutex
	delivered map[string]map[string]bool // order id -> target names
}

type namedSubmitter struct {
	name string
	s    Submitter
}

func NewFanoutSubmitter() *FanoutSubmitter {
	return &FanoutSubmitter{delivered: make(map[string]map[string]bool)}
}

// Add registers s under name. Nil submitters are skipped so optional
// collaborators can be passed straight from configuration.
func (f *FanoutSubmitter) Add(name string, s Submitter) *FanoutSubmitter {
	if s != nil {
		f.targets = append(f.targets, namedSubmitter{name: name, s: s})
	}
	return f
}

func (f *FanoutSubmitter) Len() int { return len(f.targets) }

func (f *FanoutSubmitter) Submit(ctx context.Context, s contracts.OrderSummary) error {
	var errs []error
	for _, t := range f.targets {
		if f.wasDelivered(s.OrderID, t.name) {
			continue
		}
		if err := t.s.Submit(ctx, s); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
			continue
		}
		f.markDelivered(s.OrderID, t.name)
	}

	if len(errs) == 0 {
		f.mu.Lock()
		delete(f.delivered, s.OrderID)
		f.mu.Unlock()
	}
	return errors.Join(errs...)
}

func (f *FanoutSubmitter) wasDelivered(orderID, target string) bool {
	if orderID == "" {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.delivered[orderID][target]
}

func (f *FanoutSubmitter) markDelivered(orderID, target string) {
	if orderID == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delivered[orderID] == nil {
		f.delivered[orderID] = make(map[string]bool)
	}
	f.delivered[orderID][target] = true
}

// LogSubmitter writes the order to the log. Used when no form backend or
// broker is configured.
type LogSubmitter struct {
	logger *zap.Logger
}

func NewLogSubmitter(logger *zap.Logger) *LogSubmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSubmitter{logger: logger}
}

func (l *LogSubmitter) Submit(ctx context.Context, s contracts.OrderSummary) error {
	l.logger.Info("order submitted",
		zap.String("orderId", s.OrderID),
		zap.String("cartId", s.CartID),
		zap.Int("items", s.ItemCount()),
		zap.String("total", s.TotalField()),
		zap.String("summary", s.Text()),
	)
	return nil
}

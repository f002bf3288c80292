package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Store owns the line items of one cart and writes every change through to
// its Persistence. A Store is not safe for concurrent use; callers serialize
// access (see session.Registry).
type Store struct {
	items   []Item
	persist Persistence
}

// NewStore returns an empty cart backed by p.
func NewStore(p Persistence) *Store {
	return &Store{items: []Item{}, persist: p}
}

// Restore loads the persisted cart. Missing or corrupt data yields an empty
// cart; only storage faults are returned as errors.
func Restore(ctx context.Context, p Persistence) (*Store, error) {
	items, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore cart: %w", err)
	}
	return &Store{items: normalize(items), persist: p}, nil
}

// AddItem increments the quantity of an existing line with the same id, or
// appends a new line with quantity 1.
func (s *Store) AddItem(ctx context.Context, c Candidate) error {
	if i := s.indexOf(c.ID); i >= 0 {
		s.items[i].Quantity++
	} else {
		s.items = append(s.items, Item{Candidate: c, Quantity: 1})
	}
	return s.save(ctx)
}

// RemoveItem deletes the line with the given id. Unknown ids are ignored.
func (s *Store) RemoveItem(ctx context.Context, id ID) error {
	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return s.save(ctx)
}

// UpdateQuantity sets the quantity of a line exactly. A quantity of zero or
// less removes the line. Unknown ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, id ID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, id)
	}
	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.items[i].Quantity = quantity
	return s.save(ctx)
}

func (s *Store) Clear(ctx context.Context) error {
	s.items = []Item{}
	return s.save(ctx)
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Subtotal is the sum of price × quantity over all lines.
func (s *Store) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// ItemCount is the number of units in the cart, not the number of lines.
func (s *Store) ItemCount() int {
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) IsEmpty() bool {
	return len(s.items) == 0
}

// UpsellOpportunity is recomputed from the current contents on every call.
func (s *Store) UpsellOpportunity() Category {
	return DecideUpsell(s.items)
}

func (s *Store) indexOf(id ID) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) save(ctx context.Context) error {
	if err := s.persist.Save(ctx, s.Items()); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

// normalize restores the cart invariants on data read back from storage:
// one line per id and no line with a quantity below 1.
func normalize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[ID]int, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		if i, ok := seen[it.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		seen[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}

package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// DefaultStorageKey is the slot name the storefront has always used for the cart.
const DefaultStorageKey = "coldfront-cart"

// Persistence loads and saves the line items of a single cart.
type Persistence interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

// SlotStore is a named-slot byte store. Read returns nil data and a nil
// error for a slot that was never written.
type SlotStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// SlotKey names the slot holding the cart of one anonymous session.
func SlotKey(storageKey, cartID string) string {
	if storageKey == "" {
		storageKey = DefaultStorageKey
	}
	return storageKey + ":" + cartID
}

// SlotPersistence stores the cart as a JSON array of line items in one slot.
type SlotPersistence struct {
	slots  SlotStore
	key    string
	logger *zap.Logger
}

func NewSlotPersistence(slots SlotStore, key string, logger *zap.Logger) *SlotPersistence {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotPersistence{slots: slots, key: key, logger: logger}
}

func (p *SlotPersistence) Load(ctx context.Context) ([]Item, error) {
	data, err := p.slots.Read(ctx, p.key)
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", p.key, err)
	}
	if len(data) == 0 {
		return []Item{}, nil
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		p.logger.Warn("discarding unreadable cart slot",
			zap.String("slot", p.key),
			zap.Error(err),
		)
		return []Item{}, nil
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (p *SlotPersistence) Save(ctx context.Context, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := p.slots.Write(ctx, p.key, data); err != nil {
		return fmt.Errorf("write slot %s: %w", p.key, err)
	}
	return nil
}

// MemorySlots keeps slots in process memory.
type MemorySlots struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemorySlots() *MemorySlots {
	return &MemorySlots{slots: make(map[string][]byte)}
}

func (m *MemorySlots) Read(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.slots[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemorySlots) Write(ctx context.Context, key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)

	m.mu.Lock()
	m.slots[key] = cp
	m.mu.Unlock()
	return nil
}

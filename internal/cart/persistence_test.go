package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSlotPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	slots := NewMemorySlots()
	key := SlotKey("", "round-trip")

	s := NewStore(NewSlotPersistence(slots, key, nil))
	require.NoError(t, s.AddItem(ctx, candidate("c", "Accessories", "24.50")))
	require.NoError(t, s.AddItem(ctx, candidate("a", "Duck", "129.99")))
	require.NoError(t, s.AddItem(ctx, candidate("b", "Goose", "189.99")))
	require.NoError(t, s.UpdateQuantity(ctx, "b", 2))
	want := s.Items()

	restored, err := Restore(ctx, NewSlotPersistence(slots, key, nil))
	require.NoError(t, err)
	got := restored.Items()

	byID := func(items []Item) {
		sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	}
	byID(want)
	byID(got)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.True(t, want[i].Price.Equal(got[i].Price), "price for %s", want[i].ID)
		assert.Equal(t, want[i].Category, got[i].Category)
	}
}

func TestSlotPersistenceLoad(t *testing.T) {
	ctx := context.Background()

	tests := map[string]struct {
		raw       *string
		wantItems int
		wantWarn  bool
	}{
		"missing slot":      {raw: nil, wantItems: 0},
		"empty payload":     {raw: strPtr(""), wantItems: 0},
		"json null":         {raw: strPtr("null"), wantItems: 0},
		"corrupt json":      {raw: strPtr("{not json"), wantItems: 0, wantWarn: true},
		"wrong shape":       {raw: strPtr(`{"items": []}`), wantItems: 0, wantWarn: true},
		"valid single item": {raw: strPtr(`[{"id":"a","name":"A","price":"1.00","quantity":1,"category":"Duck"}]`), wantItems: 1},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			slots := NewMemorySlots()
			if tt.raw != nil {
				require.NoError(t, slots.Write(ctx, "k", []byte(*tt.raw)))
			}
			core, logs := observer.New(zap.WarnLevel)
			p := NewSlotPersistence(slots, "k", zap.New(core))

			items, err := p.Load(ctx)
			require.NoError(t, err)
			require.NotNil(t, items)
			assert.Len(t, items, tt.wantItems)
			assert.Equal(t, tt.wantWarn, logs.Len() > 0)
		})
	}
}

type brokenSlots struct{ err error }

func (b brokenSlots) Read(ctx context.Context, key string) ([]byte, error) { return nil, b.err }
func (b brokenSlots) Write(ctx context.Context, key string, data []byte) error {
	return b.err
}

func TestSlotPersistenceStorageFaultsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	p := NewSlotPersistence(brokenSlots{err: boom}, "k", nil)

	_, err := p.Load(ctx)
	require.ErrorIs(t, err, boom)

	err = p.Save(ctx, []Item{{Candidate: Candidate{ID: "a", Price: decimal.NewFromInt(1)}, Quantity: 1}})
	require.ErrorIs(t, err, boom)
}

func TestSlotPersistenceSavesEmptyArray(t *testing.T) {
	ctx := context.Background()
	slots := NewMemorySlots()
	p := NewSlotPersistence(slots, "k", nil)

	require.NoError(t, p.Save(ctx, nil))
	raw, err := slots.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestSlotKey(t *testing.T) {
	assert.Equal(t, "coldfront-cart:abc", SlotKey("", "abc"))
	assert.Equal(t, "shop:abc", SlotKey("shop", "abc"))
}

func TestIDDecodesNumbersAndStrings(t *testing.T) {
	var items []Item
	err := json.Unmarshal([]byte(`[{"id":7,"quantity":1},{"id":"perfect-storm","quantity":1}]`), &items)
	require.NoError(t, err)
	assert.Equal(t, ID("7"), items[0].ID)
	assert.Equal(t, ID("perfect-storm"), items[1].ID)

	err = json.Unmarshal([]byte(`[{"id":true,"quantity":1}]`), &items)
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }

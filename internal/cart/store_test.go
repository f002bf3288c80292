package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(id, category, price string) Candidate {
	return Candidate{
		ID:       ID(id),
		Name:     "Call " + id,
		Price:    decimal.RequireFromString(price),
		Image:    "/assets/products/" + id + ".png",
		Category: category,
	}
}

func newTestStore(t *testing.T) (*Store, *MemorySlots) {
	t.Helper()
	slots := NewMemorySlots()
	return NewStore(NewSlotPersistence(slots, SlotKey("", "test"), nil)), slots
}

func persistedItems(t *testing.T, slots *MemorySlots) []Item {
	t.Helper()
	data, err := slots.Read(context.Background(), SlotKey("", "test"))
	require.NoError(t, err)
	var items []Item
	require.NoError(t, json.Unmarshal(data, &items))
	return items
}

func TestStoreAddItemConsolidatesByID(t *testing.T) {
	ctx := context.Background()
	s, slots := newTestStore(t)

	require.NoError(t, s.AddItem(ctx, candidate("down-draft", "Duck", "149.99")))
	require.NoError(t, s.AddItem(ctx, candidate("down-draft", "Duck", "149.99")))
	require.NoError(t, s.AddItem(ctx, candidate("perfect-storm", "Goose", "189.99")))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, ID("down-draft"), items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, 3, s.ItemCount())

	persisted := persistedItems(t, slots)
	require.Len(t, persisted, 2)
	assert.Equal(t, 2, persisted[0].Quantity)
}

func TestStoreUpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("sets exact quantity", func(t *testing.T) {
		s, _ := newTestStore(t)
		require.NoError(t, s.AddItem(ctx, candidate("a", "Duck", "10")))
		require.NoError(t, s.UpdateQuantity(ctx, "a", 5))
		assert.Equal(t, 5, s.Items()[0].Quantity)
	})

	for _, qty := range []int{0, -5} {
		qty := qty
		t.Run("non-positive removes", func(t *testing.T) {
			s, slots := newTestStore(t)
			require.NoError(t, s.AddItem(ctx, candidate("a", "Duck", "10")))
			require.NoError(t, s.AddItem(ctx, candidate("b", "Goose", "20")))

			require.NoError(t, s.UpdateQuantity(ctx, "a", qty))

			items := s.Items()
			require.Len(t, items, 1)
			assert.Equal(t, ID("b"), items[0].ID)
			for _, it := range persistedItems(t, slots) {
				assert.Greater(t, it.Quantity, 0)
			}
		})
	}

	t.Run("unknown id is a no-op", func(t *testing.T) {
		s, _ := newTestStore(t)
		require.NoError(t, s.AddItem(ctx, candidate("a", "Duck", "10")))
		require.NoError(t, s.UpdateQuantity(ctx, "missing", 3))
		assert.Equal(t, 1, s.ItemCount())
	})
}

func TestStoreRemoveItem(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.NoError(t, s.AddItem(ctx, candidate("a", "Duck", "10")))
	require.NoError(t, s.AddItem(ctx, candidate("b", "Goose", "20")))
	require.NoError(t, s.AddItem(ctx, candidate("c", "Accessories", "5")))

	require.NoError(t, s.RemoveItem(ctx, "b"))
	require.NoError(t, s.RemoveItem(ctx, "missing"))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, ID("a"), items[0].ID)
	assert.Equal(t, ID("c"), items[1].ID)
}

func TestStoreSubtotal(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	assert.True(t, s.Subtotal().IsZero())
	assert.Equal(t, 0, s.ItemCount())

	require.NoError(t, s.AddItem(ctx, candidate("a", "Duck", "129.99")))
	require.NoError(t, s.AddItem(ctx, candidate("b", "Goose", "189.99")))
	require.NoError(t, s.AddItem(ctx, candidate("b", "Goose", "189.99")))

	want := decimal.RequireFromString("509.97")
	assert.True(t, want.Equal(s.Subtotal()), "got %s", s.Subtotal())
}

func TestStoreSubtotalHasNoBinaryRounding(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.NoError(t, s.AddItem(ctx, candidate("a", "", "0.1")))
	require.NoError(t, s.AddItem(ctx, candidate("b", "", "0.2")))

	assert.Equal(t, "0.3", s.Subtotal().String())
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()
	s, slots := newTestStore(t)
	require.NoError(t, s.AddItem(ctx, candidate("a", "Duck", "129.99")))
	require.NoError(t, s.AddItem(ctx, candidate("b", "Goose", "189.99")))

	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, 0, s.ItemCount())
	assert.True(t, s.Subtotal().IsZero())
	assert.True(t, s.IsEmpty())

	raw, err := slots.Read(ctx, SlotKey("", "test"))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestStoreUpsellTracksContents(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	assert.Equal(t, CategoryNone, s.UpsellOpportunity())

	require.NoError(t, s.AddItem(ctx, candidate("a", "Duck", "10")))
	assert.Equal(t, CategoryGoose, s.UpsellOpportunity())

	require.NoError(t, s.AddItem(ctx, candidate("b", "Goose", "10")))
	assert.Equal(t, CategoryNone, s.UpsellOpportunity())

	require.NoError(t, s.RemoveItem(ctx, "a"))
	assert.Equal(t, CategoryDuck, s.UpsellOpportunity())
}

type failingPersistence struct {
	loadErr error
	saveErr error
}

func (f failingPersistence) Load(ctx context.Context) ([]Item, error) { return nil, f.loadErr }
func (f failingPersistence) Save(ctx context.Context, items []Item) error {
	return f.saveErr
}

func TestStorePropagatesStorageFaults(t *testing.T) {
	ctx := context.Background()
	quota := errors.New("quota exceeded")

	s := NewStore(failingPersistence{saveErr: quota})
	err := s.AddItem(ctx, candidate("a", "Duck", "10"))
	require.ErrorIs(t, err, quota)
	assert.Equal(t, 1, s.ItemCount(), "in-memory change is kept")

	_, err = Restore(ctx, failingPersistence{loadErr: quota})
	require.ErrorIs(t, err, quota)
}

func TestRestoreNormalizesStoredItems(t *testing.T) {
	ctx := context.Background()
	slots := NewMemorySlots()
	key := SlotKey("", "legacy")
	raw := `[
		{"id": 1, "name": "Down Draft", "price": 149.99, "quantity": 1, "image": "a.png", "category": "Duck"},
		{"id": 2, "name": "Perfect Storm", "price": 189.99, "quantity": 0, "image": "b.png", "category": "Goose"},
		{"id": 1, "name": "Down Draft", "price": 149.99, "quantity": 2, "image": "a.png", "category": "Duck"}
	]`
	require.NoError(t, slots.Write(ctx, key, []byte(raw)))

	s, err := Restore(ctx, NewSlotPersistence(slots, key, nil))
	require.NoError(t, err)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, ID("1"), items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.True(t, decimal.RequireFromString("149.99").Equal(items[0].Price))
}

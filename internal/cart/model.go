package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ID identifies a product line in the cart. Older persisted carts stored
// numeric ids, so ID decodes from both JSON strings and JSON numbers.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("cart id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Candidate is a fully formed product offered by the catalog. The cart
// performs no validation of it.
type Candidate struct {
	ID       ID              `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Category string          `json:"category"`
}

type Item struct {
	Candidate
	Quantity int `json:"quantity"`
}

// LineTotal is price × quantity.
func (it Item) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Category is the complementary product family recommended at checkout.
type Category string

const (
	CategoryNone  Category = ""
	CategoryDuck  Category = "duck"
	CategoryGoose Category = "goose"
)

// ParseCategory accepts "duck" or "goose" in any case.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryDuck, CategoryGoose:
		return c, nil
	default:
		return CategoryNone, fmt.Errorf("unknown upsell category %q", s)
	}
}

// Label is the display form used in the upsell prompt ("Duck", "Goose").
func (c Category) Label() string {
	switch c {
	case CategoryDuck:
		return "Duck"
	case CategoryGoose:
		return "Goose"
	default:
		return ""
	}
}

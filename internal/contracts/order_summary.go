package contracts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coldfrontcalls/cart-service-go/internal/cart"
)

// OrderSummary is the serialized order handed to the submission
// collaborators.
type OrderSummary struct {
	OrderID   string          `json:"orderId"`
	CartID    string          `json:"cartId"`
	Customer  Customer        `json:"customer"`
	Lines     []SummaryLine   `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

type SummaryLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type SummaryOptions struct {
	OrderID   string
	CreatedAt time.Time
}

func BuildOrderSummary(cartID string, items []cart.Item, customer Customer, opts SummaryOptions) OrderSummary {
	orderID := opts.OrderID
	if orderID == "" {
		orderID = uuid.NewString()
	}

	createdAt := opts.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	s := OrderSummary{
		OrderID:   orderID,
		CartID:    cartID,
		Customer:  customer,
		Lines:     make([]SummaryLine, 0, len(items)),
		Total:     decimal.Zero,
		CreatedAt: createdAt,
	}
	for _, it := range items {
		line := it.LineTotal()
		s.Lines = append(s.Lines, SummaryLine{
			ProductID: string(it.ID),
			Name:      it.Name,
			Category:  it.Category,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			LineTotal: line,
		})
		s.Total = s.Total.Add(line)
	}
	return s
}

// Text renders the plain-text summary the order inbox receives:
//
//	ORDER SUMMARY:
//	2x Perfect Storm - $379.98
//
//	TOTAL: $379.98
func (s OrderSummary) Text() string {
	var b strings.Builder
	b.WriteString("ORDER SUMMARY:\n")
	for i, l := range s.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%dx %s - $%s", l.Quantity, l.Name, l.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "\n\nTOTAL: $%s", s.TotalField())
	return b.String()
}

// CartItemsField renders the lines as a JSON array of "Name (xN)" strings.
func (s OrderSummary) CartItemsField() string {
	labels := make([]string, 0, len(s.Lines))
	for _, l := range s.Lines {
		labels = append(labels, fmt.Sprintf("%s (x%d)", l.Name, l.Quantity))
	}
	data, _ := json.Marshal(labels)
	return string(data)
}

// TotalField is the grand total with exactly two decimals.
func (s OrderSummary) TotalField() string {
	return s.Total.StringFixed(2)
}

func (s OrderSummary) ItemCount() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

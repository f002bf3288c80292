package contracts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrderSubmittedEventName           = "OrderSubmitted"
	OrderSubmittedEventVersion        = 1
	OrderSubmittedEnvelopedSchemaPath = "contracts/events/cart/OrderSubmitted.v1.enveloped.schema.json"
	CartServiceProducer               = "cart-service"
)

type EventEnvelope struct {
	EventName     string                `json:"eventName"`
	EventVersion  int                   `json:"eventVersion"`
	EventID       string                `json:"eventId"`
	CorrelationID string                `json:"correlationId,omitempty"`
	CausationID   string                `json:"causationId,omitempty"`
	Producer      string                `json:"producer"`
	PartitionKey  string                `json:"partitionKey"`
	Sequence      int64                 `json:"sequence"`
	OccurredAt    time.Time             `json:"occurredAt"`
	Schema        string                `json:"schema"`
	Payload       OrderSubmittedPayload `json:"payload"`
}

type OrderSubmittedPayload struct {
	OrderID      string               `json:"orderId"`
	CartID       string               `json:"cartId"`
	Customer     Customer             `json:"customer"`
	Items        []OrderSubmittedItem `json:"items"`
	TotalAmount  decimal.Decimal      `json:"totalAmount"`
	OrderDetails string               `json:"orderDetails"`
	Timestamp    time.Time            `json:"timestamp"`
}

type OrderSubmittedItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type EnvelopeOptions struct {
	PartitionKey  string
	Sequence      int64
	Producer      string
	SchemaPath    string
	CorrelationID string
	CausationID   string
	EventID       string
	OccurredAt    time.Time
}

// BuildOrderSubmittedEvent wraps s in the v1 event envelope. The partition
// key defaults to the cart id so events for one cart stay ordered.
func BuildOrderSubmittedEvent(s OrderSummary, opts EnvelopeOptions) EventEnvelope {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	schemaPath := opts.SchemaPath
	if schemaPath == "" {
		schemaPath = OrderSubmittedEnvelopedSchemaPath
	}

	producer := opts.Producer
	if producer == "" {
		producer = CartServiceProducer
	}

	partitionKey := opts.PartitionKey
	if partitionKey == "" {
		partitionKey = s.CartID
	}

	payload := OrderSubmittedPayload{
		OrderID:      s.OrderID,
		CartID:       s.CartID,
		Customer:     s.Customer,
		Items:        make([]OrderSubmittedItem, 0, len(s.Lines)),
		TotalAmount:  s.Total,
		OrderDetails: s.Text(),
		Timestamp:    occurredAt,
	}
	for _, l := range s.Lines {
		payload.Items = append(payload.Items, OrderSubmittedItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice,
		})
	}

	return EventEnvelope{
		EventName:     OrderSubmittedEventName,
		EventVersion:  OrderSubmittedEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		CausationID:   opts.CausationID,
		Producer:      producer,
		PartitionKey:  partitionKey,
		Sequence:      opts.Sequence,
		OccurredAt:    occurredAt,
		Schema:        schemaPath,
		Payload:       payload,
	}
}

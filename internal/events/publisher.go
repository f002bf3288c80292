package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/coldfrontcalls/cart-service-go/internal/contracts"
	"github.com/coldfrontcalls/cart-service-go/internal/middleware"
)

const defaultPublishTimeout = 3 * time.Second

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// OrderPublisher hands submitted orders to the message bus as enveloped
// OrderSubmitted events.
type OrderPublisher struct {
	ch       publishChannel
	seqRepo  SequenceRepository
	producer string
	timeout  time.Duration
}

type PublisherOptions struct {
	Producer       string
	PublishTimeout time.Duration
}

func NewOrderPublisher(conn *amqp.Connection, seqRepo SequenceRepository, opts PublisherOptions) (*OrderPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	return newOrderPublisher(ch, seqRepo, opts), nil
}

func newOrderPublisher(ch publishChannel, seqRepo SequenceRepository, opts PublisherOptions) *OrderPublisher {
	producer := opts.Producer
	if producer == "" {
		producer = contracts.CartServiceProducer
	}
	timeout := opts.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &OrderPublisher{ch: ch, seqRepo: seqRepo, producer: producer, timeout: timeout}
}

func (p *OrderPublisher) Close() error {
	return p.ch.Close()
}

// Submit publishes s on the events exchange. It satisfies checkout.Submitter.
func (p *OrderPublisher) Submit(ctx context.Context, s contracts.OrderSummary) error {
	seq, err := p.seqRepo.NextSequence(ctx, s.CartID)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := contracts.BuildOrderSubmittedEvent(s, contracts.EnvelopeOptions{
		PartitionKey:  s.CartID,
		Sequence:      seq,
		Producer:      p.producer,
		CorrelationID: middleware.GetCorrelationID(ctx),
		CausationID:   s.OrderID,
	})
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal OrderSubmitted envelope: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		OrderSubmittedRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     env.EventID,
			CorrelationId: env.CorrelationID,
			Type:          env.EventName,
			Timestamp:     env.OccurredAt,
			Body:          body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish OrderSubmitted: %w", err)
	}
	return nil
}

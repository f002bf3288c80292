package events

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DialRabbit connects to the broker at url.
func DialRabbit(url string) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial: amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// MustDialRabbit is DialRabbit that panics on failure. Startup only.
func MustDialRabbit(url string) *amqp.Connection {
	conn, err := DialRabbit(url)
	if err != nil {
		panic(err)
	}
	return conn
}

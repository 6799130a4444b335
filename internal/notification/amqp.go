package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// Exchange is the topic exchange wallet events are published to.
	Exchange = "wallet_events"
	// RoutingKeyTransferSubmitted routes KindTransferSubmitted messages.
	RoutingKeyTransferSubmitted = "transfer.submitted"
)

// Publisher is the subset of *amqp.Channel used for publishing.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes notifications as JSON events to RabbitMQ.
type AMQPNotifier struct {
	publisher Publisher
	exchange  string
	timeout   time.Duration
}

// NewAMQPNotifier constructs a notifier publishing to the wallet events exchange.
func NewAMQPNotifier(publisher Publisher, timeout time.Duration) *AMQPNotifier {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &AMQPNotifier{publisher: publisher, exchange: Exchange, timeout: timeout}
}

// Send publishes the message. Kinds without a dedicated routing key are
// routed by their kind.
func (n *AMQPNotifier) Send(ctx context.Context, message Message) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	err = n.publisher.PublishWithContext(ctx, n.exchange, routingKey(message.Kind), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         message.Kind,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func routingKey(kind string) string {
	switch kind {
	case KindTransferSubmitted:
		return RoutingKeyTransferSubmitted
	default:
		return kind
	}
}

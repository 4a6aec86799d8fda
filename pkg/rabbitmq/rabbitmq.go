package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

const (
	ordersExchange  = "orders"
	orderCreatedKey = "order.created"
	ordersQueue     = "orders.created"
)

type Config struct {
	URL string
}

// Publisher is the broker surface the checkout path depends on. A nop
// implementation stands in when no broker is configured.
type Publisher interface {
	PublishOrderCreated(messageBody map[string]interface{}) error
	Close() error
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ordersExchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	return c.channel.Publish(exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (c *Client) PublishOrderCreated(messageBody map[string]interface{}) error {
	body, err := json.Marshal(messageBody)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	return c.Publish(ordersExchange, orderCreatedKey, body)
}

// ConsumeOrderEvents binds a queue to the orders exchange and feeds each
// delivery to messageHandler. A nil handler error acks the message;
// otherwise it is nacked and requeued.
func (c *Client) ConsumeOrderEvents(messageHandler func(msg amqp.Delivery) error) error {
	queue, err := c.channel.QueueDeclare(ordersQueue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := c.channel.QueueBind(queue.Name, orderCreatedKey, ordersExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	deliveries, err := c.channel.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for msg := range deliveries {
		if err := messageHandler(msg); err != nil {
			_ = msg.Nack(false, true)
			continue
		}
		_ = msg.Ack(false)
	}

	return nil
}

func (c *Client) Close() error {
	if err := c.channel.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}

// NopPublisher drops order events. Used when RABBITMQ_URL is unset.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(map[string]interface{}) error { return nil }

func (NopPublisher) Close() error { return nil }

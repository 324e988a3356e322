package rabbitmq

import (
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	amqp "github.com/streadway/amqp"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // serializes publishes on the shared channel
	cfg     Config
}

// Config holds RabbitMQ connection details and topology names.
type Config struct {
	URL        string
	Exchange   string // topic exchange, default "recipe"
	Queue      string // consumer queue, default "recipe_events"
	BindingKey string // default "recipe.#"
}

func (c Config) withDefaults() Config {
	if c.Exchange == "" {
		c.Exchange = "recipe"
	}
	if c.Queue == "" {
		c.Queue = "recipe_events"
	}
	if c.BindingKey == "" {
		c.BindingKey = "recipe.#"
	}
	return c
}

// NewClient connects to RabbitMQ, opens a channel and declares the topic
// exchange plus a durable queue bound to it.
func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info().Str("exchange", cfg.Exchange).Str("queue", cfg.Queue).Msg("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		cfg:     cfg,
	}, nil
}

func declareTopology(ch *amqp.Channel, cfg Config) error {
	if err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	if _, err := ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	if err := ch.QueueBind(cfg.Queue, cfg.BindingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", cfg.Queue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message to exchange with routingKey.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Debug().Str("routing_key", routingKey).Bytes("body", body).Msg("published event")
	return nil
}

// ConsumeRecipeEvents starts a goroutine delivering messages from the recipe
// queue to messageHandler. A handler error rejects the message without requeue.
func (c *Client) ConsumeRecipeEvents(messageHandler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.cfg.Queue, // queue
		"",          // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Info().Str("queue", c.cfg.Queue).Msg("waiting for recipe events")

	go func() {
		for msg := range msgs {
			if err := messageHandler(msg); err != nil {
				log.Warn().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Msg("rejecting recipe event")
				if nackErr := msg.Nack(false, false); nackErr != nil {
					log.Error().Err(nackErr).Uint64("delivery_tag", msg.DeliveryTag).Msg("failed to nack message")
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				log.Error().Err(ackErr).Uint64("delivery_tag", msg.DeliveryTag).Msg("failed to ack message")
			}
		}
	}()

	return nil
}

// RecipeEventMessage mirrors the body published for recipe writes.
type RecipeEventMessage struct {
	RecipeID uint      `json:"recipe_id"`
	UserID   uint      `json:"user_id"`
	Event    string    `json:"event"`
	At       time.Time `json:"at"`
}

// DecodeRecipeEvent parses a recipe event body.
func DecodeRecipeEvent(body []byte) (RecipeEventMessage, error) {
	var ev RecipeEventMessage
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("failed to decode recipe event: %w", err)
	}
	if ev.Event == "" || ev.RecipeID == 0 {
		return ev, fmt.Errorf("recipe event is missing event or recipe_id")
	}
	return ev, nil
}

// HandleRecipeMessage logs a recipe event; undecodable bodies are rejected.
func HandleRecipeMessage(msg amqp.Delivery) error {
	ev, err := DecodeRecipeEvent(msg.Body)
	if err != nil {
		return err
	}
	log.Info().
		Str("event", ev.Event).
		Uint("recipe_id", ev.RecipeID).
		Uint("user_id", ev.UserID).
		Time("at", ev.At).
		Msg("recipe event received")
	return nil
}

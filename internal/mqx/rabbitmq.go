// Package mqx publishes domain events to RabbitMQ.
package mqx

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/samber/lo"

	"planeat-api/internal/logx"
)

var mqLogger = logx.GetScope("mqx")

// Routing keys of the events the API emits.
const (
	KeyScheduleCreated = "schedule.created"
	KeyScheduleDeleted = "schedule.deleted"
	KeyCalendarDay     = "calendar_day.created"
	KeyRecipeCreated   = "recipe.created"
	KeyRecipeDeleted   = "recipe.deleted"
	KeyRatingUpserted  = "rating.upserted"
	KeyRatingDeleted   = "rating.deleted"
	KeyRecommendation  = "recommendation.created"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
	Close() error
}

// Event is the JSON envelope of every published message.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// PublishJSON wraps data in an Event and publishes it under routingKey.
// A nil publisher drops the event.
func PublishJSON(ctx context.Context, p Publisher, routingKey string, data any) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(Event{ID: uuid.New(), Type: routingKey, OccurredAt: time.Now().UTC(), Data: data})
	if err != nil {
		return err
	}
	if err := p.Publish(ctx, routingKey, body); err != nil {
		mqLogger.Sugar().Warnf("publish %s: %v", routingKey, err)
		return err
	}
	return nil
}

type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex
}

func NewRabbitPublisher(url string, exchange string) (*RabbitPublisher, error) {
	exchange = lo.Ternary(exchange != "", exchange, "planeat.events")
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	mqLogger.Sugar().Infof("rabbitmq exchange %q ready", exchange)
	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish sends body to the exchange. amqp channels are not safe for
// concurrent publishing, so calls are serialized.
func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    time.Now(),
		DeliveryMode: amqp.Persistent,
	})
}

func (p *RabbitPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Message is one event captured by Memory.
type Message struct {
	RoutingKey string
	Body       []byte
}

// Memory keeps published events in memory. It backs local runs without a
// broker and tests.
type Memory struct {
	mu   sync.Mutex
	msgs []Message
}

func (m *Memory) Publish(_ context.Context, routingKey string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, Message{RoutingKey: routingKey, Body: append([]byte(nil), body...)})
	return nil
}

func (m *Memory) Close() error { return nil }

// Messages returns a copy of what was published so far.
func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.msgs...)
}

// Keys returns the routing keys published so far, in order.
func (m *Memory) Keys() []string {
	return lo.Map(m.Messages(), func(msg Message, _ int) string { return msg.RoutingKey })
}

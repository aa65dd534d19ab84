package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/shubham-1706-g/Class2Canteen/internal/config"
	"github.com/shubham-1706-g/Class2Canteen/internal/entities"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type EventType string

const (
	TypeOrderCreated       EventType = "order.created"
	TypeOrderStatusChanged EventType = "order.status_changed"
)

// Envelope is the wire format of an order event. Consumers (kitchen
// displays, notification bots) dispatch on Type.
type Envelope struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	OrderID   int64           `json:"order_id"`
	ShopID    int64           `json:"shop_id"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type statusChangedPayload struct {
	PreviousStatus entities.Status `json:"previous_status"`
	NewStatus      entities.Status `json:"new_status"`
	TotalCents     int64           `json:"total_cents"`
}

type orderCreatedPayload struct {
	UserID     int64           `json:"user_id"`
	TotalCents int64           `json:"total_cents"`
	Status     entities.Status `json:"status"`
}

// KafkaPublisher emits order events best effort: the order workflow never
// fails because the broker is down, failures are only logged. Clients still
// learn about changes by polling.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafkaPublisher(logger *slog.Logger, cfg config.Kafka) *KafkaPublisher {
	return &KafkaPublisher{
		logger: logger.With(slog.String("component", "events")),
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
	}
}

func (p *KafkaPublisher) OrderCreated(ctx context.Context, order entities.Order) {
	p.publish(ctx, TypeOrderCreated, order, orderCreatedPayload{
		UserID:     order.UserID,
		TotalCents: order.TotalCents,
		Status:     order.Status,
	})
}

func (p *KafkaPublisher) OrderStatusChanged(ctx context.Context, order entities.Order, prev entities.Status) {
	p.publish(ctx, TypeOrderStatusChanged, order, statusChangedPayload{
		PreviousStatus: prev,
		NewStatus:      order.Status,
		TotalCents:     order.TotalCents,
	})
}

func (p *KafkaPublisher) publish(ctx context.Context, typ EventType, order entities.Order, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to marshal event payload", slog.Any("error", err))
		return
	}

	value, err := json.Marshal(Envelope{
		ID:        uuid.NewString(),
		Type:      typ,
		OrderID:   order.ID,
		ShopID:    order.ShopID,
		Payload:   data,
		Timestamp: time.Now(),
	})
	if err != nil {
		p.logger.Error("failed to marshal event", slog.Any("error", err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(order.ID, 10)),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("failed to publish event",
			slog.String("type", string(typ)),
			slog.Int64("order_id", order.ID),
			slog.Any("error", err),
		)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

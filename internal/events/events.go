// Package events publishes order lifecycle events.
package events

import (
	"context"
	"time"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	OrderCreated       EventType = "order.created"
	OrderStatusChanged EventType = "order.status_changed"
)

// Event is the payload written to the bus. Previous is empty for OrderCreated.
type Event struct {
	Type       EventType          `json:"event_type"`
	OrderID    string             `json:"order_id"`
	UserID     string             `json:"user_id"`
	Status     domain.OrderStatus `json:"status"`
	Previous   domain.OrderStatus `json:"previous_status,omitempty"`
	Total      decimal.Decimal    `json:"total"`
	OccurredAt time.Time          `json:"occurred_at"`
}

func Created(o domain.Order) Event {
	return Event{
		Type:       OrderCreated,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Total:      o.Total,
		OccurredAt: o.CreatedAt,
	}
}

func StatusChanged(o domain.Order, previous domain.OrderStatus) Event {
	return Event{
		Type:       OrderStatusChanged,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Previous:   previous,
		Total:      o.Total,
		OccurredAt: o.UpdatedAt,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                        { return nil }

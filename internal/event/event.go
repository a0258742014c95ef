// Package event carries after-commit notifications to connected clients and
// downstream consumers.
package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	TypeOrder   = "order_update"
	TypeStock   = "stock_update"
	TypeProduct = "product_update"
	TypeSeller  = "seller_update"
)

const (
	ActionOrderPlaced    = "order_placed"
	ActionOrderShipped   = "order_shipped"
	ActionOrderDelivered = "order_delivered"
	ActionOrderCancelled = "order_cancelled"
	ActionStockChanged   = "stock_changed"
	ActionProductCreated = "product_created"
	ActionProductStatus  = "product_status_changed"
	ActionSellerStatus   = "seller_status_changed"
)

type Event struct {
	Type    string                 `json:"type"`
	Action  string                 `json:"action"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
	At      time.Time              `json:"at"`
}

func New(typ, action, message string, data map[string]interface{}) Event {
	return Event{Type: typ, Action: action, Message: message, Data: data, At: time.Now()}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Fanout delivers every event to all publishers and joins their errors.
type Fanout struct {
	publishers []Publisher
	log        *zap.Logger
}

func NewFanout(log *zap.Logger, publishers ...Publisher) *Fanout {
	return &Fanout{publishers: publishers, log: log}
}

func (f *Fanout) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, e); err != nil {
			f.log.Warn("event publish failed",
				zap.String("type", e.Type),
				zap.String("action", e.Action),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Actions lists the recorded actions in publish order.
func (r *Recorder) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, len(r.events))
	for i, e := range r.events {
		actions[i] = e.Action
	}
	return actions
}

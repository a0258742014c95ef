package observability

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"tricommerce/internal/audit"
	"tricommerce/internal/model"
	"tricommerce/internal/service"
)

const tracerName = "tricommerce/internal/observability/order_service"

// OrderService decorates service.OrderService with spans, counters and
// error logs.
type OrderService struct {
	inner   service.OrderService
	tracer  trace.Tracer
	logger  *zap.Logger
	metrics orderMetrics
}

type Option func(*OrderService)

func WithLogger(logger *zap.Logger) Option {
	return func(s *OrderService) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *OrderService) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *OrderService) {
		s.metrics = newOrderMetrics(m)
	}
}

func NewOrderService(inner service.OrderService, opts ...Option) service.OrderService {
	s := &OrderService{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  zap.NewNop(),
		metrics: newOrderMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func (s *OrderService) PlaceOrder(ctx context.Context, customerID uuid.UUID, shippingAddress string) (uuid.UUID, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder",
		trace.WithAttributes(attribute.String("customer.id", customerID.String())))
	defer span.End()

	id, err := s.inner.PlaceOrder(ctx, customerID, shippingAddress)
	if err != nil {
		s.metrics.recordFailure(ctx, "place")
		return uuid.Nil, s.handleError(span, err, "place order failed", zap.Stringer("customer_id", customerID))
	}
	span.SetAttributes(attribute.String("order.id", id.String()))
	s.metrics.recordPlaced(ctx)
	return id, nil
}

func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID, actor service.Actor) error {
	return s.transition(ctx, "OrderService.Cancel", model.OrderCancelled, orderID, actor, s.inner.Cancel)
}

func (s *OrderService) Advance(ctx context.Context, orderID uuid.UUID, actor service.Actor) error {
	return s.transition(ctx, "OrderService.Advance", model.OrderShipped, orderID, actor, s.inner.Advance)
}

func (s *OrderService) Deliver(ctx context.Context, orderID uuid.UUID, actor service.Actor) error {
	return s.transition(ctx, "OrderService.Deliver", model.OrderDelivered, orderID, actor, s.inner.Deliver)
}

func (s *OrderService) transition(ctx context.Context, name string, to model.OrderStatus, orderID uuid.UUID, actor service.Actor,
	fn func(context.Context, uuid.UUID, service.Actor) error) error {
	ctx, span := s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("order.id", orderID.String()),
		attribute.String("order.to_status", string(to)),
		attribute.String("actor.role", string(actor.Role)),
	))
	defer span.End()

	if err := fn(ctx, orderID, actor); err != nil {
		s.metrics.recordFailure(ctx, string(to))
		return s.handleError(span, err, "order transition failed",
			zap.Stringer("order_id", orderID), zap.String("to", string(to)), zap.Stringer("actor", actor))
	}
	s.metrics.recordTransition(ctx, to)
	return nil
}

func (s *OrderService) ListByStatus(ctx context.Context, status model.OrderStatus, sellerID *uuid.UUID) ([]model.OrderLine, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListByStatus",
		trace.WithAttributes(attribute.String("order.status", string(status))))
	defer span.End()

	lines, err := s.inner.ListByStatus(ctx, status, sellerID)
	if err != nil {
		return nil, s.handleError(span, err, "list orders failed", zap.String("status", string(status)))
	}
	span.SetAttributes(attribute.Int("order.lines", len(lines)))
	return lines, nil
}

func (s *OrderService) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListForCustomer")
	defer span.End()

	orders, err := s.inner.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, s.handleError(span, err, "list customer orders failed", zap.Stringer("customer_id", customerID))
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID, actor service.Actor) (*model.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Get",
		trace.WithAttributes(attribute.String("order.id", orderID.String())))
	defer span.End()

	order, err := s.inner.Get(ctx, orderID, actor)
	if err != nil {
		return nil, s.handleError(span, err, "load order failed", zap.Stringer("order_id", orderID))
	}
	return order, nil
}

func (s *OrderService) History(ctx context.Context, orderID uuid.UUID, actor service.Actor) ([]audit.Entry, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.History",
		trace.WithAttributes(attribute.String("order.id", orderID.String())))
	defer span.End()

	entries, err := s.inner.History(ctx, orderID, actor)
	if err != nil {
		return nil, s.handleError(span, err, "load order history failed", zap.Stringer("order_id", orderID))
	}
	return entries, nil
}

func (s *OrderService) Statuses(ctx context.Context) ([]model.Status, error) {
	return s.inner.Statuses(ctx)
}

func (s *OrderService) handleError(span trace.Span, err error, msg string, fields ...zap.Field) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Warn(msg, append(fields, zap.Error(err))...)
	return err
}

type orderMetrics struct {
	placed      metric.Int64Counter
	transitions metric.Int64Counter
	failures    metric.Int64Counter
}

func newOrderMetrics(m metric.Meter) orderMetrics {
	if m == nil {
		return orderMetrics{}
	}
	placed, _ := m.Int64Counter("tricommerce.orders.placed", metric.WithDescription("Orders created by checkout"))
	transitions, _ := m.Int64Counter("tricommerce.orders.transitions", metric.WithDescription("Order status transitions by target status"))
	failures, _ := m.Int64Counter("tricommerce.orders.failures", metric.WithDescription("Failed order operations"))
	return orderMetrics{placed: placed, transitions: transitions, failures: failures}
}

func (m orderMetrics) recordPlaced(ctx context.Context) {
	if m.placed != nil {
		m.placed.Add(ctx, 1)
	}
}

func (m orderMetrics) recordTransition(ctx context.Context, to model.OrderStatus) {
	if m.transitions != nil {
		m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(to))))
	}
}

func (m orderMetrics) recordFailure(ctx context.Context, op string) {
	if m.failures != nil {
		m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
	}
}

var _ service.OrderService = (*OrderService)(nil)

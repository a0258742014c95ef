package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tricommerce/internal/audit"
	"tricommerce/internal/event"
	"tricommerce/internal/model"
	"tricommerce/internal/repository"
)

const historyLimit = 50

type OrderService interface {
	// PlaceOrder converts the customer's cart into a Pending order. An empty
	// shippingAddress falls back to the customer's delivery address.
	PlaceOrder(ctx context.Context, customerID uuid.UUID, shippingAddress string) (uuid.UUID, error)
	Cancel(ctx context.Context, orderID uuid.UUID, actor Actor) error
	// Advance ships a Pending order.
	Advance(ctx context.Context, orderID uuid.UUID, actor Actor) error
	Deliver(ctx context.Context, orderID uuid.UUID, actor Actor) error
	ListByStatus(ctx context.Context, status model.OrderStatus, sellerID *uuid.UUID) ([]model.OrderLine, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)
	Get(ctx context.Context, orderID uuid.UUID, actor Actor) (*model.Order, error)
	History(ctx context.Context, orderID uuid.UUID, actor Actor) ([]audit.Entry, error)
	Statuses(ctx context.Context) ([]model.Status, error)
}

type orderService struct {
	core
}

func NewOrderService(deps Deps) OrderService {
	return &orderService{core: newCore(deps)}
}

type stockChange struct {
	SKU   string
	Delta int
	Stock int
}

func (s *orderService) PlaceOrder(ctx context.Context, customerID uuid.UUID, shippingAddress string) (uuid.UUID, error) {
	address := strings.TrimSpace(shippingAddress)

	var order *model.Order
	var changes []stockChange

	err := s.transact(ctx, func(ctx context.Context, tx repository.Repositories) error {
		lines, err := tx.Carts().FindByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		if address == "" {
			customer, err := tx.Customers().FindByID(ctx, customerID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return notFound("customer", customerID)
				}
				return err
			}
			address = strings.TrimSpace(customer.DeliveryAddress)
			if address == "" {
				return fmt.Errorf("%w: shipping address is required", ErrValidationFailed)
			}
		}

		// Lines come back ordered by SKU, so concurrent checkouts lock
		// product rows in the same order.
		items := make([]model.OrderItem, 0, len(lines))
		changes = changes[:0]
		for _, line := range lines {
			product, err := tx.Products().FindBySKUForUpdate(ctx, line.ProductSKU)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%w: %s", ErrProductUnavailable, line.ProductSKU)
				}
				return err
			}
			if !product.Orderable() {
				return fmt.Errorf("%w: %s is %s", ErrProductUnavailable, product.SKU, product.Status)
			}
			if product.Stock < line.Quantity {
				return fmt.Errorf("%w: %s has %d, requested %d",
					ErrInsufficientStock, product.SKU, product.Stock, line.Quantity)
			}
			items = append(items, model.OrderItem{
				ProductSKU: product.SKU,
				Quantity:   line.Quantity,
				UnitPrice:  product.Price,
			})
			changes = append(changes, stockChange{
				SKU:   product.SKU,
				Delta: -line.Quantity,
				Stock: product.Stock - line.Quantity,
			})
		}

		o := &model.Order{
			CustomerID:      customerID,
			ShippingAddress: address,
			OrderDate:       time.Now(),
			Status:          model.OrderPending,
			Items:           items,
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}

		for _, item := range o.Items {
			if err := tx.Products().AdjustStock(ctx, item.ProductSKU, -item.Quantity); err != nil {
				return err
			}
			orderID := o.ID
			if err := tx.Movements().Create(ctx, &model.StockMovement{
				ProductSKU: item.ProductSKU,
				Type:       model.MovementOut,
				Quantity:   item.Quantity,
				OrderID:    &orderID,
				Note:       "checkout",
			}); err != nil {
				return err
			}
		}

		if err := tx.Carts().Clear(ctx, customerID); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrEmptyCart) && !errors.Is(err, ErrInsufficientStock) {
			s.Logger.Error("place order failed", zap.String("customer_id", customerID.String()), zap.Error(err))
		}
		return uuid.Nil, err
	}

	s.Logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.Int("items", len(order.Items)))

	s.recordAudit(ctx, audit.Entry{
		Entity:    audit.EntityOrder,
		EntityID:  order.ID.String(),
		To:        string(model.OrderPending),
		ActorID:   customerID.String(),
		ActorRole: string(model.RoleCustomer),
	})
	s.publish(ctx, event.New(event.TypeOrder, event.ActionOrderPlaced,
		fmt.Sprintf("order %s placed", order.ID),
		map[string]interface{}{
			"order_id":    order.ID,
			"customer_id": customerID,
			"status":      order.Status,
			"total":       order.Total().StringFixed(2),
			"items":       len(order.Items),
		}))
	s.publishStock(ctx, changes, &order.ID)

	return order.ID, nil
}

func (s *orderService) Cancel(ctx context.Context, orderID uuid.UUID, actor Actor) error {
	if actor.Role == model.RoleSeller {
		return fmt.Errorf("%w: sellers cannot cancel orders", ErrForbidden)
	}
	return s.transition(ctx, orderID, actor, model.OrderCancelled)
}

func (s *orderService) Advance(ctx context.Context, orderID uuid.UUID, actor Actor) error {
	if actor.Role == model.RoleCustomer {
		return fmt.Errorf("%w: customers cannot process orders", ErrForbidden)
	}
	return s.transition(ctx, orderID, actor, model.OrderShipped)
}

func (s *orderService) Deliver(ctx context.Context, orderID uuid.UUID, actor Actor) error {
	if actor.Role == model.RoleCustomer {
		return fmt.Errorf("%w: customers cannot process orders", ErrForbidden)
	}
	return s.transition(ctx, orderID, actor, model.OrderDelivered)
}

// transition moves an order to the next status under a row lock. Cancelling
// puts the ordered quantities back into stock in the same transaction.
func (s *orderService) transition(ctx context.Context, orderID uuid.UUID, actor Actor, to model.OrderStatus) error {
	var from model.OrderStatus
	var changes []stockChange

	err := s.transact(ctx, func(ctx context.Context, tx repository.Repositories) error {
		order, err := s.loadForActor(ctx, tx, orderID, actor, true)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, to)
		}
		from = order.Status

		if err := tx.Orders().UpdateStatus(ctx, order.ID, to); err != nil {
			return err
		}
		if to != model.OrderCancelled {
			return nil
		}

		changes = changes[:0]
		for _, item := range order.Items {
			if err := tx.Products().AdjustStock(ctx, item.ProductSKU, item.Quantity); err != nil {
				return err
			}
			id := order.ID
			if err := tx.Movements().Create(ctx, &model.StockMovement{
				ProductSKU: item.ProductSKU,
				Type:       model.MovementIn,
				Quantity:   item.Quantity,
				OrderID:    &id,
				Note:       "order cancelled",
			}); err != nil {
				return err
			}
			changes = append(changes, stockChange{SKU: item.ProductSKU, Delta: item.Quantity, Stock: -1})
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Logger.Info("order status changed",
		zap.String("order_id", orderID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor", actor.String()))

	s.recordAudit(ctx, audit.Entry{
		Entity:    audit.EntityOrder,
		EntityID:  orderID.String(),
		From:      string(from),
		To:        string(to),
		ActorID:   actor.ID.String(),
		ActorRole: string(actor.Role),
	})
	s.publish(ctx, event.New(event.TypeOrder, transitionAction(to),
		fmt.Sprintf("order %s %s", orderID, strings.ToLower(string(to))),
		map[string]interface{}{
			"order_id": orderID,
			"from":     from,
			"status":   to,
		}))
	s.publishStock(ctx, changes, &orderID)
	return nil
}

func transitionAction(to model.OrderStatus) string {
	switch to {
	case model.OrderShipped:
		return event.ActionOrderShipped
	case model.OrderDelivered:
		return event.ActionOrderDelivered
	case model.OrderCancelled:
		return event.ActionOrderCancelled
	}
	return string(to)
}

func (s *orderService) publishStock(ctx context.Context, changes []stockChange, orderID *uuid.UUID) {
	for _, c := range changes {
		data := map[string]interface{}{
			"sku":   c.SKU,
			"delta": c.Delta,
		}
		if c.Stock >= 0 {
			data["stock"] = c.Stock
		}
		if orderID != nil {
			data["order_id"] = *orderID
		}
		s.publish(ctx, event.New(event.TypeStock, event.ActionStockChanged, "", data))
	}
}

// loadForActor returns the order when the actor may see it. Orders outside
// the actor's scope are reported as not found.
func (s *orderService) loadForActor(ctx context.Context, repos repository.Repositories, orderID uuid.UUID, actor Actor, lock bool) (*model.Order, error) {
	var order *model.Order
	var err error
	if lock {
		order, err = repos.Orders().FindByIDForUpdate(ctx, orderID)
	} else {
		order, err = repos.Orders().FindByID(ctx, orderID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("order", orderID)
		}
		return nil, err
	}

	switch actor.Role {
	case model.RoleAdmin:
		return order, nil
	case model.RoleCustomer:
		if order.CustomerID != actor.ID {
			return nil, notFound("order", orderID)
		}
		return order, nil
	case model.RoleSeller:
		skus, err := repos.Products().SKUsBySeller(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		owned := make(map[string]bool, len(skus))
		for _, sku := range skus {
			owned[sku] = true
		}
		if !order.HasSellerItems(owned) {
			return nil, notFound("order", orderID)
		}
		return order, nil
	}
	return nil, fmt.Errorf("%w: unknown role %q", ErrForbidden, actor.Role)
}

func (s *orderService) ListByStatus(ctx context.Context, status model.OrderStatus, sellerID *uuid.UUID) ([]model.OrderLine, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, status)
	}
	var lines []model.OrderLine
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		lines, err = s.Store.Orders().ListLines(ctx, model.OrderFilter{Status: status, SellerID: sellerID})
		return err
	})
	return lines, err
}

func (s *orderService) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		orders, err = s.Store.Orders().FindByCustomer(ctx, customerID)
		return err
	})
	return orders, err
}

func (s *orderService) Get(ctx context.Context, orderID uuid.UUID, actor Actor) (*model.Order, error) {
	var order *model.Order
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.loadForActor(ctx, s.Store, orderID, actor, false)
		return err
	})
	return order, err
}

func (s *orderService) History(ctx context.Context, orderID uuid.UUID, actor Actor) ([]audit.Entry, error) {
	if _, err := s.Get(ctx, orderID, actor); err != nil {
		return nil, err
	}
	entries, err := s.Audit.History(ctx, audit.EntityOrder, orderID.String(), historyLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return entries, nil
}

func (s *orderService) Statuses(ctx context.Context) ([]model.Status, error) {
	var statuses []model.Status
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		statuses, err = s.Store.Statuses().FindAll(ctx)
		return err
	})
	return statuses, err
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tricommerce/internal/model"
	"tricommerce/internal/repository"
)

type CartService interface {
	AddItem(ctx context.Context, customerID uuid.UUID, sku string, qty int) error
	SetQuantity(ctx context.Context, customerID uuid.UUID, sku string, qty int) error
	RemoveItem(ctx context.Context, customerID uuid.UUID, sku string) error
	Snapshot(ctx context.Context, customerID uuid.UUID) (*model.CartSnapshot, error)
}

type cartService struct {
	core
}

func NewCartService(deps Deps) CartService {
	return &cartService{core: newCore(deps)}
}

// AddItem adds qty (1 when zero) to the customer's line for sku.
func (s *cartService) AddItem(ctx context.Context, customerID uuid.UUID, sku string, qty int) error {
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}

	return s.transact(ctx, func(ctx context.Context, tx repository.Repositories) error {
		product, err := tx.Products().FindBySKU(ctx, sku)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("product", sku)
			}
			return err
		}
		if !product.Orderable() {
			return fmt.Errorf("%w: %s is %s", ErrProductUnavailable, sku, product.Status)
		}
		return tx.Carts().AddQuantity(ctx, customerID, sku, qty)
	})
}

// SetQuantity replaces the quantity of an existing line. Use RemoveItem to
// delete a line.
func (s *cartService) SetQuantity(ctx context.Context, customerID uuid.UUID, sku string, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	err := s.call(ctx, func(ctx context.Context) error {
		return s.Store.Carts().SetQuantity(ctx, customerID, sku, qty)
	})
	if errors.Is(err, ErrNotFound) {
		return notFound("cart line", sku)
	}
	return err
}

// RemoveItem is a no-op when the line does not exist.
func (s *cartService) RemoveItem(ctx context.Context, customerID uuid.UUID, sku string) error {
	return s.call(ctx, func(ctx context.Context) error {
		return s.Store.Carts().Delete(ctx, customerID, sku)
	})
}

func (s *cartService) Snapshot(ctx context.Context, customerID uuid.UUID) (*model.CartSnapshot, error) {
	var lines []model.CartLine
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		lines, err = s.Store.Carts().FindByCustomer(ctx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	snapshot := buildSnapshot(customerID, lines)
	return &snapshot, nil
}

// buildSnapshot prices lines at the products' current unit price.
func buildSnapshot(customerID uuid.UUID, lines []model.CartLine) model.CartSnapshot {
	snapshot := model.CartSnapshot{
		CustomerID: customerID,
		Lines:      make([]model.CartSnapshotLine, 0, len(lines)),
		Total:      decimal.Zero,
	}
	for _, line := range lines {
		out := model.CartSnapshotLine{
			ProductSKU: line.ProductSKU,
			Quantity:   line.Quantity,
			UnitPrice:  decimal.Zero,
			LineTotal:  decimal.Zero,
		}
		if line.Product != nil {
			out.ProductName = line.Product.Name
			out.UnitPrice = line.Product.Price
			out.LineTotal = line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			out.Available = line.Product.Orderable() && line.Product.Stock >= line.Quantity
		}
		snapshot.Total = snapshot.Total.Add(out.LineTotal)
		snapshot.Lines = append(snapshot.Lines, out)
	}
	return snapshot
}

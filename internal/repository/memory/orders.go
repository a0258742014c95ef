package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"tricommerce/internal/model"
	"tricommerce/internal/repository"
)

type cartRepo struct {
	b *binding
}

func (r cartRepo) AddQuantity(ctx context.Context, customerID uuid.UUID, sku string, qty int) error {
	return r.b.with(ctx, func(st *state) error {
		lines := st.carts[customerID]
		if lines == nil {
			lines = make(map[string]model.CartLine)
			st.carts[customerID] = lines
		}
		now := time.Now()
		line, ok := lines[sku]
		if !ok {
			line = model.CartLine{CustomerID: customerID, ProductSKU: sku, CreatedAt: now}
		}
		line.Quantity += qty
		line.UpdatedAt = now
		lines[sku] = line
		return nil
	})
}

func (r cartRepo) SetQuantity(ctx context.Context, customerID uuid.UUID, sku string, qty int) error {
	return r.b.with(ctx, func(st *state) error {
		line, ok := st.carts[customerID][sku]
		if !ok {
			return repository.ErrNotFound
		}
		line.Quantity = qty
		line.UpdatedAt = time.Now()
		st.carts[customerID][sku] = line
		return nil
	})
}

func (r cartRepo) Delete(ctx context.Context, customerID uuid.UUID, sku string) error {
	return r.b.with(ctx, func(st *state) error {
		delete(st.carts[customerID], sku)
		return nil
	})
}

func (r cartRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := r.b.with(ctx, func(st *state) error {
		for _, line := range st.carts[customerID] {
			if p, ok := st.products[line.ProductSKU]; ok {
				line.Product = st.withCategory(p)
			}
			lines = append(lines, line)
		}
		return nil
	})
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductSKU < lines[j].ProductSKU })
	return lines, err
}

func (r cartRepo) Clear(ctx context.Context, customerID uuid.UUID) error {
	return r.b.with(ctx, func(st *state) error {
		delete(st.carts, customerID)
		return nil
	})
}

type orderRepo struct {
	b *binding
}

func (r orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.b.with(ctx, func(st *state) error {
		stamp(&order.BaseModel)
		for i := range order.Items {
			st.itemSeq++
			order.Items[i].ID = st.itemSeq
			order.Items[i].OrderID = order.ID
		}
		stored := *order
		stored.Customer = nil
		stored.Items = make([]model.OrderItem, len(order.Items))
		for i, item := range order.Items {
			item.Product = nil
			stored.Items[i] = item
		}
		st.orders[order.ID] = stored
		return nil
	})
}

func (r orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var found *model.Order
	err := r.b.with(ctx, func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = st.loadOrder(o)
		return nil
	})
	return found, err
}

func (r orderRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.FindByID(ctx, id)
}

func (r orderRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	err := r.b.with(ctx, func(st *state) error {
		for _, o := range st.orders {
			if o.CustomerID == customerID {
				orders = append(orders, *st.loadOrder(o))
			}
		}
		return nil
	})
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderDate.After(orders[j].OrderDate) })
	return orders, err
}

func (r orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	return r.b.with(ctx, func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return repository.ErrNotFound
		}
		o.Status = status
		stamp(&o.BaseModel)
		st.orders[id] = o
		return nil
	})
}

func (r orderRepo) ListLines(ctx context.Context, filter model.OrderFilter) ([]model.OrderLine, error) {
	var lines []model.OrderLine
	err := r.b.with(ctx, func(st *state) error {
		for _, o := range st.orders {
			if filter.Status != "" && o.Status != filter.Status {
				continue
			}
			if filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
				continue
			}
			customer, ok := st.customers[o.CustomerID]
			if !ok {
				continue
			}
			for _, item := range o.Items {
				p, ok := st.products[item.ProductSKU]
				if !ok {
					continue
				}
				if filter.SellerID != nil && p.SellerID != *filter.SellerID {
					continue
				}
				lines = append(lines, model.OrderLine{
					OrderID:      o.ID,
					ProductSKU:   item.ProductSKU,
					ProductName:  p.Name,
					SellerID:     p.SellerID,
					Quantity:     item.Quantity,
					UnitPrice:    item.UnitPrice,
					LineTotal:    item.LineTotal(),
					CustomerID:   o.CustomerID,
					CustomerName: customer.FullName(),
					OrderDate:    o.OrderDate,
					Status:       o.Status,
				})
			}
		}
		return nil
	})
	sort.Slice(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if !a.OrderDate.Equal(b.OrderDate) {
			return a.OrderDate.After(b.OrderDate)
		}
		if a.OrderID != b.OrderID {
			return a.OrderID.String() < b.OrderID.String()
		}
		return a.ProductSKU < b.ProductSKU
	})
	return lines, err
}

func (r orderRepo) CountForSeller(ctx context.Context, sellerID uuid.UUID, status model.OrderStatus) (int64, error) {
	var n int64
	err := r.b.with(ctx, func(st *state) error {
		for _, o := range st.orders {
			if o.Status != status {
				continue
			}
			for _, item := range o.Items {
				if p, ok := st.products[item.ProductSKU]; ok && p.SellerID == sellerID {
					n++
					break
				}
			}
		}
		return nil
	})
	return n, err
}

// loadOrder returns a detached copy with item products attached.
func (st *state) loadOrder(o model.Order) *model.Order {
	items := make([]model.OrderItem, len(o.Items))
	for i, item := range o.Items {
		if p, ok := st.products[item.ProductSKU]; ok {
			item.Product = st.withCategory(p)
		}
		items[i] = item
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductSKU < items[j].ProductSKU })
	o.Items = items
	return &o
}

package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"tricommerce/internal/model"
	"tricommerce/internal/repository"
)

type productRepo struct {
	b *binding
}

func (r productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.b.with(ctx, func(st *state) error {
		if _, ok := st.products[product.SKU]; ok {
			return repository.ErrDuplicate
		}
		stamp(&product.BaseModel)
		stored := *product
		stored.Category = nil
		st.products[product.SKU] = stored
		return nil
	})
}

func (r productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var found *model.Product
	err := r.b.with(ctx, func(st *state) error {
		p, ok := st.products[sku]
		if !ok {
			return repository.ErrNotFound
		}
		found = st.withCategory(p)
		return nil
	})
	return found, err
}

// FindBySKUForUpdate needs no extra locking: the transaction already holds
// the store mutex.
func (r productRepo) FindBySKUForUpdate(ctx context.Context, sku string) (*model.Product, error) {
	return r.FindBySKU(ctx, sku)
}

func (r productRepo) FindByStatus(ctx context.Context, status model.ProductStatus, sellerID *uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.b.with(ctx, func(st *state) error {
		for _, p := range st.products {
			if status != "" && p.Status != status {
				continue
			}
			if sellerID != nil && p.SellerID != *sellerID {
				continue
			}
			products = append(products, *st.withCategory(p))
		}
		return nil
	})
	sort.Slice(products, func(i, j int) bool { return products[i].SKU < products[j].SKU })
	return products, err
}

func (r productRepo) SKUsBySeller(ctx context.Context, sellerID uuid.UUID) ([]string, error) {
	var skus []string
	err := r.b.with(ctx, func(st *state) error {
		for sku, p := range st.products {
			if p.SellerID == sellerID {
				skus = append(skus, sku)
			}
		}
		return nil
	})
	sort.Strings(skus)
	return skus, err
}

func (r productRepo) UpdateStatus(ctx context.Context, sku string, status model.ProductStatus) error {
	return r.b.with(ctx, func(st *state) error {
		p, ok := st.products[sku]
		if !ok {
			return repository.ErrNotFound
		}
		p.Status = status
		stamp(&p.BaseModel)
		st.products[sku] = p
		return nil
	})
}

func (r productRepo) ActivatePending(ctx context.Context) ([]string, error) {
	var skus []string
	err := r.b.with(ctx, func(st *state) error {
		for sku, p := range st.products {
			if p.Status != model.ProductPending {
				continue
			}
			p.Status = model.ProductActive
			stamp(&p.BaseModel)
			st.products[sku] = p
			skus = append(skus, sku)
		}
		return nil
	})
	sort.Strings(skus)
	return skus, err
}

func (r productRepo) AdjustStock(ctx context.Context, sku string, delta int) error {
	return r.b.with(ctx, func(st *state) error {
		p, ok := st.products[sku]
		if !ok {
			return repository.ErrNotFound
		}
		if p.Stock+delta < 0 {
			return repository.ErrStockConflict
		}
		p.Stock += delta
		stamp(&p.BaseModel)
		st.products[sku] = p
		return nil
	})
}

func (r productRepo) CountLowStock(ctx context.Context, sellerID uuid.UUID, threshold int) (int64, error) {
	var n int64
	err := r.b.with(ctx, func(st *state) error {
		for _, p := range st.products {
			if p.SellerID == sellerID && p.Stock < threshold {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r productRepo) CountByStatus(ctx context.Context, sellerID uuid.UUID) (map[model.ProductStatus]int64, error) {
	counts := make(map[model.ProductStatus]int64)
	err := r.b.with(ctx, func(st *state) error {
		for _, p := range st.products {
			if p.SellerID == sellerID {
				counts[p.Status]++
			}
		}
		return nil
	})
	return counts, err
}

func (st *state) withCategory(p model.Product) *model.Product {
	if c, ok := st.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	return &p
}

type categoryRepo struct {
	b *binding
}

func (r categoryRepo) FindAll(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.b.with(ctx, func(st *state) error {
		for _, c := range st.categories {
			categories = append(categories, c)
		}
		return nil
	})
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, err
}

func (r categoryRepo) FindByID(ctx context.Context, id uint) (*model.Category, error) {
	var found *model.Category
	err := r.b.with(ctx, func(st *state) error {
		c, ok := st.categories[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = &c
		return nil
	})
	return found, err
}

func (r categoryRepo) SeedDefaults(ctx context.Context) error {
	return r.b.with(ctx, func(st *state) error {
		for _, c := range model.DefaultCategories {
			if _, ok := st.categories[c.ID]; !ok {
				st.categories[c.ID] = c
			}
		}
		return nil
	})
}

type statusRepo struct {
	b *binding
}

func (r statusRepo) FindAll(ctx context.Context) ([]model.Status, error) {
	var statuses []model.Status
	err := r.b.with(ctx, func(st *state) error {
		for _, s := range st.statuses {
			statuses = append(statuses, s)
		}
		return nil
	})
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].ID < statuses[j].ID })
	return statuses, err
}

func (r statusRepo) SeedDefaults(ctx context.Context) error {
	return r.b.with(ctx, func(st *state) error {
		for _, s := range model.DefaultStatuses {
			if _, ok := st.statuses[s.ID]; !ok {
				st.statuses[s.ID] = s
			}
		}
		return nil
	})
}

type movementRepo struct {
	b *binding
}

func (r movementRepo) Create(ctx context.Context, movement *model.StockMovement) error {
	return r.b.with(ctx, func(st *state) error {
		stamp(&movement.BaseModel)
		st.movements = append(st.movements, *movement)
		return nil
	})
}

// FindBySKU returns newest first; insertion order breaks timestamp ties.
func (r movementRepo) FindBySKU(ctx context.Context, sku string) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.b.with(ctx, func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			if st.movements[i].ProductSKU == sku {
				movements = append(movements, st.movements[i])
			}
		}
		return nil
	})
	return movements, err
}

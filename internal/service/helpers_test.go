package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"tricommerce/internal/audit"
	"tricommerce/internal/event"
	"tricommerce/internal/model"
	"tricommerce/internal/repository"
	"tricommerce/internal/repository/memory"
)

type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  *memory.Store
	events *event.Recorder
	audit  *audit.Memory
	deps   Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		store:  memory.New(),
		events: &event.Recorder{},
		audit:  &audit.Memory{},
	}
	f.deps = Deps{Store: f.store, Events: f.events, Audit: f.audit, TxTimeout: time.Second}
	require.NoError(t, f.store.Categories().SeedDefaults(f.ctx))
	require.NoError(t, f.store.Statuses().SeedDefaults(f.ctx))
	require.NoError(t, f.store.References().SeedDefaults(f.ctx))
	return f
}

func (f *fixture) seller(status model.SellerStatus) *model.Seller {
	f.t.Helper()
	id := uuid.New()
	s := &model.Seller{
		BaseModel:     model.BaseModel{ID: id},
		Credentials:   model.Credentials{Email: id.String() + "@seller.test"},
		StoreName:     id.String()[:8],
		AccountStatus: status,
	}
	require.NoError(f.t, f.store.Sellers().Create(f.ctx, s))
	return s
}

func (f *fixture) customer(address string) *model.Customer {
	f.t.Helper()
	id := uuid.New()
	c := &model.Customer{
		BaseModel:       model.BaseModel{ID: id},
		Credentials:     model.Credentials{Email: id.String() + "@customer.test"},
		FirstName:       "Test",
		LastName:        "Customer",
		DeliveryAddress: address,
	}
	require.NoError(f.t, f.store.Customers().Create(f.ctx, c))
	return c
}

func (f *fixture) product(sku, price string, stock int, status model.ProductStatus, sellerID uuid.UUID) *model.Product {
	f.t.Helper()
	p := &model.Product{
		SKU:        sku,
		SellerID:   sellerID,
		Name:       "Product " + sku,
		CategoryID: 1,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Status:     status,
	}
	require.NoError(f.t, f.store.Products().Create(f.ctx, p))
	return p
}

func (f *fixture) stock(sku string) int {
	f.t.Helper()
	p, err := f.store.Products().FindBySKU(f.ctx, sku)
	require.NoError(f.t, err)
	return p.Stock
}

func (f *fixture) cart(customerID uuid.UUID) []model.CartLine {
	f.t.Helper()
	lines, err := f.store.Carts().FindByCustomer(f.ctx, customerID)
	require.NoError(f.t, err)
	return lines
}

func admin() Actor {
	return Actor{ID: uuid.New(), Role: model.RoleAdmin}
}

var errInjected = errors.New("injected failure")

// faultyStore fails one named step of a transaction after the underlying
// write has already been applied to the working state.
type faultyStore struct {
	repository.Store
	fail string
}

func (s *faultyStore) Transact(ctx context.Context, fn func(tx repository.Repositories) error) error {
	return s.Store.Transact(ctx, func(tx repository.Repositories) error {
		return fn(faultyRepos{Repositories: tx, fail: s.fail})
	})
}

type faultyRepos struct {
	repository.Repositories
	fail string
}

func (r faultyRepos) Orders() repository.OrderRepository {
	return faultyOrders{r.Repositories.Orders(), r.fail}
}

func (r faultyRepos) Products() repository.ProductRepository {
	return faultyProducts{r.Repositories.Products(), r.fail}
}

func (r faultyRepos) Movements() repository.MovementRepository {
	return faultyMovements{r.Repositories.Movements(), r.fail}
}

func (r faultyRepos) Carts() repository.CartRepository {
	return faultyCarts{r.Repositories.Carts(), r.fail}
}

type faultyOrders struct {
	repository.OrderRepository
	fail string
}

func (o faultyOrders) Create(ctx context.Context, order *model.Order) error {
	if err := o.OrderRepository.Create(ctx, order); err != nil {
		return err
	}
	if o.fail == "order.create" {
		return errInjected
	}
	return nil
}

type faultyProducts struct {
	repository.ProductRepository
	fail string
}

func (p faultyProducts) AdjustStock(ctx context.Context, sku string, delta int) error {
	if err := p.ProductRepository.AdjustStock(ctx, sku, delta); err != nil {
		return err
	}
	if p.fail == "stock.adjust" {
		return errInjected
	}
	return nil
}

type faultyMovements struct {
	repository.MovementRepository
	fail string
}

func (m faultyMovements) Create(ctx context.Context, movement *model.StockMovement) error {
	if err := m.MovementRepository.Create(ctx, movement); err != nil {
		return err
	}
	if m.fail == "movement.create" {
		return errInjected
	}
	return nil
}

type faultyCarts struct {
	repository.CartRepository
	fail string
}

func (c faultyCarts) Clear(ctx context.Context, customerID uuid.UUID) error {
	if err := c.CartRepository.Clear(ctx, customerID); err != nil {
		return err
	}
	if c.fail == "cart.clear" {
		return errInjected
	}
	return nil
}

// stalledStore never finishes a transaction before its context expires.
type stalledStore struct {
	repository.Store
}

func (s stalledStore) Transact(ctx context.Context, _ func(tx repository.Repositories) error) error {
	<-ctx.Done()
	return ctx.Err()
}

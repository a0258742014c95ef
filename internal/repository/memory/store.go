// Package memory is an in-process repository.Store used by tests and by the
// API when no database URL is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tricommerce/internal/model"
	"tricommerce/internal/repository"
)

// Store serialises every unit of work behind one mutex. Transact works on a
// copy of the state which replaces the live state only when fn succeeds.
//
// Calling the Store's own repositories from inside a Transact callback
// deadlocks; use the tx argument.
type Store struct {
	repos

	mu sync.Mutex
	st *state
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	s := &Store{st: newState()}
	s.repos = repos{b: &binding{s: s}}
	return s
}

func (s *Store) Transact(ctx context.Context, fn func(tx repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(repos{b: &binding{s: s, st: work}}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

type state struct {
	products   map[string]model.Product
	categories map[uint]model.Category
	sellers    map[uuid.UUID]model.Seller
	customers  map[uuid.UUID]model.Customer
	admins     map[uuid.UUID]model.Admin
	carts      map[uuid.UUID]map[string]model.CartLine
	orders     map[uuid.UUID]model.Order
	statuses   map[uint]model.Status
	cities     map[string]model.City
	banks      map[string]model.Bank
	movements  []model.StockMovement
	itemSeq    uint
}

func newState() *state {
	return &state{
		products:   make(map[string]model.Product),
		categories: make(map[uint]model.Category),
		sellers:    make(map[uuid.UUID]model.Seller),
		customers:  make(map[uuid.UUID]model.Customer),
		admins:     make(map[uuid.UUID]model.Admin),
		carts:      make(map[uuid.UUID]map[string]model.CartLine),
		orders:     make(map[uuid.UUID]model.Order),
		statuses:   make(map[uint]model.Status),
		cities:     make(map[string]model.City),
		banks:      make(map[string]model.Bank),
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.categories {
		c.categories[k] = v
	}
	for k, v := range st.sellers {
		c.sellers[k] = v
	}
	for k, v := range st.customers {
		c.customers[k] = v
	}
	for k, v := range st.admins {
		c.admins[k] = v
	}
	for k, lines := range st.carts {
		cp := make(map[string]model.CartLine, len(lines))
		for sku, line := range lines {
			cp[sku] = line
		}
		c.carts[k] = cp
	}
	for k, v := range st.orders {
		v.Items = append([]model.OrderItem(nil), v.Items...)
		c.orders[k] = v
	}
	for k, v := range st.statuses {
		c.statuses[k] = v
	}
	for k, v := range st.cities {
		c.cities[k] = v
	}
	for k, v := range st.banks {
		c.banks[k] = v
	}
	c.movements = append([]model.StockMovement(nil), st.movements...)
	c.itemSeq = st.itemSeq
	return c
}

// binding points repositories at the live state (autocommit) or at the
// working copy of an open transaction.
type binding struct {
	s  *Store
	st *state
}

func (b *binding) with(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.st != nil {
		return fn(b.st)
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	return fn(b.s.st)
}

type repos struct {
	b *binding
}

func (r repos) Products() repository.ProductRepository     { return productRepo{r.b} }
func (r repos) Categories() repository.CategoryRepository  { return categoryRepo{r.b} }
func (r repos) Sellers() repository.SellerRepository       { return sellerRepo{r.b} }
func (r repos) Customers() repository.CustomerRepository   { return customerRepo{r.b} }
func (r repos) Admins() repository.AdminRepository         { return adminRepo{r.b} }
func (r repos) Carts() repository.CartRepository           { return cartRepo{r.b} }
func (r repos) Orders() repository.OrderRepository         { return orderRepo{r.b} }
func (r repos) Statuses() repository.StatusRepository      { return statusRepo{r.b} }
func (r repos) Movements() repository.MovementRepository   { return movementRepo{r.b} }
func (r repos) References() repository.ReferenceRepository { return referenceRepo{r.b} }

// stamp does what the gorm hooks and autoTime columns do for the SQL store.
func stamp(base *model.BaseModel) {
	base.EnsureID()
	now := time.Now()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

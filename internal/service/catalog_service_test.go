package service

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tricommerce/internal/event"
	"tricommerce/internal/model"
)

func TestApproveAll_ActivatesOnlyPending(t *testing.T) {
	f := newFixture(t)
	seller := f.seller(model.SellerActive)
	f.product("P-1", "1.00", 1, model.ProductPending, seller.ID)
	f.product("P-2", "1.00", 1, model.ProductPending, seller.ID)
	f.product("P-3", "1.00", 1, model.ProductPending, seller.ID)
	f.product("A-1", "1.00", 1, model.ProductActive, seller.ID)
	f.product("I-1", "1.00", 1, model.ProductInactive, seller.ID)
	svc := NewCatalogService(f.deps)

	n, err := svc.ApproveAll(f.ctx, admin())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	active, err := svc.ListProducts(f.ctx, model.ProductActive, nil)
	require.NoError(t, err)
	assert.Len(t, active, 4)
	inactive, err := svc.ListProducts(f.ctx, model.ProductInactive, nil)
	require.NoError(t, err)
	assert.Len(t, inactive, 1)

	for _, sku := range []string{"P-1", "P-2", "P-3"} {
		history, err := f.audit.History(f.ctx, "product", sku, 10)
		require.NoError(t, err)
		require.Len(t, history, 1, sku)
		assert.Equal(t, "Pending", history[0].From)
		assert.Equal(t, "Active", history[0].To)
	}
	history, err := f.audit.History(f.ctx, "product", "A-1", 10)
	require.NoError(t, err)
	assert.Empty(t, history)

	n, err = svc.ApproveAll(f.ctx, admin())
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
	assert.Len(t, f.events.Events(), 1)
}

func TestApprove(t *testing.T) {
	f := newFixture(t)
	seller := f.seller(model.SellerActive)
	f.product("P-1", "1.00", 1, model.ProductPending, seller.ID)
	svc := NewCatalogService(f.deps)

	require.NoError(t, svc.Approve(f.ctx, "P-1", admin()))
	p, err := svc.GetProduct(f.ctx, "P-1")
	require.NoError(t, err)
	assert.Equal(t, model.ProductActive, p.Status)

	require.ErrorIs(t, svc.Approve(f.ctx, "P-1", admin()), ErrInvalidTransition)
	require.ErrorIs(t, svc.Approve(f.ctx, "NOPE", admin()), ErrNotFound)

	history, err := f.audit.History(f.ctx, "product", "P-1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Pending", history[0].From)
}

func TestToggleStatus(t *testing.T) {
	f := newFixture(t)
	seller := f.seller(model.SellerActive)
	other := Actor{ID: uuid.New(), Role: model.RoleSeller}
	owner := Actor{ID: seller.ID, Role: model.RoleSeller}
	f.product("A-1", "1.00", 1, model.ProductActive, seller.ID)
	f.product("P-1", "1.00", 1, model.ProductPending, seller.ID)
	svc := NewCatalogService(f.deps)

	status, err := svc.ToggleStatus(f.ctx, "A-1", owner)
	require.NoError(t, err)
	assert.Equal(t, model.ProductInactive, status)

	status, err = svc.ToggleStatus(f.ctx, "A-1", admin())
	require.NoError(t, err)
	assert.Equal(t, model.ProductActive, status)

	_, err = svc.ToggleStatus(f.ctx, "P-1", owner)
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.ToggleStatus(f.ctx, "A-1", other)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ToggleStatus(f.ctx, "NOPE", admin())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetSellerAccountStatus(t *testing.T) {
	f := newFixture(t)
	seller := f.seller(model.SellerPendingApproval)
	svc := NewCatalogService(f.deps)

	require.NoError(t, svc.SetSellerAccountStatus(f.ctx, seller.ID, model.SellerActive, admin()))
	require.NoError(t, svc.SetSellerAccountStatus(f.ctx, seller.ID, model.SellerActive, admin()))
	require.NoError(t, svc.SetSellerAccountStatus(f.ctx, seller.ID, model.SellerDeactivated, admin()))
	require.NoError(t, svc.SetSellerAccountStatus(f.ctx, seller.ID, model.SellerActive, admin()))

	require.ErrorIs(t, svc.SetSellerAccountStatus(f.ctx, seller.ID, model.SellerPendingApproval, admin()), ErrValidationFailed)
	require.ErrorIs(t, svc.SetSellerAccountStatus(f.ctx, uuid.New(), model.SellerActive, admin()), ErrNotFound)

	sellers, err := svc.ListSellers(f.ctx)
	require.NoError(t, err)
	require.Len(t, sellers, 1)
	assert.Equal(t, model.SellerActive, sellers[0].AccountStatus)
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)
	seller := f.seller(model.SellerActive)
	svc := NewCatalogService(f.deps)

	input := ProductInput{
		SKU:        "NEW-1",
		Name:       "Kettle",
		CategoryID: 3,
		Price:      decimal.RequireFromString("24.999"),
		Stock:      7,
	}
	p, err := svc.CreateProduct(f.ctx, seller.ID, input)
	require.NoError(t, err)
	assert.Equal(t, model.ProductPending, p.Status)
	assert.Equal(t, "25.00", p.Price.StringFixed(2))
	assert.False(t, p.PublishDate.IsZero())

	movements, err := svc.Movements(f.ctx, "NEW-1", Actor{ID: seller.ID, Role: model.RoleSeller})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, 7, movements[0].Quantity)
	assert.Equal(t, []string{event.ActionProductCreated}, f.events.Actions())

	_, err = svc.CreateProduct(f.ctx, seller.ID, input)
	require.ErrorIs(t, err, ErrDuplicateEntity)

	bad := input
	bad.SKU = "NEW-2"
	bad.Price = decimal.RequireFromString("-1")
	_, err = svc.CreateProduct(f.ctx, seller.ID, bad)
	require.ErrorIs(t, err, ErrValidationFailed)

	bad = input
	bad.SKU = "NEW-3"
	bad.CategoryID = 99
	_, err = svc.CreateProduct(f.ctx, seller.ID, bad)
	require.ErrorIs(t, err, ErrValidationFailed)

	bad = input
	bad.Name = ""
	_, err = svc.CreateProduct(f.ctx, seller.ID, bad)
	require.ErrorIs(t, err, ErrValidationFailed)
}

func TestCreateProduct_InactiveSellerForbidden(t *testing.T) {
	f := newFixture(t)
	seller := f.seller(model.SellerPendingApproval)
	svc := NewCatalogService(f.deps)

	_, err := svc.CreateProduct(f.ctx, seller.ID, ProductInput{SKU: "X", Name: "X", CategoryID: 1})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestRestock(t *testing.T) {
	f := newFixture(t)
	seller := f.seller(model.SellerActive)
	owner := Actor{ID: seller.ID, Role: model.RoleSeller}
	f.product("A-1", "1.00", 2, model.ProductActive, seller.ID)
	svc := NewCatalogService(f.deps)

	p, err := svc.Restock(f.ctx, "A-1", 8, owner)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock)
	assert.Equal(t, 10, f.stock("A-1"))

	_, err = svc.Restock(f.ctx, "A-1", 0, owner)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = svc.Restock(f.ctx, "A-1", 1, Actor{ID: uuid.New(), Role: model.RoleSeller})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Movements(f.ctx, "A-1", Actor{ID: uuid.New(), Role: model.RoleSeller})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRestock_RejectsOversizedQuantity(t *testing.T) {
	f := newFixture(t)
	seller := f.seller(model.SellerActive)
	owner := Actor{ID: seller.ID, Role: model.RoleSeller}
	f.product("A-1", "1.00", 5, model.ProductActive, seller.ID)
	svc := NewCatalogService(f.deps)

	_, err := svc.Restock(f.ctx, "A-1", math.MaxInt, owner)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = svc.Restock(f.ctx, "A-1", model.MaxStock, owner)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, 5, f.stock("A-1"))

	p, err := svc.Restock(f.ctx, "A-1", model.MaxStock-5, owner)
	require.NoError(t, err)
	assert.Equal(t, model.MaxStock, p.Stock)
}

func TestMovements_CustomerForbiddenRegardlessOfSKU(t *testing.T) {
	f := newFixture(t)
	seller := f.seller(model.SellerActive)
	f.product("A-1", "1.00", 5, model.ProductActive, seller.ID)
	svc := NewCatalogService(f.deps)
	customer := Actor{ID: uuid.New(), Role: model.RoleCustomer}

	_, err := svc.Movements(f.ctx, "A-1", customer)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Movements(f.ctx, "NOPE", customer)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestListCategories(t *testing.T) {
	f := newFixture(t)
	categories, err := NewCatalogService(f.deps).ListCategories(f.ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(model.DefaultCategories))
}

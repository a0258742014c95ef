package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tricommerce/internal/model"
	"tricommerce/internal/repository"
)

func newProduct(sku string, stock int) *model.Product {
	return &model.Product{
		SKU:      sku,
		SellerID: uuid.New(),
		Name:     sku,
		Price:    decimal.RequireFromString("10.00"),
		Stock:    stock,
		Status:   model.ProductActive,
	}
}

func TestTransact_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Products().Create(ctx, newProduct("SKU-A", 5)))

	boom := errors.New("boom")
	err := store.Transact(ctx, func(tx repository.Repositories) error {
		require.NoError(t, tx.Products().AdjustStock(ctx, "SKU-A", -2))
		require.NoError(t, tx.Carts().AddQuantity(ctx, uuid.New(), "SKU-A", 1))
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := store.Products().FindBySKU(ctx, "SKU-A")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
}

func TestTransact_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Products().Create(ctx, newProduct("SKU-A", 5)))

	err := store.Transact(ctx, func(tx repository.Repositories) error {
		return tx.Products().AdjustStock(ctx, "SKU-A", -5)
	})
	require.NoError(t, err)

	p, err := store.Products().FindBySKU(ctx, "SKU-A")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
}

func TestTransact_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := New().Transact(ctx, func(tx repository.Repositories) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestAdjustStock_NeverNegative(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Products().Create(ctx, newProduct("SKU-A", 1)))

	require.ErrorIs(t, store.Products().AdjustStock(ctx, "SKU-A", -2), repository.ErrStockConflict)
	require.ErrorIs(t, store.Products().AdjustStock(ctx, "SKU-X", -1), repository.ErrNotFound)
	require.NoError(t, store.Products().AdjustStock(ctx, "SKU-A", -1))
}

func TestProductCreate_DuplicateSKU(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Products().Create(ctx, newProduct("SKU-A", 1)))
	require.ErrorIs(t, store.Products().Create(ctx, newProduct("SKU-A", 1)), repository.ErrDuplicate)
}

func TestCart_AddQuantityAccumulates(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Products().Create(ctx, newProduct("SKU-B", 3)))
	require.NoError(t, store.Products().Create(ctx, newProduct("SKU-A", 3)))
	customer := uuid.New()

	require.NoError(t, store.Carts().AddQuantity(ctx, customer, "SKU-B", 1))
	require.NoError(t, store.Carts().AddQuantity(ctx, customer, "SKU-A", 1))
	require.NoError(t, store.Carts().AddQuantity(ctx, customer, "SKU-A", 2))

	lines, err := store.Carts().FindByCustomer(ctx, customer)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "SKU-A", lines[0].ProductSKU)
	assert.Equal(t, 3, lines[0].Quantity)
	require.NotNil(t, lines[0].Product)

	require.ErrorIs(t, store.Carts().SetQuantity(ctx, customer, "SKU-C", 2), repository.ErrNotFound)
	require.NoError(t, store.Carts().Delete(ctx, customer, "SKU-C"))
	require.NoError(t, store.Carts().Clear(ctx, customer))

	lines, err = store.Carts().FindByCustomer(ctx, customer)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestActivatePending(t *testing.T) {
	ctx := context.Background()
	store := New()
	pending := newProduct("SKU-P", 1)
	pending.Status = model.ProductPending
	require.NoError(t, store.Products().Create(ctx, pending))
	require.NoError(t, store.Products().Create(ctx, newProduct("SKU-A", 1)))

	skus, err := store.Products().ActivatePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"SKU-P"}, skus)

	skus, err = store.Products().ActivatePending(ctx)
	require.NoError(t, err)
	assert.Empty(t, skus)
}

func TestOrders_ListLinesScopedToSeller(t *testing.T) {
	ctx := context.Background()
	store := New()

	customer := &model.Customer{FirstName: "Ada", LastName: "Lovelace", Credentials: model.Credentials{Email: "ada@example.com"}}
	require.NoError(t, store.Customers().Create(ctx, customer))
	a := newProduct("SKU-A", 5)
	b := newProduct("SKU-B", 5)
	require.NoError(t, store.Products().Create(ctx, a))
	require.NoError(t, store.Products().Create(ctx, b))

	order := &model.Order{
		CustomerID: customer.ID,
		Status:     model.OrderPending,
		Items: []model.OrderItem{
			{ProductSKU: "SKU-A", Quantity: 2, UnitPrice: a.Price},
			{ProductSKU: "SKU-B", Quantity: 1, UnitPrice: b.Price},
		},
	}
	require.NoError(t, store.Orders().Create(ctx, order))
	assert.NotZero(t, order.Items[0].ID)

	lines, err := store.Orders().ListLines(ctx, model.OrderFilter{SellerID: &a.SellerID})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "SKU-A", lines[0].ProductSKU)
	assert.Equal(t, "Ada Lovelace", lines[0].CustomerName)
	assert.True(t, decimal.RequireFromString("20").Equal(lines[0].LineTotal))

	n, err := store.Orders().CountForSeller(ctx, b.SellerID, model.OrderPending)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestReferences_SeedAndLookup(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.References().SeedDefaults(ctx))
	require.NoError(t, store.References().SeedDefaults(ctx))

	cities, err := store.References().Cities(ctx)
	require.NoError(t, err)
	assert.Len(t, cities, len(model.DefaultCities))
	assert.Equal(t, "Faisalabad", cities[0].Name)

	city, err := store.References().FindCity(ctx, "ISLAMABAD")
	require.NoError(t, err)
	assert.Equal(t, "Islamabad", city.Name)
	_, err = store.References().FindCity(ctx, "Atlantis")
	require.ErrorIs(t, err, repository.ErrNotFound)

	bank, err := store.References().FindBank(ctx, "bank alfalah")
	require.NoError(t, err)
	assert.Equal(t, "Bank Alfalah", bank.Name)
}

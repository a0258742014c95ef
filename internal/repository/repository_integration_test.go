//go:build integration

package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"tricommerce/internal/config"
	"tricommerce/internal/model"
	"tricommerce/internal/repository"
	"tricommerce/pkg/database"
)

func setupPostgresStore(t *testing.T) repository.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("tricommerce_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.ConnectDB(config.DatabaseConfig{URL: dsn, MaxIdleConns: 5, MaxOpenConns: 20}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))

	store := repository.NewGormStore(db)
	require.NoError(t, store.Categories().SeedDefaults(ctx))
	require.NoError(t, store.Statuses().SeedDefaults(ctx))
	require.NoError(t, store.References().SeedDefaults(ctx))
	return store
}

func seedProduct(t *testing.T, store repository.Store, sku string, stock int, sellerID uuid.UUID) {
	t.Helper()
	require.NoError(t, store.Products().Create(context.Background(), &model.Product{
		SKU:        sku,
		SellerID:   sellerID,
		Name:       "Product " + sku,
		CategoryID: 1,
		Price:      decimal.RequireFromString("9.99"),
		Stock:      stock,
		Status:     model.ProductActive,
	}))
}

func seedCustomer(t *testing.T, store repository.Store) *model.Customer {
	t.Helper()
	id := uuid.New()
	c := &model.Customer{
		BaseModel:   model.BaseModel{ID: id},
		Credentials: model.Credentials{Email: id.String() + "@customer.test", Password: "x"},
		FirstName:   "Int",
		LastName:    "Test",
	}
	require.NoError(t, store.Customers().Create(context.Background(), c))
	return c
}

func TestProducts_DuplicateAndStockGuard(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()
	seller := uuid.New()
	seedProduct(t, store, "P-1", 2, seller)

	err := store.Products().Create(ctx, &model.Product{SKU: "P-1", SellerID: seller, Name: "dup", CategoryID: 1, Status: model.ProductPending})
	require.ErrorIs(t, err, repository.ErrDuplicate)

	require.ErrorIs(t, store.Products().AdjustStock(ctx, "P-1", -3), repository.ErrStockConflict)
	require.ErrorIs(t, store.Products().AdjustStock(ctx, "NOPE", -1), repository.ErrNotFound)
	require.NoError(t, store.Products().AdjustStock(ctx, "P-1", -2))

	p, err := store.Products().FindBySKU(ctx, "P-1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	require.NotNil(t, p.Category)
}

func TestProducts_ActivatePendingReturnsSKUs(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()
	seller := uuid.New()
	for _, sku := range []string{"PEND-2", "PEND-1"} {
		require.NoError(t, store.Products().Create(ctx, &model.Product{
			SKU: sku, SellerID: seller, Name: sku, CategoryID: 1, Status: model.ProductPending,
		}))
	}
	seedProduct(t, store, "ACT-1", 1, seller)

	var skus []string
	require.NoError(t, store.Transact(ctx, func(tx repository.Repositories) error {
		var err error
		skus, err = tx.Products().ActivatePending(ctx)
		return err
	}))
	assert.Equal(t, []string{"PEND-1", "PEND-2"}, skus)

	skus, err := store.Products().ActivatePending(ctx)
	require.NoError(t, err)
	assert.Empty(t, skus)
}

func TestReferences_CaseInsensitiveLookup(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()

	city, err := store.References().FindCity(ctx, "lahore")
	require.NoError(t, err)
	assert.Equal(t, "Lahore", city.Name)
	_, err = store.References().FindBank(ctx, "Bank of Nowhere")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, store.References().SeedDefaults(ctx))
	banks, err := store.References().Banks(ctx)
	require.NoError(t, err)
	assert.Len(t, banks, len(model.DefaultBanks))
}

func TestTransact_RollsBack(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()
	seedProduct(t, store, "P-RB", 5, uuid.New())
	boom := errors.New("boom")

	err := store.Transact(ctx, func(tx repository.Repositories) error {
		if err := tx.Products().AdjustStock(ctx, "P-RB", -4); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := store.Products().FindBySKU(ctx, "P-RB")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
}

func TestCart_AddQuantityUpserts(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()
	seedProduct(t, store, "P-C", 5, uuid.New())
	customer := seedCustomer(t, store)

	require.NoError(t, store.Carts().AddQuantity(ctx, customer.ID, "P-C", 2))
	require.NoError(t, store.Carts().AddQuantity(ctx, customer.ID, "P-C", 3))

	lines, err := store.Carts().FindByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	require.NotNil(t, lines[0].Product)

	require.ErrorIs(t, store.Carts().SetQuantity(ctx, customer.ID, "OTHER", 1), repository.ErrNotFound)
	require.NoError(t, store.Carts().Clear(ctx, customer.ID))
	lines, err = store.Carts().FindByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestOrders_ListLinesSellerScope(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()
	sellerA, sellerB := uuid.New(), uuid.New()
	seedProduct(t, store, "A-1", 5, sellerA)
	seedProduct(t, store, "B-1", 5, sellerB)
	customer := seedCustomer(t, store)

	order := &model.Order{
		CustomerID:      customer.ID,
		ShippingAddress: "addr",
		OrderDate:       time.Now(),
		Status:          model.OrderPending,
		Items: []model.OrderItem{
			{ProductSKU: "A-1", Quantity: 1, UnitPrice: decimal.RequireFromString("9.99")},
			{ProductSKU: "B-1", Quantity: 2, UnitPrice: decimal.RequireFromString("9.99")},
		},
	}
	require.NoError(t, store.Orders().Create(ctx, order))

	lines, err := store.Orders().ListLines(ctx, model.OrderFilter{Status: model.OrderPending, SellerID: &sellerA})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "A-1", lines[0].ProductSKU)
	assert.Equal(t, "Int Test", lines[0].CustomerName)

	n, err := store.Orders().CountForSeller(ctx, sellerB, model.OrderPending)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, store.Orders().UpdateStatus(ctx, order.ID, model.OrderShipped))
	loaded, err := store.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderShipped, loaded.Status)
	assert.Len(t, loaded.Items, 2)
}

func TestConcurrentStockDecrementsNeverOversell(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()
	seedProduct(t, store, "HOT", 5, uuid.New())

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Transact(ctx, func(tx repository.Repositories) error {
				p, err := tx.Products().FindBySKUForUpdate(ctx, "HOT")
				if err != nil {
					return err
				}
				if p.Stock < 1 {
					return repository.ErrStockConflict
				}
				return tx.Products().AdjustStock(ctx, "HOT", -1)
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	p, err := store.Products().FindBySKU(ctx, "HOT")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
}

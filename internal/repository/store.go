package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tricommerce/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrStockConflict is returned by AdjustStock when the change would make stock negative.
	ErrStockConflict = errors.New("stock would become negative")
)

// Repositories is the set of entity repositories bound to one connection or
// one open transaction.
type Repositories interface {
	Products() ProductRepository
	Categories() CategoryRepository
	Sellers() SellerRepository
	Customers() CustomerRepository
	Admins() AdminRepository
	Carts() CartRepository
	Orders() OrderRepository
	Statuses() StatusRepository
	Movements() MovementRepository
	References() ReferenceRepository
}

// Store is the persistence port shared by every service. Transact runs fn in
// one unit of work: it commits when fn returns nil and rolls everything back
// otherwise.
type Store interface {
	Repositories
	Transact(ctx context.Context, fn func(tx Repositories) error) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	// FindBySKUForUpdate locks the row until the surrounding transaction ends.
	FindBySKUForUpdate(ctx context.Context, sku string) (*model.Product, error)
	FindByStatus(ctx context.Context, status model.ProductStatus, sellerID *uuid.UUID) ([]model.Product, error)
	SKUsBySeller(ctx context.Context, sellerID uuid.UUID) ([]string, error)
	UpdateStatus(ctx context.Context, sku string, status model.ProductStatus) error
	// ActivatePending moves every Pending product to Active and returns the
	// SKUs that moved.
	ActivatePending(ctx context.Context) ([]string, error)
	// AdjustStock adds delta to the stock, refusing to go below zero.
	AdjustStock(ctx context.Context, sku string, delta int) error
	CountLowStock(ctx context.Context, sellerID uuid.UUID, threshold int) (int64, error)
	CountByStatus(ctx context.Context, sellerID uuid.UUID) (map[model.ProductStatus]int64, error)
}

type CategoryRepository interface {
	FindAll(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id uint) (*model.Category, error)
	SeedDefaults(ctx context.Context) error
}

type SellerRepository interface {
	Create(ctx context.Context, seller *model.Seller) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Seller, error)
	FindByEmail(ctx context.Context, email string) (*model.Seller, error)
	ExistsByStoreNameOrEmail(ctx context.Context, storeName, email string) (bool, error)
	FindAll(ctx context.Context) ([]model.Seller, error)
	UpdateAccountStatus(ctx context.Context, id uuid.UUID, status model.SellerStatus) error
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	FindByEmail(ctx context.Context, email string) (*model.Customer, error)
	Update(ctx context.Context, customer *model.Customer) error
}

type AdminRepository interface {
	Create(ctx context.Context, admin *model.Admin) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Admin, error)
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
}

type CartRepository interface {
	// AddQuantity creates the line or adds qty to the existing one.
	AddQuantity(ctx context.Context, customerID uuid.UUID, sku string, qty int) error
	SetQuantity(ctx context.Context, customerID uuid.UUID, sku string, qty int) error
	Delete(ctx context.Context, customerID uuid.UUID, sku string) error
	// FindByCustomer returns the lines ordered by SKU with Product loaded.
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.CartLine, error)
	Clear(ctx context.Context, customerID uuid.UUID) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
	ListLines(ctx context.Context, filter model.OrderFilter) ([]model.OrderLine, error)
	// CountForSeller counts distinct orders in status that contain a product of the seller.
	CountForSeller(ctx context.Context, sellerID uuid.UUID, status model.OrderStatus) (int64, error)
}

type StatusRepository interface {
	FindAll(ctx context.Context) ([]model.Status, error)
	SeedDefaults(ctx context.Context) error
}

// ReferenceRepository serves the city and bank lookup tables. Find matches
// names case-insensitively.
type ReferenceRepository interface {
	Cities(ctx context.Context) ([]model.City, error)
	Banks(ctx context.Context) ([]model.Bank, error)
	FindCity(ctx context.Context, name string) (*model.City, error)
	FindBank(ctx context.Context, name string) (*model.Bank, error)
	SeedDefaults(ctx context.Context) error
}

type MovementRepository interface {
	Create(ctx context.Context, movement *model.StockMovement) error
	FindBySKU(ctx context.Context, sku string) ([]model.StockMovement, error)
}

// gormStore binds the gorm repositories to either the root *gorm.DB or a
// transaction handle.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore returns the PostgreSQL-backed Store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Transact(ctx context.Context, fn func(tx Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) Products() ProductRepository     { return NewProductRepo(s.db) }
func (s *gormStore) Categories() CategoryRepository  { return NewCategoryRepo(s.db) }
func (s *gormStore) Sellers() SellerRepository       { return NewSellerRepo(s.db) }
func (s *gormStore) Customers() CustomerRepository   { return NewCustomerRepo(s.db) }
func (s *gormStore) Admins() AdminRepository         { return NewAdminRepo(s.db) }
func (s *gormStore) Carts() CartRepository           { return NewCartRepo(s.db) }
func (s *gormStore) Orders() OrderRepository         { return NewOrderRepo(s.db) }
func (s *gormStore) Statuses() StatusRepository      { return NewStatusRepo(s.db) }
func (s *gormStore) Movements() MovementRepository   { return NewMovementRepo(s.db) }
func (s *gormStore) References() ReferenceRepository { return NewReferenceRepo(s.db) }

// translate maps gorm/driver errors onto the repository sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "SQLSTATE 23505") {
		return ErrDuplicate
	}
	return err
}

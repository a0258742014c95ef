package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tricommerce/internal/audit"
	"tricommerce/internal/event"
	"tricommerce/internal/model"
	"tricommerce/internal/repository"
)

// ProductInput is what a seller submits to list a new product.
type ProductInput struct {
	SKU         string          `json:"sku" validate:"required,max=50"`
	Name        string          `json:"name" validate:"required,max=255"`
	CategoryID  uint            `json:"category_id" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0,lte=1000000"`
	ImageRef    string          `json:"image_ref" validate:"max=512"`
}

type CatalogService interface {
	Approve(ctx context.Context, sku string, actor Actor) error
	// ApproveAll activates every Pending product and reports how many moved.
	ApproveAll(ctx context.Context, actor Actor) (int64, error)
	ToggleStatus(ctx context.Context, sku string, actor Actor) (model.ProductStatus, error)
	SetSellerAccountStatus(ctx context.Context, sellerID uuid.UUID, status model.SellerStatus, actor Actor) error
	CreateProduct(ctx context.Context, sellerID uuid.UUID, input ProductInput) (*model.Product, error)
	Restock(ctx context.Context, sku string, qty int, actor Actor) (*model.Product, error)
	ListProducts(ctx context.Context, status model.ProductStatus, sellerID *uuid.UUID) ([]model.Product, error)
	GetProduct(ctx context.Context, sku string) (*model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListCities(ctx context.Context) ([]model.City, error)
	ListBanks(ctx context.Context) ([]model.Bank, error)
	ListSellers(ctx context.Context) ([]model.Seller, error)
	Movements(ctx context.Context, sku string, actor Actor) ([]model.StockMovement, error)
}

type catalogService struct {
	core
}

func NewCatalogService(deps Deps) CatalogService {
	return &catalogService{core: newCore(deps)}
}

// lockProduct loads sku for update and applies seller ownership.
func lockProduct(ctx context.Context, tx repository.Repositories, sku string, actor Actor) (*model.Product, error) {
	product, err := tx.Products().FindBySKUForUpdate(ctx, sku)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("product", sku)
		}
		return nil, err
	}
	if actor.Role == model.RoleSeller && product.SellerID != actor.ID {
		return nil, notFound("product", sku)
	}
	return product, nil
}

func (s *catalogService) Approve(ctx context.Context, sku string, actor Actor) error {
	err := s.transact(ctx, func(ctx context.Context, tx repository.Repositories) error {
		product, err := lockProduct(ctx, tx, sku, actor)
		if err != nil {
			return err
		}
		if product.Status != model.ProductPending {
			return fmt.Errorf("%w: %s is %s", ErrInvalidTransition, sku, product.Status)
		}
		return tx.Products().UpdateStatus(ctx, sku, model.ProductActive)
	})
	if err != nil {
		return err
	}
	s.productStatusChanged(ctx, sku, model.ProductPending, model.ProductActive, actor)
	return nil
}

func (s *catalogService) ApproveAll(ctx context.Context, actor Actor) (int64, error) {
	var skus []string
	err := s.transact(ctx, func(ctx context.Context, tx repository.Repositories) error {
		var err error
		skus, err = tx.Products().ActivatePending(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	for _, sku := range skus {
		s.recordAudit(ctx, audit.Entry{
			Entity:    audit.EntityProduct,
			EntityID:  sku,
			From:      string(model.ProductPending),
			To:        string(model.ProductActive),
			ActorID:   actor.ID.String(),
			ActorRole: string(actor.Role),
		})
	}
	n := int64(len(skus))
	if n > 0 {
		s.Logger.Info("pending products approved", zap.Int64("count", n), zap.String("actor", actor.String()))
		s.publish(ctx, event.New(event.TypeProduct, event.ActionProductStatus,
			fmt.Sprintf("%d products approved", n),
			map[string]interface{}{"count": n, "status": model.ProductActive}))
	}
	return n, nil
}

func (s *catalogService) ToggleStatus(ctx context.Context, sku string, actor Actor) (model.ProductStatus, error) {
	if actor.Role == model.RoleCustomer {
		return "", ErrForbidden
	}
	var from, to model.ProductStatus
	err := s.transact(ctx, func(ctx context.Context, tx repository.Repositories) error {
		product, err := lockProduct(ctx, tx, sku, actor)
		if err != nil {
			return err
		}
		next, ok := product.ToggledStatus()
		if !ok {
			return fmt.Errorf("%w: %s is %s", ErrInvalidTransition, sku, product.Status)
		}
		from, to = product.Status, next
		return tx.Products().UpdateStatus(ctx, sku, next)
	})
	if err != nil {
		return "", err
	}
	s.productStatusChanged(ctx, sku, from, to, actor)
	return to, nil
}

func (s *catalogService) productStatusChanged(ctx context.Context, sku string, from, to model.ProductStatus, actor Actor) {
	s.recordAudit(ctx, audit.Entry{
		Entity:    audit.EntityProduct,
		EntityID:  sku,
		From:      string(from),
		To:        string(to),
		ActorID:   actor.ID.String(),
		ActorRole: string(actor.Role),
	})
	s.publish(ctx, event.New(event.TypeProduct, event.ActionProductStatus,
		fmt.Sprintf("product %s is now %s", sku, to),
		map[string]interface{}{"sku": sku, "from": from, "status": to}))
}

// SetSellerAccountStatus accepts any-to-any moves between Active and
// Deactivated; setting the current status again is not an error.
func (s *catalogService) SetSellerAccountStatus(ctx context.Context, sellerID uuid.UUID, status model.SellerStatus, actor Actor) error {
	if status != model.SellerActive && status != model.SellerDeactivated {
		return fmt.Errorf("%w: seller status must be %s or %s", ErrValidationFailed, model.SellerActive, model.SellerDeactivated)
	}

	var from model.SellerStatus
	err := s.transact(ctx, func(ctx context.Context, tx repository.Repositories) error {
		seller, err := tx.Sellers().FindByID(ctx, sellerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("seller", sellerID)
			}
			return err
		}
		from = seller.AccountStatus
		return tx.Sellers().UpdateAccountStatus(ctx, sellerID, status)
	})
	if err != nil {
		return err
	}

	s.recordAudit(ctx, audit.Entry{
		Entity:    audit.EntitySeller,
		EntityID:  sellerID.String(),
		From:      string(from),
		To:        string(status),
		ActorID:   actor.ID.String(),
		ActorRole: string(actor.Role),
	})
	s.publish(ctx, event.New(event.TypeSeller, event.ActionSellerStatus,
		fmt.Sprintf("seller %s is now %s", sellerID, status),
		map[string]interface{}{"seller_id": sellerID, "from": from, "status": status}))
	return nil
}

// CreateProduct lists a new product in Pending status until an admin
// approves it.
func (s *catalogService) CreateProduct(ctx context.Context, sellerID uuid.UUID, input ProductInput) (*model.Product, error) {
	input.SKU = strings.TrimSpace(input.SKU)
	input.Name = strings.TrimSpace(input.Name)
	if err := validate(&input); err != nil {
		return nil, err
	}
	if input.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidationFailed)
	}

	now := time.Now()
	product := &model.Product{
		BaseModel:   model.BaseModel{CreatedBy: sellerID.String(), UpdatedBy: sellerID.String()},
		SKU:         input.SKU,
		SellerID:    sellerID,
		Name:        input.Name,
		CategoryID:  input.CategoryID,
		Description: input.Description,
		Price:       input.Price.Round(2),
		Stock:       input.Stock,
		Status:      model.ProductPending,
		ImageRef:    input.ImageRef,
		PublishDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
	}

	err := s.transact(ctx, func(ctx context.Context, tx repository.Repositories) error {
		seller, err := tx.Sellers().FindByID(ctx, sellerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("seller", sellerID)
			}
			return err
		}
		if !seller.IsActive() {
			return fmt.Errorf("%w: seller account is %s", ErrForbidden, seller.AccountStatus)
		}
		if _, err := tx.Categories().FindByID(ctx, input.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: unknown category %d", ErrValidationFailed, input.CategoryID)
			}
			return err
		}
		if err := tx.Products().Create(ctx, product); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("%w: sku %s already exists", ErrDuplicateEntity, input.SKU)
			}
			return err
		}
		if product.Stock == 0 {
			return nil
		}
		return tx.Movements().Create(ctx, &model.StockMovement{
			ProductSKU: product.SKU,
			Type:       model.MovementIn,
			Quantity:   product.Stock,
			Note:       "initial stock",
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event.New(event.TypeProduct, event.ActionProductCreated,
		fmt.Sprintf("product %s submitted for approval", product.SKU),
		map[string]interface{}{
			"sku":       product.SKU,
			"name":      product.Name,
			"seller_id": sellerID,
			"price":     product.Price.StringFixed(2),
			"stock":     product.Stock,
			"status":    product.Status,
		}))
	return product, nil
}

func (s *catalogService) Restock(ctx context.Context, sku string, qty int, actor Actor) (*model.Product, error) {
	if actor.Role == model.RoleCustomer {
		return nil, ErrForbidden
	}
	if qty < 1 || qty > model.MaxStock {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}

	var product *model.Product
	err := s.transact(ctx, func(ctx context.Context, tx repository.Repositories) error {
		p, err := lockProduct(ctx, tx, sku, actor)
		if err != nil {
			return err
		}
		if p.Stock > model.MaxStock-qty {
			return fmt.Errorf("%w: stock of %s would exceed %d", ErrInvalidQuantity, sku, model.MaxStock)
		}
		if err := tx.Products().AdjustStock(ctx, sku, qty); err != nil {
			return err
		}
		if err := tx.Movements().Create(ctx, &model.StockMovement{
			BaseModel:  model.BaseModel{CreatedBy: actor.ID.String()},
			ProductSKU: sku,
			Type:       model.MovementIn,
			Quantity:   qty,
			Note:       "restock",
		}); err != nil {
			return err
		}
		p.Stock += qty
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event.New(event.TypeStock, event.ActionStockChanged,
		fmt.Sprintf("%d units of %s restocked", qty, sku),
		map[string]interface{}{"sku": sku, "delta": qty, "stock": product.Stock}))
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, status model.ProductStatus, sellerID *uuid.UUID) ([]model.Product, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, status)
	}
	var products []model.Product
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		products, err = s.Store.Products().FindByStatus(ctx, status, sellerID)
		return err
	})
	return products, err
}

func (s *catalogService) GetProduct(ctx context.Context, sku string) (*model.Product, error) {
	var product *model.Product
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.Store.Products().FindBySKU(ctx, sku)
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("product", sku)
	}
	return product, err
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		categories, err = s.Store.Categories().FindAll(ctx)
		return err
	})
	return categories, err
}

func (s *catalogService) ListCities(ctx context.Context) ([]model.City, error) {
	var cities []model.City
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		cities, err = s.Store.References().Cities(ctx)
		return err
	})
	return cities, err
}

func (s *catalogService) ListBanks(ctx context.Context) ([]model.Bank, error) {
	var banks []model.Bank
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		banks, err = s.Store.References().Banks(ctx)
		return err
	})
	return banks, err
}

func (s *catalogService) ListSellers(ctx context.Context) ([]model.Seller, error) {
	var sellers []model.Seller
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		sellers, err = s.Store.Sellers().FindAll(ctx)
		return err
	})
	return sellers, err
}

func (s *catalogService) Movements(ctx context.Context, sku string, actor Actor) ([]model.StockMovement, error) {
	if actor.Role == model.RoleCustomer {
		return nil, ErrForbidden
	}
	product, err := s.GetProduct(ctx, sku)
	if err != nil {
		return nil, err
	}
	if actor.Role == model.RoleSeller && product.SellerID != actor.ID {
		return nil, notFound("product", sku)
	}

	var movements []model.StockMovement
	err = s.call(ctx, func(ctx context.Context) error {
		var err error
		movements, err = s.Store.Movements().FindBySKU(ctx, sku)
		return err
	})
	return movements, err
}

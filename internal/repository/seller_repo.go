package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tricommerce/internal/model"
)

type sellerRepo struct {
	db *gorm.DB
}

func NewSellerRepo(db *gorm.DB) SellerRepository {
	return &sellerRepo{db}
}

func (r *sellerRepo) Create(ctx context.Context, seller *model.Seller) error {
	return translate(r.db.WithContext(ctx).Create(seller).Error)
}

func (r *sellerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Seller, error) {
	var seller model.Seller
	if err := r.db.WithContext(ctx).First(&seller, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &seller, nil
}

func (r *sellerRepo) FindByEmail(ctx context.Context, email string) (*model.Seller, error) {
	var seller model.Seller
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&seller).Error; err != nil {
		return nil, translate(err)
	}
	return &seller, nil
}

func (r *sellerRepo) ExistsByStoreNameOrEmail(ctx context.Context, storeName, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Seller{}).
		Where("store_name = ? OR email = ?", storeName, email).
		Count(&count).Error
	return count > 0, translate(err)
}

func (r *sellerRepo) FindAll(ctx context.Context) ([]model.Seller, error) {
	var sellers []model.Seller
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&sellers).Error
	return sellers, translate(err)
}

func (r *sellerRepo) UpdateAccountStatus(ctx context.Context, id uuid.UUID, status model.SellerStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Seller{}).Where("id = ?", id).Update("account_status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

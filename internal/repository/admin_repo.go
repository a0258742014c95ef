package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tricommerce/internal/model"
)

type adminRepo struct {
	db *gorm.DB
}

func NewAdminRepo(db *gorm.DB) AdminRepository {
	return &adminRepo{db}
}

func (r *adminRepo) Create(ctx context.Context, admin *model.Admin) error {
	return translate(r.db.WithContext(ctx).Create(admin).Error)
}

func (r *adminRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	var admin model.Admin
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (r *adminRepo) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (r *adminRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	res := r.db.WithContext(ctx).Model(&model.Admin{}).Where("id = ?", id).Update("password", hashedPassword)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

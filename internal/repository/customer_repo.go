package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tricommerce/internal/model"
)

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) Create(ctx context.Context, customer *model.Customer) error {
	return translate(r.db.WithContext(ctx).Create(customer).Error)
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

func (r *customerRepo) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&customer).Error; err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

func (r *customerRepo) Update(ctx context.Context, customer *model.Customer) error {
	return translate(r.db.WithContext(ctx).Save(customer).Error)
}

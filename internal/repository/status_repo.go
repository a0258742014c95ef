package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tricommerce/internal/model"
)

type statusRepo struct {
	db *gorm.DB
}

func NewStatusRepo(db *gorm.DB) StatusRepository {
	return &statusRepo{db}
}

func (r *statusRepo) FindAll(ctx context.Context) ([]model.Status, error) {
	var statuses []model.Status
	err := r.db.WithContext(ctx).Order("id ASC").Find(&statuses).Error
	return statuses, translate(err)
}

func (r *statusRepo) SeedDefaults(ctx context.Context) error {
	statuses := append([]model.Status(nil), model.DefaultStatuses...)
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&statuses).Error)
}

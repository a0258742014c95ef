package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tricommerce/internal/model"
)

type referenceRepo struct {
	db *gorm.DB
}

func NewReferenceRepo(db *gorm.DB) ReferenceRepository {
	return &referenceRepo{db}
}

func (r *referenceRepo) Cities(ctx context.Context) ([]model.City, error) {
	var cities []model.City
	err := r.db.WithContext(ctx).Order("name ASC").Find(&cities).Error
	return cities, translate(err)
}

func (r *referenceRepo) Banks(ctx context.Context) ([]model.Bank, error) {
	var banks []model.Bank
	err := r.db.WithContext(ctx).Order("name ASC").Find(&banks).Error
	return banks, translate(err)
}

func (r *referenceRepo) FindCity(ctx context.Context, name string) (*model.City, error) {
	var city model.City
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&city).Error; err != nil {
		return nil, translate(err)
	}
	return &city, nil
}

func (r *referenceRepo) FindBank(ctx context.Context, name string) (*model.Bank, error) {
	var bank model.Bank
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&bank).Error; err != nil {
		return nil, translate(err)
	}
	return &bank, nil
}

// SeedDefaults inserts the default cities and banks, leaving existing rows alone.
func (r *referenceRepo) SeedDefaults(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	cities := append([]model.City(nil), model.DefaultCities...)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&cities).Error; err != nil {
		return translate(err)
	}
	banks := append([]model.Bank(nil), model.DefaultBanks...)
	return translate(db.Clauses(clause.OnConflict{DoNothing: true}).Create(&banks).Error)
}

package memory

import (
	"context"
	"sort"
	"strings"

	"tricommerce/internal/model"
	"tricommerce/internal/repository"
)

type referenceRepo struct {
	b *binding
}

func (r referenceRepo) Cities(ctx context.Context) ([]model.City, error) {
	var cities []model.City
	err := r.b.with(ctx, func(st *state) error {
		for _, c := range st.cities {
			cities = append(cities, c)
		}
		return nil
	})
	sort.Slice(cities, func(i, j int) bool { return cities[i].Name < cities[j].Name })
	return cities, err
}

func (r referenceRepo) Banks(ctx context.Context) ([]model.Bank, error) {
	var banks []model.Bank
	err := r.b.with(ctx, func(st *state) error {
		for _, b := range st.banks {
			banks = append(banks, b)
		}
		return nil
	})
	sort.Slice(banks, func(i, j int) bool { return banks[i].Name < banks[j].Name })
	return banks, err
}

func (r referenceRepo) FindCity(ctx context.Context, name string) (*model.City, error) {
	var found *model.City
	err := r.b.with(ctx, func(st *state) error {
		c, ok := st.cities[strings.ToLower(name)]
		if !ok {
			return repository.ErrNotFound
		}
		found = &c
		return nil
	})
	return found, err
}

func (r referenceRepo) FindBank(ctx context.Context, name string) (*model.Bank, error) {
	var found *model.Bank
	err := r.b.with(ctx, func(st *state) error {
		b, ok := st.banks[strings.ToLower(name)]
		if !ok {
			return repository.ErrNotFound
		}
		found = &b
		return nil
	})
	return found, err
}

func (r referenceRepo) SeedDefaults(ctx context.Context) error {
	return r.b.with(ctx, func(st *state) error {
		for _, c := range model.DefaultCities {
			if _, ok := st.cities[strings.ToLower(c.Name)]; !ok {
				st.cities[strings.ToLower(c.Name)] = c
			}
		}
		for _, b := range model.DefaultBanks {
			if _, ok := st.banks[strings.ToLower(b.Name)]; !ok {
				st.banks[strings.ToLower(b.Name)] = b
			}
		}
		return nil
	})
}

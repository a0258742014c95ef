package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"tricommerce/internal/model"
	"tricommerce/internal/repository"
)

type sellerRepo struct {
	b *binding
}

func (r sellerRepo) Create(ctx context.Context, seller *model.Seller) error {
	return r.b.with(ctx, func(st *state) error {
		for _, s := range st.sellers {
			if strings.EqualFold(s.Email, seller.Email) || s.StoreName == seller.StoreName {
				return repository.ErrDuplicate
			}
		}
		stamp(&seller.BaseModel)
		st.sellers[seller.ID] = *seller
		return nil
	})
}

func (r sellerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Seller, error) {
	var found *model.Seller
	err := r.b.with(ctx, func(st *state) error {
		s, ok := st.sellers[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = &s
		return nil
	})
	return found, err
}

func (r sellerRepo) FindByEmail(ctx context.Context, email string) (*model.Seller, error) {
	var found *model.Seller
	err := r.b.with(ctx, func(st *state) error {
		for _, s := range st.sellers {
			if strings.EqualFold(s.Email, email) {
				found = &s
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r sellerRepo) ExistsByStoreNameOrEmail(ctx context.Context, storeName, email string) (bool, error) {
	var exists bool
	err := r.b.with(ctx, func(st *state) error {
		for _, s := range st.sellers {
			if s.StoreName == storeName || strings.EqualFold(s.Email, email) {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r sellerRepo) FindAll(ctx context.Context) ([]model.Seller, error) {
	var sellers []model.Seller
	err := r.b.with(ctx, func(st *state) error {
		for _, s := range st.sellers {
			sellers = append(sellers, s)
		}
		return nil
	})
	sort.Slice(sellers, func(i, j int) bool {
		if sellers[i].CreatedAt.Equal(sellers[j].CreatedAt) {
			return sellers[i].StoreName < sellers[j].StoreName
		}
		return sellers[i].CreatedAt.Before(sellers[j].CreatedAt)
	})
	return sellers, err
}

func (r sellerRepo) UpdateAccountStatus(ctx context.Context, id uuid.UUID, status model.SellerStatus) error {
	return r.b.with(ctx, func(st *state) error {
		s, ok := st.sellers[id]
		if !ok {
			return repository.ErrNotFound
		}
		s.AccountStatus = status
		stamp(&s.BaseModel)
		st.sellers[id] = s
		return nil
	})
}

type customerRepo struct {
	b *binding
}

func (r customerRepo) Create(ctx context.Context, customer *model.Customer) error {
	return r.b.with(ctx, func(st *state) error {
		for _, c := range st.customers {
			if strings.EqualFold(c.Email, customer.Email) {
				return repository.ErrDuplicate
			}
		}
		stamp(&customer.BaseModel)
		st.customers[customer.ID] = *customer
		return nil
	})
}

func (r customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var found *model.Customer
	err := r.b.with(ctx, func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = &c
		return nil
	})
	return found, err
}

func (r customerRepo) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var found *model.Customer
	err := r.b.with(ctx, func(st *state) error {
		for _, c := range st.customers {
			if strings.EqualFold(c.Email, email) {
				found = &c
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r customerRepo) Update(ctx context.Context, customer *model.Customer) error {
	return r.b.with(ctx, func(st *state) error {
		for id, c := range st.customers {
			if id != customer.ID && strings.EqualFold(c.Email, customer.Email) {
				return repository.ErrDuplicate
			}
		}
		stamp(&customer.BaseModel)
		st.customers[customer.ID] = *customer
		return nil
	})
}

type adminRepo struct {
	b *binding
}

func (r adminRepo) Create(ctx context.Context, admin *model.Admin) error {
	return r.b.with(ctx, func(st *state) error {
		for _, a := range st.admins {
			if strings.EqualFold(a.Email, admin.Email) {
				return repository.ErrDuplicate
			}
		}
		stamp(&admin.BaseModel)
		st.admins[admin.ID] = *admin
		return nil
	})
}

func (r adminRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	var found *model.Admin
	err := r.b.with(ctx, func(st *state) error {
		a, ok := st.admins[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = &a
		return nil
	})
	return found, err
}

func (r adminRepo) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var found *model.Admin
	err := r.b.with(ctx, func(st *state) error {
		for _, a := range st.admins {
			if strings.EqualFold(a.Email, email) {
				found = &a
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r adminRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	return r.b.with(ctx, func(st *state) error {
		a, ok := st.admins[id]
		if !ok {
			return repository.ErrNotFound
		}
		a.Password = hashedPassword
		stamp(&a.BaseModel)
		st.admins[id] = a
		return nil
	})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tricommerce/internal/model"
	"tricommerce/internal/repository"
	"tricommerce/pkg/jwt"
	"tricommerce/pkg/validator"
)

type CustomerRegistration struct {
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ContactNumber   string `json:"contact_number" validate:"required,contact"`
	City            string `json:"city" validate:"max=100"`
	DeliveryAddress string `json:"delivery_address"`
}

type SellerRegistration struct {
	StoreName       string `json:"store_name" validate:"required,min=3,max=20"`
	OwnerName       string `json:"owner_name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	CNIC            string `json:"cnic" validate:"required,cnic"`
	BankName        string `json:"bank_name" validate:"max=100"`
	BankAccount     string `json:"bank_account" validate:"max=50"`
	City            string `json:"city" validate:"max=100"`
	BusinessAddress string `json:"business_address"`
	ContactNumber   string `json:"contact_number" validate:"required,contact"`
}

type ProfileUpdate struct {
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	ContactNumber   string `json:"contact_number" validate:"required,contact"`
	City            string `json:"city" validate:"max=100"`
	DeliveryAddress string `json:"delivery_address"`
}

type LoginResponse struct {
	Token      string        `json:"token"`
	Role       model.Role    `json:"role"`
	Account    model.Account `json:"account"`
	Privileges []string      `json:"privileges"` // Flat privileges array for easy checking
}

type AuthService interface {
	RegisterCustomer(ctx context.Context, req CustomerRegistration) (*model.Customer, error)
	// RegisterSeller creates the account in PendingApproval; it cannot log in
	// until an admin activates it.
	RegisterSeller(ctx context.Context, req SellerRegistration) (*model.Seller, error)
	Login(ctx context.Context, role model.Role, email, password string) (*LoginResponse, error)
	UpdateCustomerProfile(ctx context.Context, customerID uuid.UUID, req ProfileUpdate) (*model.Customer, error)
	// SeedAdmin creates the admin account unless the email is already taken.
	SeedAdmin(ctx context.Context, email, password, fullName string) error
	ResetAdminPassword(ctx context.Context, email, newPassword string) error
}

type authService struct {
	core
	tokens *jwt.Manager
}

func NewAuthService(deps Deps, tokens *jwt.Manager) AuthService {
	return &authService{core: newCore(deps), tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, errs[0].Error())
	}
	return nil
}

// lookupCity returns the canonical spelling of a seeded city. An empty name
// is allowed.
func lookupCity(ctx context.Context, repos repository.Repositories, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	city, err := repos.References().FindCity(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("%w: unknown city %q", ErrValidationFailed, name)
	}
	if err != nil {
		return "", err
	}
	return city.Name, nil
}

func lookupBank(ctx context.Context, repos repository.Repositories, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	bank, err := repos.References().FindBank(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("%w: unknown bank %q", ErrValidationFailed, name)
	}
	if err != nil {
		return "", err
	}
	return bank.Name, nil
}

func (s *authService) RegisterCustomer(ctx context.Context, req CustomerRegistration) (*model.Customer, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate(&req); err != nil {
		return nil, err
	}

	customer := &model.Customer{
		Credentials:     model.Credentials{Email: req.Email},
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		ContactNumber:   req.ContactNumber,
		City:            req.City,
		DeliveryAddress: req.DeliveryAddress,
	}
	if err := customer.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	err := s.call(ctx, func(ctx context.Context) error {
		city, err := lookupCity(ctx, s.Store, req.City)
		if err != nil {
			return err
		}
		customer.City = city
		return s.Store.Customers().Create(ctx, customer)
	})
	if errors.Is(err, ErrDuplicateEntity) {
		return nil, fmt.Errorf("%w: email %s is already registered", ErrDuplicateEntity, req.Email)
	}
	if err != nil {
		return nil, err
	}
	s.Logger.Info("customer registered", zap.String("customer_id", customer.ID.String()))
	return customer, nil
}

func (s *authService) RegisterSeller(ctx context.Context, req SellerRegistration) (*model.Seller, error) {
	req.Email = normalizeEmail(req.Email)
	req.StoreName = strings.TrimSpace(req.StoreName)
	if err := validate(&req); err != nil {
		return nil, err
	}

	seller := &model.Seller{
		Credentials:     model.Credentials{Email: req.Email},
		StoreName:       req.StoreName,
		OwnerName:       req.OwnerName,
		CNIC:            req.CNIC,
		BankName:        req.BankName,
		BankAccount:     req.BankAccount,
		City:            req.City,
		BusinessAddress: req.BusinessAddress,
		ContactNumber:   req.ContactNumber,
		AccountStatus:   model.SellerPendingApproval,
	}
	if err := seller.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	err := s.transact(ctx, func(ctx context.Context, tx repository.Repositories) error {
		exists, err := tx.Sellers().ExistsByStoreNameOrEmail(ctx, req.StoreName, req.Email)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: store name or email already registered", ErrDuplicateEntity)
		}
		if seller.City, err = lookupCity(ctx, tx, req.City); err != nil {
			return err
		}
		if seller.BankName, err = lookupBank(ctx, tx, req.BankName); err != nil {
			return err
		}
		return tx.Sellers().Create(ctx, seller)
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("seller registered", zap.String("seller_id", seller.ID.String()), zap.String("store", seller.StoreName))
	return seller, nil
}

func (s *authService) Login(ctx context.Context, role model.Role, email, password string) (*LoginResponse, error) {
	email = normalizeEmail(email)

	var account model.Account
	var creds *model.Credentials
	err := s.call(ctx, func(ctx context.Context) error {
		switch role {
		case model.RoleAdmin:
			a, err := s.Store.Admins().FindByEmail(ctx, email)
			if err != nil {
				return err
			}
			account, creds = a, &a.Credentials
		case model.RoleSeller:
			sl, err := s.Store.Sellers().FindByEmail(ctx, email)
			if err != nil {
				return err
			}
			account, creds = sl, &sl.Credentials
		case model.RoleCustomer:
			c, err := s.Store.Customers().FindByEmail(ctx, email)
			if err != nil {
				return err
			}
			account, creds = c, &c.Credentials
		default:
			return fmt.Errorf("%w: unknown role %q", ErrValidationFailed, role)
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !creds.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if seller, ok := account.(*model.Seller); ok && !seller.IsActive() {
		return nil, fmt.Errorf("%w: seller account is %s", ErrAccountInactive, seller.AccountStatus)
	}

	privileges := role.Privileges()
	token, err := s.tokens.GenerateToken(account.AccountID(), account.AccountEmail(), account.DisplayName(), string(role), privileges)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token:      token,
		Role:       role,
		Account:    account,
		Privileges: privileges,
	}, nil
}

func (s *authService) UpdateCustomerProfile(ctx context.Context, customerID uuid.UUID, req ProfileUpdate) (*model.Customer, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	var customer *model.Customer
	err := s.transact(ctx, func(ctx context.Context, tx repository.Repositories) error {
		c, err := tx.Customers().FindByID(ctx, customerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("customer", customerID)
			}
			return err
		}
		c.FirstName = strings.TrimSpace(req.FirstName)
		c.LastName = strings.TrimSpace(req.LastName)
		c.ContactNumber = req.ContactNumber
		if c.City, err = lookupCity(ctx, tx, req.City); err != nil {
			return err
		}
		c.DeliveryAddress = req.DeliveryAddress
		c.UpdatedBy = customerID.String()
		if err := tx.Customers().Update(ctx, c); err != nil {
			return err
		}
		customer = c
		return nil
	})
	return customer, err
}

func (s *authService) SeedAdmin(ctx context.Context, email, password, fullName string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return fmt.Errorf("%w: admin email and password are required", ErrValidationFailed)
	}

	err := s.call(ctx, func(ctx context.Context) error {
		_, err := s.Store.Admins().FindByEmail(ctx, email)
		return err
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	// bcrypt runs outside the transaction so it does not eat its timeout.
	admin := &model.Admin{Credentials: model.Credentials{Email: email}, FullName: fullName}
	if err := admin.SetPassword(password); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	err = s.transact(ctx, func(ctx context.Context, tx repository.Repositories) error {
		return tx.Admins().Create(ctx, admin)
	})
	if errors.Is(err, ErrDuplicateEntity) {
		return nil
	}
	if err != nil {
		return err
	}
	s.Logger.Info("seeded admin account", zap.String("email", email))
	return nil
}

func (s *authService) ResetAdminPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidationFailed)
	}
	email = normalizeEmail(email)

	var hashed model.Credentials
	if err := hashed.SetPassword(newPassword); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.transact(ctx, func(ctx context.Context, tx repository.Repositories) error {
		admin, err := tx.Admins().FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("admin", email)
			}
			return err
		}
		return tx.Admins().UpdatePassword(ctx, admin.ID, hashed.Password)
	})
}

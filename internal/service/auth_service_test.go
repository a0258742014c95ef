package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tricommerce/internal/model"
	"tricommerce/pkg/jwt"
)

func newAuth(f *fixture) (AuthService, *jwt.Manager) {
	tokens := jwt.NewManager("test-secret", time.Hour)
	return NewAuthService(f.deps, tokens), tokens
}

func validSeller() SellerRegistration {
	return SellerRegistration{
		StoreName:     "Acme",
		OwnerName:     "Wile E.",
		Email:         "Shop@Acme.test",
		Password:      "secret1",
		CNIC:          "3520212345671",
		ContactNumber: "03001234567",
	}
}

func TestRegisterCustomerAndLogin(t *testing.T) {
	f := newFixture(t)
	auth, tokens := newAuth(f)

	customer, err := auth.RegisterCustomer(f.ctx, CustomerRegistration{
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         " Ada@Example.com ",
		Password:      "secret1",
		ContactNumber: "03001234567",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", customer.Email)
	assert.NotEqual(t, "secret1", customer.Password)

	resp, err := auth.Login(f.ctx, model.RoleCustomer, "ada@example.com", "secret1")
	require.NoError(t, err)
	claims, err := tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, claims.SubjectID)
	assert.Equal(t, "customer", claims.Role)
	assert.True(t, claims.HasPrivilege(model.PrivOrderPlace))

	_, err = auth.Login(f.ctx, model.RoleCustomer, "ada@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(f.ctx, model.RoleSeller, "ada@example.com", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.RegisterCustomer(f.ctx, CustomerRegistration{
		FirstName: "Ada", LastName: "Again", Email: "ada@example.com", Password: "secret1", ContactNumber: "03001234567",
	})
	require.ErrorIs(t, err, ErrDuplicateEntity)
}

func TestRegisterCustomer_Validation(t *testing.T) {
	f := newFixture(t)
	auth, _ := newAuth(f)

	_, err := auth.RegisterCustomer(f.ctx, CustomerRegistration{
		FirstName: "Ada", LastName: "L", Email: "ada@example.com", Password: "123", ContactNumber: "03001234567",
	})
	require.ErrorIs(t, err, ErrValidationFailed)

	_, err = auth.RegisterCustomer(f.ctx, CustomerRegistration{
		FirstName: "Ada", LastName: "L", Email: "ada@example.com", Password: "secret1", ContactNumber: "12345",
	})
	require.ErrorIs(t, err, ErrValidationFailed)
}

func TestRegisterSeller_PendingUntilActivated(t *testing.T) {
	f := newFixture(t)
	auth, _ := newAuth(f)
	catalog := NewCatalogService(f.deps)

	seller, err := auth.RegisterSeller(f.ctx, validSeller())
	require.NoError(t, err)
	assert.Equal(t, model.SellerPendingApproval, seller.AccountStatus)

	_, err = auth.Login(f.ctx, model.RoleSeller, "shop@acme.test", "secret1")
	require.ErrorIs(t, err, ErrAccountInactive)

	require.NoError(t, catalog.SetSellerAccountStatus(f.ctx, seller.ID, model.SellerActive, admin()))
	resp, err := auth.Login(f.ctx, model.RoleSeller, "shop@acme.test", "secret1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleSeller, resp.Role)
	assert.Contains(t, resp.Privileges, model.PrivProductCreate)
}

func TestRegisterSeller_Rejections(t *testing.T) {
	f := newFixture(t)
	auth, _ := newAuth(f)
	_, err := auth.RegisterSeller(f.ctx, validSeller())
	require.NoError(t, err)

	sameStore := validSeller()
	sameStore.Email = "other@acme.test"
	_, err = auth.RegisterSeller(f.ctx, sameStore)
	require.ErrorIs(t, err, ErrDuplicateEntity)

	tests := map[string]func(r *SellerRegistration){
		"short store name": func(r *SellerRegistration) { r.StoreName = "Ab" },
		"bad cnic":         func(r *SellerRegistration) { r.CNIC = "35202-1234567-1" },
		"bad contact":      func(r *SellerRegistration) { r.ContactNumber = "0300" },
		"bad email":        func(r *SellerRegistration) { r.Email = "not-an-email" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			r := validSeller()
			r.StoreName = "Fresh"
			r.Email = "fresh@acme.test"
			mutate(&r)
			_, err := auth.RegisterSeller(f.ctx, r)
			require.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestSeedAdminAndResetPassword(t *testing.T) {
	f := newFixture(t)
	auth, _ := newAuth(f)

	require.NoError(t, auth.SeedAdmin(f.ctx, "root@tricommerce.test", "changeme", "Root"))
	require.NoError(t, auth.SeedAdmin(f.ctx, "root@tricommerce.test", "ignored", "Root"))

	_, err := auth.Login(f.ctx, model.RoleAdmin, "root@tricommerce.test", "changeme")
	require.NoError(t, err)

	require.NoError(t, auth.ResetAdminPassword(f.ctx, "root@tricommerce.test", "n3wpass"))
	_, err = auth.Login(f.ctx, model.RoleAdmin, "root@tricommerce.test", "changeme")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(f.ctx, model.RoleAdmin, "root@tricommerce.test", "n3wpass")
	require.NoError(t, err)

	require.ErrorIs(t, auth.ResetAdminPassword(f.ctx, "nobody@x.test", "n3wpass"), ErrNotFound)
}

func TestSeedAdmin_HashesOutsideTransaction(t *testing.T) {
	f := newFixture(t)
	f.deps.TxTimeout = 25 * time.Millisecond
	auth, _ := newAuth(f)

	require.NoError(t, auth.SeedAdmin(f.ctx, "root@tricommerce.test", "changeme", "Root"))
	require.NoError(t, auth.ResetAdminPassword(f.ctx, "root@tricommerce.test", "n3wpass"))

	admin, err := f.store.Admins().FindByEmail(f.ctx, "root@tricommerce.test")
	require.NoError(t, err)
	assert.True(t, admin.CheckPassword("n3wpass"))
}

func TestRegistration_CityAndBankLookup(t *testing.T) {
	f := newFixture(t)
	auth, _ := newAuth(f)

	req := validSeller()
	req.City = " lahore "
	req.BankName = "meezan bank"
	seller, err := auth.RegisterSeller(f.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Lahore", seller.City)
	assert.Equal(t, "Meezan Bank", seller.BankName)

	req = validSeller()
	req.StoreName, req.Email = "Other", "other@acme.test"
	req.City = "Atlantis"
	_, err = auth.RegisterSeller(f.ctx, req)
	require.ErrorIs(t, err, ErrValidationFailed)

	req.City = "Karachi"
	req.BankName = "Bank of Nowhere"
	_, err = auth.RegisterSeller(f.ctx, req)
	require.ErrorIs(t, err, ErrValidationFailed)

	_, err = auth.RegisterCustomer(f.ctx, CustomerRegistration{
		FirstName: "Ada", LastName: "L", Email: "ada@example.com", Password: "secret1",
		ContactNumber: "03001234567", City: "Gotham",
	})
	require.ErrorIs(t, err, ErrValidationFailed)

	customer, err := auth.RegisterCustomer(f.ctx, CustomerRegistration{
		FirstName: "Ada", LastName: "L", Email: "ada@example.com", Password: "secret1",
		ContactNumber: "03001234567", City: "KARACHI",
	})
	require.NoError(t, err)
	assert.Equal(t, "Karachi", customer.City)

	_, err = auth.UpdateCustomerProfile(f.ctx, customer.ID, ProfileUpdate{
		FirstName: "Ada", LastName: "L", ContactNumber: "03001234567", City: "Gotham",
	})
	require.ErrorIs(t, err, ErrValidationFailed)
	stored, err := f.store.Customers().FindByID(f.ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Karachi", stored.City)
}

func TestUpdateCustomerProfile(t *testing.T) {
	f := newFixture(t)
	auth, _ := newAuth(f)
	customer := f.customer("old")

	updated, err := auth.UpdateCustomerProfile(f.ctx, customer.ID, ProfileUpdate{
		FirstName: "New", LastName: "Name", ContactNumber: "03001234567", City: "Lahore", DeliveryAddress: "new",
	})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.DeliveryAddress)

	stored, err := f.store.Customers().FindByID(f.ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lahore", stored.City)

	_, err = auth.UpdateCustomerProfile(f.ctx, customer.ID, ProfileUpdate{FirstName: "New", LastName: "Name", ContactNumber: "1"})
	require.ErrorIs(t, err, ErrValidationFailed)
}

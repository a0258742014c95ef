package model

import "github.com/google/uuid"

type SellerStatus string

const (
	SellerPendingApproval SellerStatus = "PendingApproval"
	SellerActive          SellerStatus = "Active"
	SellerDeactivated     SellerStatus = "Deactivated"
)

type Seller struct {
	BaseModel
	Credentials
	StoreName       string       `gorm:"type:varchar(20);uniqueIndex;not null" json:"store_name"`
	OwnerName       string       `gorm:"type:varchar(255)" json:"owner_name"`
	CNIC            string       `gorm:"type:varchar(13)" json:"cnic"`
	BankName        string       `gorm:"type:varchar(100)" json:"bank_name"`
	BankAccount     string       `gorm:"type:varchar(50)" json:"-"`
	City            string       `gorm:"type:varchar(100)" json:"city"`
	BusinessAddress string       `gorm:"type:text" json:"business_address"`
	ContactNumber   string       `gorm:"type:varchar(11)" json:"contact_number"`
	AccountStatus   SellerStatus `gorm:"type:varchar(20);not null;index" json:"account_status"`
}

func (s *Seller) AccountID() uuid.UUID { return s.ID }
func (s *Seller) AccountEmail() string { return s.Email }
func (s *Seller) DisplayName() string  { return s.StoreName }
func (s *Seller) AccountRole() Role    { return RoleSeller }

// IsActive reports whether an admin has activated the account.
func (s *Seller) IsActive() bool {
	return s.AccountStatus == SellerActive
}

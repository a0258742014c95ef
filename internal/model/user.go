package model

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Credentials is embedded by every account type. Password holds a bcrypt hash.
type Credentials struct {
	Email    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password string `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
}

// SetPassword hashes and sets the account password
func (c *Credentials) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (c *Credentials) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(c.Password), []byte(password))
	return err == nil
}

// Account is the part of any account type needed to issue a token.
type Account interface {
	AccountID() uuid.UUID
	AccountEmail() string
	DisplayName() string
	AccountRole() Role
}

// Admin operates the marketplace: approvals, seller accounts and orders.
type Admin struct {
	BaseModel
	Credentials
	FullName string `gorm:"type:varchar(255)" json:"full_name"`
}

func (a *Admin) AccountID() uuid.UUID { return a.ID }
func (a *Admin) AccountEmail() string { return a.Email }
func (a *Admin) DisplayName() string  { return a.FullName }
func (a *Admin) AccountRole() Role    { return RoleAdmin }

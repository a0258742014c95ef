package model

import "github.com/google/uuid"

type Customer struct {
	BaseModel
	Credentials
	FirstName       string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName        string `gorm:"type:varchar(100);not null" json:"last_name"`
	ContactNumber   string `gorm:"type:varchar(11)" json:"contact_number"`
	City            string `gorm:"type:varchar(100)" json:"city"`
	DeliveryAddress string `gorm:"type:text" json:"delivery_address"`
}

func (c *Customer) AccountID() uuid.UUID { return c.ID }
func (c *Customer) AccountEmail() string { return c.Email }
func (c *Customer) DisplayName() string  { return c.FullName() }
func (c *Customer) AccountRole() Role    { return RoleCustomer }

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleCustomer = "customer"
)

// DefaultPhone is stored for table accounts created without a contact number.
const DefaultPhone = "0000000000"

// Account is any principal of the restaurant: a table (customer), an employee or an admin.
// IsAdmin and IsEmployee are never both true.
type Account struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Phone        string    `gorm:"type:varchar(30);not null;default:''" json:"phone"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255)" json:"-"`
	Slug         string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"slug"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	IsEmployee   bool      `gorm:"not null;default:false" json:"is_employee"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Account) TableName() string {
	return "users"
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// IsStaff reports whether the account is an employee or an admin.
func (a Account) IsStaff() bool {
	return a.IsAdmin || a.IsEmployee
}

func (a Account) Role() string {
	switch {
	case a.IsAdmin:
		return RoleAdmin
	case a.IsEmployee:
		return RoleEmployee
	default:
		return RoleCustomer
	}
}

// SetAdmin toggles the admin flag. Granting or revoking it always clears the employee flag.
func (a *Account) SetAdmin(admin bool) {
	a.IsAdmin = admin
	a.IsEmployee = false
}

// SetEmployee toggles the employee flag. Granting or revoking it always clears the admin flag.
func (a *Account) SetEmployee(employee bool) {
	a.IsEmployee = employee
	a.IsAdmin = false
}

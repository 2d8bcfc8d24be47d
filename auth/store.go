package auth

import (
	"context"

	"github.com/allblack/restaurant-app/models"
)

// AccountStore is the subset of the users table the auth core needs. Each lookup is
// a fixed query that returns exactly one account or gorm.ErrRecordNotFound.
type AccountStore interface {
	// FindEmployeeByUsername matches is_employee = true AND is_admin = false.
	FindEmployeeByUsername(ctx context.Context, username string) (models.Account, error)
	// FindAdminByUsername matches is_admin = true.
	FindAdminByUsername(ctx context.Context, username string) (models.Account, error)
	// FindCustomerByUsername matches is_admin = false AND is_employee = false.
	FindCustomerByUsername(ctx context.Context, username string) (models.Account, error)
	// FindCustomerBySlug matches the slug and the customer predicate.
	FindCustomerBySlug(ctx context.Context, slug string) (models.Account, error)

	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateAccount(ctx context.Context, account *models.Account) error
	UpdatePasswordHash(ctx context.Context, accountID, hash string) error
}

// SessionStore records occupancy in active_sessions.
type SessionStore interface {
	UpsertSession(ctx context.Context, session models.ActiveSession) error
}

package auth

import (
	"context"
	"errors"

	"github.com/allblack/restaurant-app/models"
	"github.com/allblack/restaurant-app/utils"
)

// Intent is the role a login is aimed at.
type Intent int

const (
	IntentCustomer Intent = iota
	IntentEmployee
	IntentAdmin
)

func (i Intent) String() string {
	switch i {
	case IntentEmployee:
		return models.RoleEmployee
	case IntentAdmin:
		return models.RoleAdmin
	default:
		return models.RoleCustomer
	}
}

// IntentFor picks the role predicate from the caller's hints: the employee flag wins,
// a password without it means admin, and nothing at all means a table.
func IntentFor(password string, employee bool) Intent {
	switch {
	case employee:
		return IntentEmployee
	case password != "":
		return IntentAdmin
	default:
		return IntentCustomer
	}
}

// Resolver maps a username or slug (plus an optional password) onto one account.
type Resolver struct {
	accounts AccountStore
}

func NewResolver(accounts AccountStore) *Resolver {
	return &Resolver{accounts: accounts}
}

// Resolve looks the username up under the predicate selected by IntentFor. Customer
// lookups never check a password.
func (r *Resolver) Resolve(ctx context.Context, username, password string, employee bool) (models.Account, error) {
	const op = "resolve"
	if username == "" {
		return models.Account{}, newError(KindInvalid, op, errors.New("empty username"))
	}

	switch IntentFor(password, employee) {
	case IntentEmployee:
		account, err := r.accounts.FindEmployeeByUsername(ctx, username)
		if err != nil {
			return models.Account{}, storeError(op, err)
		}
		return r.checkPassword(ctx, op, account, password)
	case IntentAdmin:
		return r.ResolveAdmin(ctx, username, password)
	default:
		account, err := r.accounts.FindCustomerByUsername(ctx, username)
		if err != nil {
			return models.Account{}, storeError(op, err)
		}
		return account, nil
	}
}

// ResolveAdmin authenticates an admin by username and password.
func (r *Resolver) ResolveAdmin(ctx context.Context, username, password string) (models.Account, error) {
	const op = "resolve admin"
	if username == "" {
		return models.Account{}, newError(KindInvalid, op, errors.New("empty username"))
	}
	account, err := r.accounts.FindAdminByUsername(ctx, username)
	if err != nil {
		return models.Account{}, storeError(op, err)
	}
	return r.checkPassword(ctx, op, account, password)
}

// ResolveSlug is the QR path: a customer account with that slug, no password.
func (r *Resolver) ResolveSlug(ctx context.Context, slug string) (models.Account, error) {
	const op = "resolve slug"
	if slug == "" {
		return models.Account{}, newError(KindInvalid, op, errors.New("empty slug"))
	}
	account, err := r.accounts.FindCustomerBySlug(ctx, slug)
	if err != nil {
		return models.Account{}, storeError(op, err)
	}
	return account, nil
}

func (r *Resolver) checkPassword(ctx context.Context, op string, account models.Account, password string) (models.Account, error) {
	if !VerifyPassword(password, account.PasswordHash) {
		return models.Account{}, newError(KindForbidden, op, errors.New("password mismatch"))
	}
	r.upgradePassword(ctx, &account, password)
	return account, nil
}

// upgradePassword rewrites a legacy plaintext credential as a bcrypt hash after it
// has been verified. Failures leave the legacy value in place.
func (r *Resolver) upgradePassword(ctx context.Context, account *models.Account, plain string) {
	if !NeedsUpgrade(plain, account.PasswordHash) {
		return
	}

	hash, err := HashPassword(plain)
	if err != nil {
		utils.ErrorLogger.WithError(err).WithField("user_id", account.ID).Error("hashing legacy password")
		return
	}
	if err := r.accounts.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		utils.ErrorLogger.WithError(err).WithField("user_id", account.ID).Error("upgrading legacy password")
		return
	}

	account.PasswordHash = hash
	utils.InfoLogger.WithField("user_id", account.ID).Info("legacy password upgraded to bcrypt")
}

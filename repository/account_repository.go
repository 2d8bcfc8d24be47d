package repository

import (
	"context"

	"github.com/allblack/restaurant-app/models"
	"gorm.io/gorm"
)

type AccountRepository struct {
	DB *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

func (r *AccountRepository) FindEmployeeByUsername(ctx context.Context, username string) (models.Account, error) {
	return r.findOne(r.DB.WithContext(ctx).
		Where("username = ?", username).
		Where("is_employee = ?", true).
		Where("is_admin = ?", false))
}

func (r *AccountRepository) FindAdminByUsername(ctx context.Context, username string) (models.Account, error) {
	return r.findOne(r.DB.WithContext(ctx).
		Where("username = ?", username).
		Where("is_admin = ?", true))
}

func (r *AccountRepository) FindCustomerByUsername(ctx context.Context, username string) (models.Account, error) {
	return r.findOne(r.DB.WithContext(ctx).
		Where("username = ?", username).
		Where("is_admin = ?", false).
		Where("is_employee = ?", false))
}

func (r *AccountRepository) FindCustomerBySlug(ctx context.Context, slug string) (models.Account, error) {
	return r.findOne(r.DB.WithContext(ctx).
		Where("slug = ?", slug).
		Where("is_admin = ?", false).
		Where("is_employee = ?", false))
}

// findOne returns gorm.ErrRecordNotFound unless exactly one row matches.
func (r *AccountRepository) findOne(query *gorm.DB) (models.Account, error) {
	var accounts []models.Account
	if err := query.Limit(2).Find(&accounts).Error; err != nil {
		return models.Account{}, err
	}
	if len(accounts) != 1 {
		return models.Account{}, gorm.ErrRecordNotFound
	}
	return accounts[0], nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (models.Account, error) {
	var account models.Account
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&account).Error
	return account, err
}

func (r *AccountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Account{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *AccountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	return r.DB.WithContext(ctx).Create(account).Error
}

func (r *AccountRepository) UpdatePasswordHash(ctx context.Context, accountID, hash string) error {
	result := r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListCustomers returns every table account ordered by username.
func (r *AccountRepository) ListCustomers(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	err := r.DB.WithContext(ctx).
		Where("is_admin = ?", false).
		Where("is_employee = ?", false).
		Order("username ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *AccountRepository) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	err := r.DB.WithContext(ctx).Order("username ASC").Find(&accounts).Error
	return accounts, err
}

// UpdateRole writes both role flags at once so they can never both be true.
func (r *AccountRepository) UpdateRole(ctx context.Context, account *models.Account) error {
	return r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", account.ID).
		Updates(map[string]interface{}{
			"is_admin":    account.IsAdmin,
			"is_employee": account.IsEmployee,
		}).Error
}

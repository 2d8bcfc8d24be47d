package repository

import (
	"context"

	"github.com/allblack/restaurant-app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// UpsertSession inserts the row or overwrites it on user_id conflict.
func (r *SessionRepository) UpsertSession(ctx context.Context, session models.ActiveSession) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "login_at", "last_activity"}),
	}).Create(&session).Error
}

func (r *SessionRepository) ListSessions(ctx context.Context) ([]models.ActiveSession, error) {
	var sessions []models.ActiveSession
	err := r.DB.WithContext(ctx).Order("username ASC").Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) FindSession(ctx context.Context, userID string) (models.ActiveSession, error) {
	var session models.ActiveSession
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&session).Error
	return session, err
}

// DeleteSession frees a table. It reports gorm.ErrRecordNotFound when the account
// had no active session.
func (r *SessionRepository) DeleteSession(ctx context.Context, userID string) error {
	result := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.ActiveSession{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

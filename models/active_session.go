package models

import "time"

// ActiveSession marks a table (or staff member) as in use. One row per account;
// it survives customer logout and is removed only when staff frees the table.
type ActiveSession struct {
	UserID       string    `gorm:"column:user_id;primaryKey;type:varchar(36)" json:"user_id"`
	Username     string    `gorm:"type:varchar(100);not null" json:"username"`
	LoginAt      time.Time `gorm:"not null" json:"login_at"`
	LastActivity time.Time `gorm:"not null" json:"last_activity"`
}

func (ActiveSession) TableName() string {
	return "active_sessions"
}

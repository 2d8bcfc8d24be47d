package auth

import (
	"context"
	"time"

	"github.com/allblack/restaurant-app/models"
	"github.com/allblack/restaurant-app/utils"
)

// Registrar marks accounts as in use. Registration is best effort: a failed write is
// logged and never fails the login that triggered it.
type Registrar struct {
	sessions SessionStore
	now      func() time.Time

	// OnRegistered, when set, is told about every session that was written.
	OnRegistered func(models.ActiveSession)
}

func NewRegistrar(sessions SessionStore) *Registrar {
	return &Registrar{sessions: sessions, now: time.Now}
}

func (r *Registrar) Register(ctx context.Context, account models.Account, viaQR bool) {
	now := r.now()
	session := models.ActiveSession{
		UserID:       account.ID,
		Username:     account.Username,
		LoginAt:      now,
		LastActivity: now,
	}

	log := utils.InfoLogger.WithField("username", account.Username).WithField("qr", viaQR)
	if err := r.sessions.UpsertSession(ctx, session); err != nil {
		utils.ErrorLogger.WithError(err).WithField("username", account.Username).Error("registering session")
		return
	}
	log.Info("session registered")

	if r.OnRegistered != nil {
		r.OnRegistered(session)
	}
}

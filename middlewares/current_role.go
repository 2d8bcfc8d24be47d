package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/allblack/restaurant-app/models"
	"github.com/allblack/restaurant-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AccountLookup loads the account a token was issued for.
type AccountLookup interface {
	FindByID(ctx context.Context, id string) (models.Account, error)
}

// CurrentRole replaces the role carried by the token with the account's stored
// role, so promotions and demotions apply to tokens already issued. It must run
// after AuthMiddleware and before RequireRole.
func CurrentRole(accounts AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := accounts.FindByID(c.Request.Context(), c.GetString(ContextUserID))
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.RespondError(c, http.StatusUnauthorized, errors.New("account no longer exists"))
			c.Abort()
			return
		case err != nil:
			utils.ErrorLogger.WithError(err).Error("reloading account role")
			utils.RespondError(c, http.StatusServiceUnavailable, errors.New("could not verify role"))
			c.Abort()
			return
		}

		c.Set(ContextRole, account.Role())
		c.Next()
	}
}

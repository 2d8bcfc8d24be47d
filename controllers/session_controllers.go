package controllers

import (
	"errors"
	"net/http"

	"github.com/allblack/restaurant-app/hub"
	"github.com/allblack/restaurant-app/middlewares"
	"github.com/allblack/restaurant-app/repository"
	"github.com/allblack/restaurant-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type SessionController struct {
	Sessions *repository.SessionRepository
	Hub      *hub.Hub
}

func NewSessionController(sessions *repository.SessionRepository, h *hub.Hub) *SessionController {
	return &SessionController{Sessions: sessions, Hub: h}
}

// GetActiveSessions lists every occupied table and logged-in staff member.
func (sc *SessionController) GetActiveSessions(c *gin.Context) {
	sessions, err := sc.Sessions.ListSessions(c.Request.Context())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active sessions", sessions)
}

// FreeSession is the staff action that releases a table.
func (sc *SessionController) FreeSession(c *gin.Context) {
	userID := c.Param("user_id")
	if err := sc.Sessions.DeleteSession(c.Request.Context(), userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("no active session for this user"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.WithField("user_id", userID).WithField("by", c.GetString(middlewares.ContextUsername)).Info("table freed")
	if sc.Hub != nil {
		sc.Hub.SessionFreed(userID)
	}
	utils.RespondJSON(c, http.StatusOK, "Session cleared", gin.H{"user_id": userID})
}

// Stream upgrades to a websocket that receives occupancy events.
func (sc *SessionController) Stream(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	sc.Hub.Register(ws, c.GetString(middlewares.ContextRole))

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	sc.Hub.Unregister(ws)
}

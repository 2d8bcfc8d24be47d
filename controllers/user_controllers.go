package controllers

import (
	"errors"
	"net/http"

	"github.com/allblack/restaurant-app/auth"
	"github.com/allblack/restaurant-app/hub"
	"github.com/allblack/restaurant-app/middlewares"
	"github.com/allblack/restaurant-app/models"
	"github.com/allblack/restaurant-app/repository"
	"github.com/allblack/restaurant-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserController struct {
	Accounts      *repository.AccountRepository
	Sessions      *repository.SessionRepository
	Hub           *hub.Hub
	PublicBaseURL string
}

func NewUserController(accounts *repository.AccountRepository, sessions *repository.SessionRepository, h *hub.Hub, publicBaseURL string) *UserController {
	return &UserController{Accounts: accounts, Sessions: sessions, Hub: h, PublicBaseURL: publicBaseURL}
}

type tableEntry struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Occupied bool   `json:"occupied"`
}

// ListTables is the table picker on the login screen.
func (uc *UserController) ListTables(c *gin.Context) {
	ctx := c.Request.Context()
	customers, err := uc.Accounts.ListCustomers(ctx)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("listing tables")
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("could not load tables"))
		return
	}

	occupied := map[string]bool{}
	sessions, err := uc.Sessions.ListSessions(ctx)
	if err != nil {
		// the picker still works without occupancy
		utils.ErrorLogger.WithError(err).Error("listing active sessions")
	}
	for _, s := range sessions {
		occupied[s.UserID] = true
	}

	tables := make([]tableEntry, 0, len(customers))
	for _, a := range customers {
		tables = append(tables, tableEntry{ID: a.ID, Username: a.Username, Occupied: occupied[a.ID]})
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (uc *UserController) GetAllUsers(c *gin.Context) {
	accounts, err := uc.Accounts.ListAccounts(c.Request.Context())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All users", accounts)
}

// CreateUser is the admin panel's user form: any role, phone optional for tables.
func (uc *UserController) CreateUser(c *gin.Context) {
	var req struct {
		Username   string `json:"username" binding:"required"`
		Phone      string `json:"phone"`
		Password   string `json:"password"`
		IsAdmin    bool   `json:"is_admin"`
		IsEmployee bool   `json:"is_employee"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	account := models.Account{
		Username:   req.Username,
		Phone:      req.Phone,
		IsAdmin:    req.IsAdmin,
		IsEmployee: req.IsEmployee,
	}
	if err := auth.ProvisionAccount(c.Request.Context(), uc.Accounts, &account, req.Password); err != nil {
		switch auth.KindOf(err) {
		case auth.KindConflict:
			utils.RespondJSON(c, http.StatusConflict, auth.PublicMessage(err), nil)
		case auth.KindInvalid:
			utils.RespondError(c, http.StatusBadRequest, err)
		default:
			utils.ErrorLogger.WithError(err).Error("creating user")
			utils.RespondError(c, http.StatusServiceUnavailable, errors.New("could not create user"))
		}
		return
	}

	if uc.Hub != nil {
		uc.Hub.AccountCreated(account)
	}
	utils.RespondJSON(c, http.StatusCreated, "User created", account)
}

func (uc *UserController) ToggleAdmin(c *gin.Context) {
	uc.toggleRole(c, func(a *models.Account) { a.SetAdmin(!a.IsAdmin) })
}

func (uc *UserController) ToggleEmployee(c *gin.Context) {
	uc.toggleRole(c, func(a *models.Account) { a.SetEmployee(!a.IsEmployee) })
}

func (uc *UserController) toggleRole(c *gin.Context, toggle func(*models.Account)) {
	ctx := c.Request.Context()
	account, err := uc.Accounts.FindByID(ctx, c.Param("id"))
	if err != nil {
		uc.respondLookupError(c, err)
		return
	}

	toggle(&account)
	if account.ID == c.GetString(middlewares.ContextUserID) && !account.IsAdmin {
		utils.RespondError(c, http.StatusBadRequest, errors.New("cannot revoke your own admin role"))
		return
	}

	if err := uc.Accounts.UpdateRole(ctx, &account); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.WithField("username", account.Username).WithField("role", account.Role()).Info("role changed")
	if uc.Hub != nil {
		uc.Hub.AccountUpdated(account)
	}
	utils.RespondJSON(c, http.StatusOK, "Role updated", account)
}

// QRLink returns the deep link printed on a table's QR code.
func (uc *UserController) QRLink(c *gin.Context) {
	account, err := uc.Accounts.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		uc.respondLookupError(c, err)
		return
	}
	if account.IsStaff() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("only tables have QR codes"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "QR link", gin.H{
		"username": account.Username,
		"slug":     account.Slug,
		"url":      auth.DeepLink(uc.PublicBaseURL, account.Slug),
	})
}

func (uc *UserController) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}
	utils.RespondError(c, http.StatusInternalServerError, err)
}

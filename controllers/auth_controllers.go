package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/allblack/restaurant-app/auth"
	"github.com/allblack/restaurant-app/middlewares"
	"github.com/allblack/restaurant-app/models"
	"github.com/allblack/restaurant-app/repository"
	"github.com/allblack/restaurant-app/utils"
	"github.com/gin-gonic/gin"
)

// TokenTTL sets how long issued tokens live. Table tokens expire with the
// auto-logout budget.
type TokenTTL struct {
	Customer time.Duration
	Staff    time.Duration
}

func (t TokenTTL) For(account models.Account) time.Duration {
	if account.IsStaff() {
		return t.Staff
	}
	return t.Customer
}

type AuthController struct {
	Accounts  *repository.AccountRepository
	Resolver  *auth.Resolver
	Registrar *auth.Registrar
	TTL       TokenTTL
}

func NewAuthController(accounts *repository.AccountRepository, registrar *auth.Registrar, ttl TokenTTL) *AuthController {
	return &AuthController{
		Accounts:  accounts,
		Resolver:  auth.NewResolver(accounts),
		Registrar: registrar,
		TTL:       ttl,
	}
}

// Login handles tables (username only), employees (is_employee + password) and
// admins (password).
func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Username   string `json:"username" binding:"required"`
		Password   string `json:"password"`
		IsEmployee bool   `json:"is_employee"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	account, err := ac.Resolver.Resolve(c.Request.Context(), input.Username, input.Password, input.IsEmployee)
	if err != nil {
		ac.rejectLogin(c, err, "username", input.Username)
		return
	}
	ac.issue(c, account, false)
}

func (ac *AuthController) LoginBySlug(c *gin.Context) {
	var input struct {
		Slug string `json:"slug" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	ac.loginSlug(c, input.Slug)
}

// DeepLink is where a table's printed QR code points.
func (ac *AuthController) DeepLink(c *gin.Context) {
	ac.loginSlug(c, c.Param("slug"))
}

// LoginQR accepts the raw text of a scanned code.
func (ac *AuthController) LoginQR(c *gin.Context) {
	var input struct {
		Payload string `json:"payload" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	code, err := auth.ParseQRPayload(input.Payload)
	if err != nil {
		ac.rejectLogin(c, err, "payload", input.Payload)
		return
	}
	if code.Slug != "" {
		ac.loginSlug(c, code.Slug)
		return
	}

	account, err := ac.Resolver.Resolve(c.Request.Context(), code.Table, "", false)
	if err != nil {
		ac.rejectLogin(c, err, "username", code.Table)
		return
	}
	ac.issue(c, account, true)
}

func (ac *AuthController) loginSlug(c *gin.Context, slug string) {
	account, err := ac.Resolver.ResolveSlug(c.Request.Context(), slug)
	if err != nil {
		ac.rejectLogin(c, err, "slug", slug)
		return
	}
	ac.issue(c, account, true)
}

func (ac *AuthController) rejectLogin(c *gin.Context, err error, field, value string) {
	utils.InfoLogger.WithError(err).WithField(field, value).WithField("kind", auth.KindOf(err).String()).Info("login rejected")
	utils.RespondJSON(c, http.StatusUnauthorized, auth.PublicMessage(err), nil)
}

func (ac *AuthController) issue(c *gin.Context, account models.Account, viaQR bool) {
	ac.Registrar.Register(c.Request.Context(), account, viaQR)

	ttl := ac.TTL.For(account)
	token, err := utils.GenerateToken(account.ID, account.Username, account.Role(), ttl)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("could not issue token"))
		return
	}

	identity := auth.IdentityFromAccount(account)
	identity.Phone = ""

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":      token,
		"expires_at": time.Now().Add(ttl),
		"user":       identity,
		"user_role":  account.Role(),
	})
}

// Register creates an employee. The request must carry valid admin credentials.
func (ac *AuthController) Register(c *gin.Context) {
	var req struct {
		Username      string `json:"username" binding:"required"`
		Phone         string `json:"phone" binding:"required"`
		Password      string `json:"password" binding:"required,min=6"`
		AdminUsername string `json:"admin_username" binding:"required"`
		AdminPassword string `json:"admin_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	account, err := auth.RegisterEmployee(c.Request.Context(), ac.Resolver, ac.Accounts, auth.RegisterRequest{
		Username:      req.Username,
		Phone:         req.Phone,
		Password:      req.Password,
		AdminUsername: req.AdminUsername,
		AdminPassword: req.AdminPassword,
	})
	if err != nil {
		utils.InfoLogger.WithError(err).WithField("username", req.Username).Info("registration rejected")
		utils.RespondJSON(c, http.StatusBadRequest, "registration failed", nil)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": account.ID,
		"slug":    account.Slug,
	})
}

// Logout revokes the presented token. The table stays occupied.
func (ac *AuthController) Logout(c *gin.Context) {
	if value, ok := c.Get(middlewares.ContextClaims); ok {
		if claims, ok := value.(*utils.CustomClaims); ok && claims.ExpiresAt != nil {
			utils.RevokeToken(claims.ID, claims.ExpiresAt.Time)
		}
	}
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

func (ac *AuthController) Me(c *gin.Context) {
	account, err := ac.Accounts.FindByID(c.Request.Context(), c.GetString(middlewares.ContextUserID))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", gin.H{
		"id":          account.ID,
		"username":    account.Username,
		"slug":        account.Slug,
		"is_admin":    account.IsAdmin,
		"is_employee": account.IsEmployee,
		"role":        account.Role(),
	})
}

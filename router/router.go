package router

import (
	"net/http"
	"strings"

	"github.com/allblack/restaurant-app/auth"
	"github.com/allblack/restaurant-app/controllers"
	"github.com/allblack/restaurant-app/hub"
	"github.com/allblack/restaurant-app/middlewares"
	"github.com/allblack/restaurant-app/models"
	"github.com/allblack/restaurant-app/repository"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Options struct {
	TokenTTL      controllers.TokenTTL
	PublicBaseURL string
	CORSOrigin    string
	// CORSHeaders overrides middlewares.DefaultCORSHeaders when set.
	CORSHeaders   []string
	Hub           *hub.Hub
	LoginLimiter  *middlewares.RateLimiter
	GlobalLimiter *middlewares.RateLimiter
}

func SetupRouter(db *gorm.DB, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.GlobalLimiter != nil {
		r.Use(opts.GlobalLimiter.RateLimit())
	}

	r.Use(middlewares.SecurityHeaders(strings.HasPrefix(opts.PublicBaseURL, "https://")))
	r.Use(middlewares.CORSMiddlewares(opts.CORSOrigin, opts.CORSHeaders))
	r.Use(middlewares.LoggerMiddleware())

	if opts.Hub == nil {
		opts.Hub = hub.New()
	}
	if opts.LoginLimiter == nil {
		opts.LoginLimiter = middlewares.NewStrictRateLimiter()
	}

	accounts := repository.NewAccountRepository(db)
	sessions := repository.NewSessionRepository(db)

	registrar := auth.NewRegistrar(sessions)
	registrar.OnRegistered = func(s models.ActiveSession) { opts.Hub.SessionStarted(s) }

	authCtrl := controllers.NewAuthController(accounts, registrar, opts.TokenTTL)
	userCtrl := controllers.NewUserController(accounts, sessions, opts.Hub, opts.PublicBaseURL)
	sessionCtrl := controllers.NewSessionController(sessions, opts.Hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/tables", userCtrl.ListTables)

	public := r.Group("/")
	public.Use(opts.LoginLimiter.RateLimit())
	{
		public.POST("/login", authCtrl.Login)
		public.POST("/login/slug", authCtrl.LoginBySlug)
		public.POST("/login/qr", authCtrl.LoginQR)
		public.GET(auth.DeepLinkPrefix+":slug", authCtrl.DeepLink)
		public.POST("/register", authCtrl.Register)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	authed := r.Group("/")
	authed.Use(middlewares.AuthMiddleware())
	authed.POST("/logout", authCtrl.Logout)
	authed.GET("/me", authCtrl.Me)

	staff := r.Group("/admin")
	staff.Use(middlewares.AuthMiddleware(), middlewares.CurrentRole(accounts), middlewares.RequireRole(models.RoleEmployee, models.RoleAdmin))
	staff.GET("/sessions", sessionCtrl.GetActiveSessions)
	staff.DELETE("/sessions/:user_id", sessionCtrl.FreeSession)

	admin := staff.Group("/users")
	admin.Use(middlewares.RequireRole(models.RoleAdmin))
	admin.GET("", userCtrl.GetAllUsers)
	admin.POST("", userCtrl.CreateUser)
	admin.PATCH("/:id/admin", userCtrl.ToggleAdmin)
	admin.PATCH("/:id/employee", userCtrl.ToggleEmployee)
	admin.GET("/:id/qr", userCtrl.QRLink)

	ws := r.Group("/ws")
	ws.Use(middlewares.AuthMiddleware(), middlewares.CurrentRole(accounts), middlewares.RequireRole(models.RoleEmployee, models.RoleAdmin))
	ws.GET("", sessionCtrl.Stream)

	return r
}

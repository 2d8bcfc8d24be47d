package main

import (
	"time"

	"github.com/allblack/restaurant-app/config"
	"github.com/allblack/restaurant-app/controllers"
	"github.com/allblack/restaurant-app/hub"
	"github.com/allblack/restaurant-app/middlewares"
	"github.com/allblack/restaurant-app/router"
	"github.com/allblack/restaurant-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	utils.InitLogger()

	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	if err := utils.ConfigureLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		utils.ErrorLogger.Fatalf("Invalid LOG_LEVEL: %v", err)
	}
	utils.SetJWTSecret(cfg.JWTSecret)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := config.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	stop := make(chan struct{})
	defer close(stop)
	utils.StartRevocationCleanup(time.Hour, stop)

	r := router.SetupRouter(db, router.Options{
		TokenTTL: controllers.TokenTTL{
			Customer: cfg.AutoLogoutAfter,
			Staff:    cfg.StaffTokenTTL,
		},
		PublicBaseURL: cfg.PublicBaseURL,
		CORSOrigin:    cfg.CORSOrigin,
		CORSHeaders:   cfg.CORSHeaders,
		Hub:           hub.New(),
		LoginLimiter:  middlewares.NewStrictRateLimiter(),
		// 50 requests per second per IP
		GlobalLimiter: middlewares.NewRateLimiter(rate.Limit(50), 50),
	})

	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		utils.ErrorLogger.Printf("Setting trusted proxies: %v", err)
	}

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/allblack/restaurant-app/models"
	"github.com/allblack/restaurant-app/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port            string
	GinMode         string
	DBDriver        string
	DBDSN           string
	JWTSecret       string
	PublicBaseURL   string
	CORSOrigin      string
	CORSHeaders     []string
	IdentityFile    string
	LogLevel        string
	LogFormat       string
	AutoLogoutAfter time.Duration
	StaffTokenTTL   time.Duration
}

// Load reads the configuration from the environment. Call godotenv.Load first if a
// .env file should be honoured.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       os.Getenv("GIN_MODE"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:         os.Getenv("DB_DSN"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		CORSOrigin:    getEnv("CORS_ORIGIN", "http://127.0.0.1:5500"),
		CORSHeaders:   getList("CORS_ALLOWED_HEADERS"),
		IdentityFile:  getEnv("IDENTITY_FILE", "allblack_user.json"),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("unsupported LOG_FORMAT %q", cfg.LogFormat)
	}

	var err error
	if cfg.AutoLogoutAfter, err = getDuration("AUTO_LOGOUT_AFTER", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.StaffTokenTTL, err = getDuration("STAFF_TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}

	switch cfg.DBDriver {
	case "sqlite":
		if cfg.DBDSN == "" {
			cfg.DBDSN = "restaurant.db"
		}
	case "mysql", "postgres":
		if cfg.DBDSN == "" {
			return Config{}, fmt.Errorf("DB_DSN is required for driver %q", cfg.DBDriver)
		}
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

// InitDB opens the configured database. Duplicate-key errors are translated to
// gorm.ErrDuplicatedKey.
func InitDB(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Connected to %s database", cfg.DBDriver)
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Account{}, &models.ActiveSession{}); err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getList splits a comma separated variable, dropping blank entries.
func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/allblack/restaurant-app/auth"
	"github.com/allblack/restaurant-app/controllers"
	"github.com/allblack/restaurant-app/hub"
	"github.com/allblack/restaurant-app/middlewares"
	"github.com/allblack/restaurant-app/models"
	"github.com/allblack/restaurant-app/repository"
	"github.com/allblack/restaurant-app/router"
	"github.com/allblack/restaurant-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	db       *gorm.DB
	router   *gin.Engine
	accounts *repository.AccountRepository
	sessions *repository.SessionRepository
	hub      *hub.Hub
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.ActiveSession{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	h := hub.New()
	r := router.SetupRouter(db, router.Options{
		TokenTTL:      controllers.TokenTTL{Customer: 10 * time.Minute, Staff: time.Hour},
		PublicBaseURL: "https://allblack.example",
		CORSOrigin:    "http://127.0.0.1:5500",
		Hub:           h,
		LoginLimiter:  middlewares.NewRateLimiter(rate.Inf, 1),
	})

	return &testServer{
		db:       db,
		router:   r,
		accounts: repository.NewAccountRepository(db),
		sessions: repository.NewSessionRepository(db),
		hub:      h,
	}
}

// seedAccounts creates table 01, employee Maria (maria123) and admin Joao (admin123).
func (s *testServer) seedAccounts(t *testing.T) (table, employee, admin models.Account) {
	t.Helper()
	ctx := context.Background()
	table = models.Account{Username: "01"}
	employee = models.Account{Username: "Maria", Phone: "11911111111", IsEmployee: true}
	admin = models.Account{Username: "Joao", Phone: "11922222222", IsAdmin: true}
	require.NoError(t, auth.ProvisionAccount(ctx, s.accounts, &table, ""))
	require.NoError(t, auth.ProvisionAccount(ctx, s.accounts, &employee, "maria123"))
	require.NoError(t, auth.ProvisionAccount(ctx, s.accounts, &admin, "admin123"))
	return table, employee, admin
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, path, bytes.NewBuffer(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (s *testServer) login(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	w, resp := s.do(t, http.MethodPost, "/login", body, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return resp["data"].(map[string]interface{})["token"].(string)
}

func (s *testServer) adminToken(t *testing.T) string {
	return s.login(t, map[string]interface{}{"username": "Joao", "password": "admin123"})
}

func (s *testServer) employeeToken(t *testing.T) string {
	return s.login(t, map[string]interface{}{"username": "Maria", "password": "maria123", "is_employee": true})
}

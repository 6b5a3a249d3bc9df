package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/macrosdb/internal/config"
	"github.com/localnerve/macrosdb/internal/database"
	"github.com/localnerve/macrosdb/internal/handlers"
	"github.com/localnerve/macrosdb/internal/middleware"
	"github.com/localnerve/macrosdb/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testSecret     = "0123456789abcdef0123456789abcdef"
	adminEmail     = "admin@example.com"
	adminPassword  = "admin password"
	userPassword   = "correct horse"
	loginPerMinute = 3
)

type testEnv struct {
	app   *fiber.App
	store *services.Store
	auth  *services.AuthService
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// setupApp builds the API the way the server does, on sqlite
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	log := quietLogger()
	db := setupTestDB(t)

	store := services.NewStore(db, services.WithLogger(log))
	auth := services.NewAuthService(db, testSecret, time.Hour, log)
	require.NoError(t, auth.EnsureSuperAdmin(context.Background(), adminEmail, adminPassword))

	cfg := &config.Config{DBType: "sqlite", DBDatabase: ":memory:", JWTSecret: testSecret}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(log)})
	api := app.Group("/api", middleware.VersionMiddleware())
	handlers.Routes(api, handlers.Dependencies{
		Config:       cfg,
		Store:        store,
		Auth:         auth,
		LoginLimiter: middleware.NewRateLimiter(loginPerMinute),
		Log:          log,
	})

	return &testEnv{app: app, store: store, auth: auth}
}

// register creates an account and returns its id and a bearer token
func (e *testEnv) register(t *testing.T, email, role string) (string, string) {
	t.Helper()
	user, err := e.auth.Register(context.Background(), services.RegisterInput{
		Email:    email,
		Password: userPassword,
		Role:     role,
	})
	require.NoError(t, err)
	token, _, err := e.auth.Authenticate(context.Background(), email, userPassword)
	require.NoError(t, err)
	return user.ID, token
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := e.auth.Authenticate(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)
	return token
}

// do sends a JSON request, body may be nil
func (e *testEnv) do(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// parseJSON decodes the response body into target
func parseJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, target), "body: %s", body)
}

// object decodes a JSON object response
func object(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	parseJSON(t, resp, &out)
	return out
}

// idOf reads a numeric id from a decoded object
func idOf(t *testing.T, obj map[string]interface{}) uint64 {
	t.Helper()
	id, ok := obj["id"].(float64)
	require.True(t, ok, "missing id in %v", obj)
	return uint64(id)
}

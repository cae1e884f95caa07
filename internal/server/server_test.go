package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"blogchef/internal/auth"
	"blogchef/internal/config"
	"blogchef/internal/models"
	"blogchef/internal/repository"
	"blogchef/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestServer builds a Server over an in-memory database with an
// in-process session store and no Redis, wired to a fresh fiber app.
// Metrics middleware is left out so repeated test runs do not re-register
// collectors.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	sessions := auth.NewMemoryStore()
	t.Cleanup(sessions.Close)

	s := &Server{
		config:   &config.Config{JWTSecret: "test_secret", Env: "test"},
		db:       db,
		userRepo: userRepo,
		postRepo: postRepo,
		tokens:   auth.NewTokenService("test_secret", userRepo),
		sessions: sessions,
	}
	s.userService = service.NewUserService(userRepo)
	s.postService = service.NewPostService(postRepo)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// signupAndLogin registers a user through the API and returns the bearer token.
func signupAndLogin(t *testing.T, app *fiber.App, name, email, password string) string {
	t.Helper()
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": name, "email": email, "password": password,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	token, ok := body["token"].(string)
	require.True(t, ok, "signup response should carry a token")
	return token
}

// signupUser creates a user directly through the service, bypassing HTTP.
func signupUser(t *testing.T, s *Server, name, email string) *models.User {
	t.Helper()
	user, err := s.userService.Signup(t.Context(), service.SignupInput{
		Name: name, Email: email, Password: "secret1",
	})
	require.NoError(t, err)
	return user
}

func sessionCookie(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookie {
			return c.Value
		}
	}
	t.Fatal("no session cookie in response")
	return ""
}

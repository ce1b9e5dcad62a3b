package delivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devtodo-backend/internal/auth/repository"
	"devtodo-backend/internal/auth/usecase"
	"devtodo-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func setupRouter(limiter *IPRateLimiter) (*gin.Engine, usecase.AuthUsecase) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: "test-secret", JWTAccessExpiry: time.Hour}
	authUsecase := usecase.NewAuthUsecase(repository.NewMemoryUserRepository(), cfg)

	router := gin.New()
	api := router.Group("/api")
	NewAuthHandler(authUsecase, limiter).RegisterRoutes(api)
	api.GET("/protected", AuthMiddleware(authUsecase), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": CurrentUser(c).Username})
	})
	return router, authUsecase
}

func post(router *gin.Engine, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	buf, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func get(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginVerify(t *testing.T) {
	router, _ := setupRouter(NewIPRateLimiter(AuthRateWindow, AuthRateMax))

	w, body := post(router, "/api/auth/register", map[string]string{"username": "alice", "password": "a-long-enough-pass"})
	if w.Code != http.StatusOK || body["token"] == "" || body["username"] != "alice" {
		t.Fatalf("register: unexpected %d %v", w.Code, body)
	}

	w, body = post(router, "/api/auth/login", map[string]string{"username": "alice", "password": "a-long-enough-pass"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: unexpected %d %v", w.Code, body)
	}
	token := body["token"].(string)

	w = get(router, "/api/auth/verify", token)
	var verify map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &verify)
	if w.Code != http.StatusOK || verify["valid"] != true || verify["username"] != "alice" {
		t.Errorf("verify: unexpected %d %v", w.Code, verify)
	}
}

func TestAuthErrors(t *testing.T) {
	router, _ := setupRouter(NewIPRateLimiter(AuthRateWindow, AuthRateMax))
	post(router, "/api/auth/register", map[string]string{"username": "bob", "password": "a-long-enough-pass"})

	tests := []struct {
		name string
		path string
		body map[string]string
		want int
	}{
		{"missing password", "/api/auth/register", map[string]string{"username": "carol"}, http.StatusBadRequest},
		{"short password", "/api/auth/register", map[string]string{"username": "carol", "password": "short"}, http.StatusBadRequest},
		{"duplicate username", "/api/auth/register", map[string]string{"username": "bob", "password": "another-long-pass"}, http.StatusBadRequest},
		{"unknown user", "/api/auth/login", map[string]string{"username": "nobody", "password": "a-long-enough-pass"}, http.StatusUnauthorized},
		{"wrong password", "/api/auth/login", map[string]string{"username": "bob", "password": "wrong-password!"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w, body := post(router, tt.path, tt.body); w.Code != tt.want {
				t.Errorf("expected %d, got %d: %v", tt.want, w.Code, body)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	router, _ := setupRouter(NewIPRateLimiter(AuthRateWindow, AuthRateMax))

	if w := get(router, "/api/protected", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
	if w := get(router, "/api/protected", "garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with a bad token, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a non-bearer scheme, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	router, _ := setupRouter(NewIPRateLimiter(time.Hour, 2))

	for i := 0; i < 2; i++ {
		if w, _ := post(router, "/api/auth/login", map[string]string{"username": "x", "password": "y"}); w.Code != http.StatusUnauthorized {
			t.Fatalf("request %d: expected 401, got %d", i, w.Code)
		}
	}
	w, body := post(router, "/api/auth/login", map[string]string{"username": "x", "password": "y"})
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d %v", w.Code, body)
	}
}

func TestRateLimiterDropsIdleClients(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(time.Minute, 1)
	limiter.now = func() time.Time { return clock }
	limiter.lastSweep = clock

	if !limiter.Allow("10.0.0.1") || !limiter.Allow("10.0.0.2") {
		t.Fatal("first request per client should pass")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("second request inside the window should be limited")
	}

	clock = clock.Add(30 * time.Second)
	limiter.Allow("10.0.0.2")
	if got := len(limiter.limiters); got != 2 {
		t.Fatalf("expected 2 tracked clients before the window ends, got %d", got)
	}

	clock = clock.Add(45 * time.Second)
	if !limiter.Allow("10.0.0.3") {
		t.Fatal("new client should pass")
	}
	if _, ok := limiter.limiters["10.0.0.1"]; ok {
		t.Error("idle client was not dropped")
	}
	if got := len(limiter.limiters); got != 2 {
		t.Errorf("expected the active and new clients to remain, got %d", got)
	}
}

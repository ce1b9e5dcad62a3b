package delivery

import (
	"errors"
	"net/http"

	authdto "devtodo-backend/internal/auth/dto"
	"devtodo-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles account registration, login and token checks
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	limiter     *IPRateLimiter
}

// NewAuthHandler creates a new AuthHandler. limiter guards register and login
func NewAuthHandler(authUsecase usecase.AuthUsecase, limiter *IPRateLimiter) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		limiter:     limiter,
	}
}

// RegisterRoutes mounts the public auth endpoints and the protected verify endpoint
func (h *AuthHandler) RegisterRoutes(group *gin.RouterGroup) {
	auth := group.Group("/auth")
	auth.POST("/register", h.limiter.Middleware(), h.Register)
	auth.POST("/login", h.limiter.Middleware(), h.Login)
	auth.GET("/verify", AuthMiddleware(h.authUsecase), h.Verify)
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req authdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password required"})
		return
	}

	resp, err := h.authUsecase.Register(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req authdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password required"})
		return
	}

	resp, err := h.authUsecase.Login(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GET /api/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	c.JSON(http.StatusOK, authdto.VerifyResponse{Valid: true, Username: user.Username})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrWeakPassword), errors.Is(err, usecase.ErrUserExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

package delivery

import (
	"net/http"
	"strings"

	authdomain "devtodo-backend/internal/auth/domain"
	"devtodo-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

// AuthMiddleware requires "Authorization: Bearer <token>" and stores the
// token's user on the context
func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		user, err := authUsecase.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware, or nil
func CurrentUser(c *gin.Context) *authdomain.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := value.(*authdomain.User)
	return user
}

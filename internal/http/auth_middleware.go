package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auth-api/internal/service"
)

const authUserIDKey = "auth_user_id"

// SessionAuthMiddleware valida el token de sesión de la cookie y guarda el
// id de usuario en el contexto. Cookie ausente o token inválido: 401.
func SessionAuthMiddleware(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "token service not configured"})
			c.Abort()
			return
		}

		cookie, err := c.Request.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized, login again"})
			c.Abort()
			return
		}

		userID, err := tokens.Verify(cookie.Value)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized, login again"})
			c.Abort()
			return
		}

		c.Set(authUserIDKey, userID)
		c.Next()
	}
}

// GetAuthUserID obtiene el id de usuario validado por el middleware.
func GetAuthUserID(c *gin.Context) (string, bool) {
	val, ok := c.Get(authUserIDKey)
	if !ok {
		return "", false
	}
	userID, ok := val.(string)
	return userID, ok && userID != ""
}

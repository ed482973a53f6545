package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auth-api/internal/service"
)

// UserHandler mantiene dependencias para los endpoints de usuario.
type UserHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
}

func NewUserHandler(logger *zap.Logger, authServ *service.AuthService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		authServ: authServ,
	}
}

// Data maneja GET /api/user/data. Expone solo nombre y estado de
// verificación, nunca el hash ni los códigos OTP.
func (h *UserHandler) Data(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized, login again"})
		return
	}

	user, err := h.authServ.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		h.logger.Error("get user data failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not fetch user data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"userData": gin.H{
			"name":              user.Name,
			"isAccountVerified": user.IsAccountVerified,
		},
	})
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auth-api/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de autenticación.
type AuthHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
	tokens   *service.TokenService
	cookies  *CookieManager
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService, tokens *service.TokenService, cookies *CookieManager) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		authServ: authServ,
		tokens:   tokens,
		cookies:  cookies,
	}
}

// Register maneja POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing details"})
		return
	}

	user, err := h.authServ.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing details"})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User already exists"})
		default:
			h.logger.Error("register failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not register user"})
		}
		return
	}

	if !h.setSessionCookie(c, user.ID) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "User registered successfully"})
}

// Login maneja POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password are required"})
		return
	}

	user, err := h.authServ.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields), errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid credentials"})
		default:
			h.logger.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not login"})
		}
		return
	}

	if !h.setSessionCookie(c, user.ID) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Login successful"})
}

// Logout maneja POST /api/auth/logout. Limpia la cookie incondicionalmente,
// la operación es idempotente.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookies.Clear(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logout successful"})
}

// IsAuthenticated maneja GET /api/auth/is-auth. El middleware ya validó el
// token, acá solo se refleja ese estado.
func (h *AuthHandler) IsAuthenticated(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SendVerifyOTP maneja POST /api/auth/send-verify-otp.
func (h *AuthHandler) SendVerifyOTP(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized, login again"})
		return
	}

	if err := h.authServ.SendVerifyOTP(c.Request.Context(), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		case errors.Is(err, service.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Account already verified"})
		default:
			h.logger.Error("send verify otp failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not send verification OTP"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification OTP sent to email"})
}

// VerifyAccount maneja POST /api/auth/verify-account.
func (h *AuthHandler) VerifyAccount(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized, login again"})
		return
	}

	var req struct {
		OTP string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing details"})
		return
	}

	if err := h.authServ.VerifyAccount(c.Request.Context(), userID, req.OTP); err != nil {
		h.respondOTPError(c, err, "verify account failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email verified successfully"})
}

// SendResetOTP maneja POST /api/auth/send-reset-otp.
func (h *AuthHandler) SendResetOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email is required"})
		return
	}

	if err := h.authServ.SendResetOTP(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email is required"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		default:
			h.logger.Error("send reset otp failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not send reset OTP"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset OTP sent to email"})
}

// ResetPassword maneja POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		OTP         string `json:"otp" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email, OTP and new password are required"})
		return
	}

	if err := h.authServ.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		h.respondOTPError(c, err, "reset password failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password has been reset successfully"})
}

func (h *AuthHandler) respondOTPError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing details"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
	case errors.Is(err, service.ErrOTPInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid OTP"})
	case errors.Is(err, service.ErrOTPExpired):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "OTP expired"})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Something went wrong"})
	}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, userID string) bool {
	token, err := h.tokens.Issue(userID)
	if err != nil {
		h.logger.Error("session token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not create session"})
		return false
	}
	h.cookies.Set(c, token)
	return true
}

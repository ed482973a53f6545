package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auth-api/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	tokens *service.TokenService,
	authH *AuthHandler,
	userH *UserHandler,
	frontendOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Middlewares básicos: logging, recovery y CORS con credenciales para
	// que el frontend pueda mandar la cookie de sesión.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery())
	if len(frontendOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     frontendOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Auth API is running")
	})

	requireAuth := SessionAuthMiddleware(tokens)

	auth := r.Group("/api/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/logout", authH.Logout)
	auth.GET("/is-auth", requireAuth, authH.IsAuthenticated)
	auth.POST("/send-verify-otp", requireAuth, authH.SendVerifyOTP)
	auth.POST("/verify-account", requireAuth, authH.VerifyAccount)
	auth.POST("/send-reset-otp", authH.SendResetOTP)
	auth.POST("/reset-password", authH.ResetPassword)

	user := r.Group("/api/user")
	user.GET("/data", requireAuth, userH.Data)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

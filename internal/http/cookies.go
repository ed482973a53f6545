package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auth-api/internal/service"
)

// Nombre de la cookie de sesión.
const sessionCookieName = "token"

// CookieManager setea y limpia la cookie de sesión con atributos fijos.
// El clear usa exactamente los mismos flags que el set: los navegadores no
// eliminan una cookie si los atributos no coinciden.
type CookieManager struct {
	secure   bool
	sameSite http.SameSite
}

// NewCookieManager arma los atributos según el ambiente: en producción la
// cookie viaja cross-site (Secure + SameSite=None), en desarrollo Strict.
func NewCookieManager(production bool) *CookieManager {
	if production {
		return &CookieManager{secure: true, sameSite: http.SameSiteNoneMode}
	}
	return &CookieManager{secure: false, sameSite: http.SameSiteStrictMode}
}

// Set escribe la cookie de sesión con max-age de 7 días.
func (m *CookieManager) Set(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(service.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite,
	})
}

// Clear elimina la cookie de sesión.
func (m *CookieManager) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite,
	})
}

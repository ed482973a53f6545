package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService emite y valida los tokens de sesión firmados que viajan en la
// cookie. No hay estado del lado servidor: el token es la sesión.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// SessionTTL es la ventana de validez de una sesión.
const SessionTTL = 7 * 24 * time.Hour

type sessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    SessionTTL,
		issuer: "auth-api",
	}
}

// Issue firma un token de sesión para el usuario con expiración a 7 días.
func (s *TokenService) Issue(userID string) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(userID) == "" {
		return "", ErrTokenInvalid
	}
	now := time.Now().UTC()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify valida firma y expiración y devuelve el id de usuario.
// Cualquier token malformado, alterado o vencido se rechaza completo.
func (s *TokenService) Verify(tokenString string) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return "", ErrTokenInvalid
	}
	var claims sessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if strings.TrimSpace(claims.UserID) == "" || claims.Subject != claims.UserID {
		return "", ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Issuer) != s.issuer {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}

package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"auth-api/internal/domain"
	"auth-api/internal/email"
	"auth-api/internal/repository"
)

// Ventanas de validez por propósito. Verificación de email es deliberadamente
// más larga que reset de contraseña.
const (
	verifyOTPTTL = 24 * time.Hour
	resetOTPTTL  = 15 * time.Minute
)

var (
	ErrOTPInvalid = errors.New("otp invalid")
	ErrOTPExpired = errors.New("otp expired")
)

// OTPEngine genera, persiste, expira y consume códigos de un solo uso.
// Cada propósito usa su propio par código/expiración sobre el usuario.
type OTPEngine struct {
	logger *zap.Logger
	users  repository.UserRepository
	mail   email.Dispatcher
}

func NewOTPEngine(logger *zap.Logger, users repository.UserRepository, mail email.Dispatcher) *OTPEngine {
	return &OTPEngine{
		logger: logger,
		users:  users,
		mail:   mail,
	}
}

// Issue genera un código nuevo, lo persiste con su expiración absoluta y
// encola el correo al usuario. El correo es asíncrono: si la cola falla se
// registra pero la operación ya es válida porque el código quedó guardado.
func (e *OTPEngine) Issue(ctx context.Context, user domain.User, purpose domain.OTPPurpose) error {
	code, err := generateOTPCode()
	if err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(otpTTL(purpose))
	if err := e.users.SetOTP(ctx, user.ID, purpose, code, expiresAt); err != nil {
		return err
	}

	msg := otpMail(user.Email, purpose, code)
	if err := e.mail.Enqueue(ctx, msg); err != nil && e.logger != nil {
		e.logger.Warn("otp mail enqueue failed",
			zap.String("email", user.Email),
			zap.String("purpose", string(purpose)),
			zap.Error(err),
		)
	}
	return nil
}

// Consume valida el código presentado contra el almacenado y lo limpia.
// Comparación exacta de strings, sin normalización. Un código vencido se
// limpia al detectarse, no hay barrido en segundo plano.
func (e *OTPEngine) Consume(ctx context.Context, user domain.User, purpose domain.OTPPurpose, code string) error {
	stored, expiresAt := user.OTP(purpose)
	if stored == "" || code == "" {
		return ErrOTPInvalid
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrOTPInvalid
	}
	if expiresAt == nil || time.Now().UTC().After(*expiresAt) {
		if err := e.users.ClearOTP(ctx, user.ID, purpose); err != nil && e.logger != nil {
			e.logger.Warn("expired otp cleanup failed", zap.String("user_id", user.ID), zap.Error(err))
		}
		return ErrOTPExpired
	}

	ok, err := e.users.ConsumeOTP(ctx, user.ID, purpose, code)
	if err != nil {
		return err
	}
	if !ok {
		// Otro request consumió o reemplazó el código entre la lectura y acá.
		return ErrOTPInvalid
	}
	return nil
}

// generateOTPCode devuelve un código decimal de 6 dígitos uniforme,
// rellenado con ceros a la izquierda.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func otpTTL(purpose domain.OTPPurpose) time.Duration {
	if purpose == domain.OTPPurposeReset {
		return resetOTPTTL
	}
	return verifyOTPTTL
}

func otpMail(to string, purpose domain.OTPPurpose, code string) email.Message {
	if purpose == domain.OTPPurposeReset {
		return email.Message{
			To:      to,
			Subject: "Password Reset OTP",
			Body:    fmt.Sprintf("Your OTP for resetting your password is %s. It is valid for 15 minutes.", code),
		}
	}
	return email.Message{
		To:      to,
		Subject: "Email Verification OTP",
		Body:    fmt.Sprintf("Your OTP for email verification is %s. It is valid for 24 hours.", code),
	}
}

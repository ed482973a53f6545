package domain

import "time"

// OTPPurpose distingue los dos usos de códigos OTP sobre el usuario.
// Cada propósito tiene su propio par código/expiración y nunca se cruzan.
type OTPPurpose string

const (
	OTPPurposeVerify OTPPurpose = "verify"
	OTPPurposeReset  OTPPurpose = "reset"
)

// User es la única entidad persistente del servicio.
// Un OTP y su expiración se setean y limpian siempre juntos: código vacío
// implica expiración nil y viceversa.
type User struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	IsAccountVerified bool       `json:"is_account_verified"`
	VerifyOTP         string     `json:"-"`
	VerifyOTPExpireAt *time.Time `json:"-"`
	ResetOTP          string     `json:"-"`
	ResetOTPExpireAt  *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
}

// OTP devuelve el par código/expiración correspondiente al propósito.
func (u *User) OTP(purpose OTPPurpose) (string, *time.Time) {
	if purpose == OTPPurposeReset {
		return u.ResetOTP, u.ResetOTPExpireAt
	}
	return u.VerifyOTP, u.VerifyOTPExpireAt
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"auth-api/internal/domain"
	"auth-api/internal/email"
	"auth-api/internal/repository"
)

var (
	ErrMissingFields      = errors.New("missing fields")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyVerified    = errors.New("account already verified")
)

// AuthService orquesta registro, login, verificación de email y reset de
// contraseña sobre el repositorio de usuarios y el motor de OTP.
type AuthService struct {
	logger *zap.Logger
	users  repository.UserRepository
	otp    *OTPEngine
	mail   email.Dispatcher
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, otp *OTPEngine, mail email.Dispatcher) *AuthService {
	return &AuthService{
		logger: logger,
		users:  users,
		otp:    otp,
		mail:   mail,
	}
}

// Register crea un usuario no verificado con la contraseña hasheada y encola
// el correo de bienvenida. El registro es válido aunque el correo falle.
func (s *AuthService) Register(ctx context.Context, name, emailAddr, password string) (domain.User, error) {
	name = strings.TrimSpace(name)
	emailAddr = normalizeEmail(emailAddr)
	if name == "" || emailAddr == "" || password == "" {
		return domain.User{}, ErrMissingFields
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        emailAddr,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	s.enqueueMail(ctx, email.Message{
		To:      emailAddr,
		Subject: "Welcome",
		Body:    fmt.Sprintf("Welcome! Your account has been created with email id: %s.", emailAddr),
	})

	return user, nil
}

// Login valida credenciales. Email desconocido y contraseña incorrecta
// producen el mismo error para no permitir enumerar cuentas.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if !CheckPassword(password, user.PasswordHash) {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// SendVerifyOTP emite un código de verificación de email para el usuario de
// la sesión. Falla si la cuenta ya está verificada.
func (s *AuthService) SendVerifyOTP(ctx context.Context, userID string) error {
	user, err := s.getByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAccountVerified {
		return ErrAlreadyVerified
	}
	return s.otp.Issue(ctx, user, domain.OTPPurposeVerify)
}

// VerifyAccount consume el código de verificación. En éxito la cuenta queda
// verificada de forma permanente: la transición nunca se revierte.
func (s *AuthService) VerifyAccount(ctx context.Context, userID, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrMissingFields
	}
	user, err := s.getByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.otp.Consume(ctx, user, domain.OTPPurposeVerify, code)
}

// SendResetOTP emite un código de reset de contraseña para el email dado.
func (s *AuthService) SendResetOTP(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrMissingFields
	}
	user, err := s.getByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	return s.otp.Issue(ctx, user, domain.OTPPurposeReset)
}

// ResetPassword consume el código de reset y recién entonces reemplaza el
// hash de contraseña. Un código inválido deja la contraseña intacta.
func (s *AuthService) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" || code == "" || newPassword == "" {
		return ErrMissingFields
	}
	user, err := s.getByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	if err := s.otp.Consume(ctx, user, domain.OTPPurposeReset, code); err != nil {
		return err
	}
	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, passwordHash)
}

// GetUser devuelve el usuario de la sesión para /api/user/data.
func (s *AuthService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	return s.getByID(ctx, userID)
}

func (s *AuthService) getByID(ctx context.Context, userID string) (domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.User{}, ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *AuthService) getByEmail(ctx context.Context, emailAddr string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *AuthService) enqueueMail(ctx context.Context, msg email.Message) {
	if err := s.mail.Enqueue(ctx, msg); err != nil && s.logger != nil {
		s.logger.Warn("mail enqueue failed", zap.String("to", msg.To), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

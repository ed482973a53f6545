package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"auth-api/internal/domain"
)

// ErrDuplicateEmail se devuelve cuando el email ya está registrado.
var ErrDuplicateEmail = errors.New("duplicate email")

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	SetOTP(ctx context.Context, id string, purpose domain.OTPPurpose, code string, expiresAt time.Time) error
	ClearOTP(ctx context.Context, id string, purpose domain.OTPPurpose) error
	// ConsumeOTP limpia el OTP de forma atómica solo si el código almacenado
	// coincide. Para el propósito verify marca además la cuenta como
	// verificada en la misma sentencia. Devuelve false si no hubo match.
	ConsumeOTP(ctx context.Context, id string, purpose domain.OTPPurpose, code string) (bool, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, is_account_verified,
	verify_otp, verify_otp_expire_at, reset_otp, reset_otp_expire_at, created_at`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, name, email, password_hash, is_account_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsAccountVerified,
		user.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) SetOTP(ctx context.Context, id string, purpose domain.OTPPurpose, code string, expiresAt time.Time) error {
	codeCol, expireCol := otpColumns(purpose)
	query := fmt.Sprintf(`UPDATE users SET %s = $2, %s = $3 WHERE id = $1`, codeCol, expireCol)
	tag, err := r.pool.Exec(ctx, query, id, code, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) ClearOTP(ctx context.Context, id string, purpose domain.OTPPurpose) error {
	codeCol, expireCol := otpColumns(purpose)
	query := fmt.Sprintf(`UPDATE users SET %s = '', %s = NULL WHERE id = $1`, codeCol, expireCol)
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgUserRepository) ConsumeOTP(ctx context.Context, id string, purpose domain.OTPPurpose, code string) (bool, error) {
	// Comparar y limpiar en una sola sentencia evita que dos consumos
	// concurrentes del mismo código pasen ambos.
	var query string
	if purpose == domain.OTPPurposeVerify {
		query = `
			UPDATE users
			SET verify_otp = '', verify_otp_expire_at = NULL, is_account_verified = TRUE
			WHERE id = $1 AND verify_otp = $2 AND verify_otp <> ''
		`
	} else {
		query = `
			UPDATE users
			SET reset_otp = '', reset_otp_expire_at = NULL
			WHERE id = $1 AND reset_otp = $2 AND reset_otp <> ''
		`
	}
	tag, err := r.pool.Exec(ctx, query, id, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.IsAccountVerified,
		&u.VerifyOTP,
		&u.VerifyOTPExpireAt,
		&u.ResetOTP,
		&u.ResetOTPExpireAt,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func otpColumns(purpose domain.OTPPurpose) (string, string) {
	if purpose == domain.OTPPurposeReset {
		return "reset_otp", "reset_otp_expire_at"
	}
	return "verify_otp", "verify_otp_expire_at"
}

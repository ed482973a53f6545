package service

import (
	"context"
	"errors"
	"testing"
	"time"
	"unicode"

	"go.uber.org/zap"

	"auth-api/internal/domain"
)

func TestGenerateOTPCode_Format(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateOTPCode()
		if err != nil {
			t.Fatalf("generate otp: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for _, r := range code {
			if !unicode.IsDigit(r) {
				t.Fatalf("expected only digits, got %q", code)
			}
		}
	}
}

func TestOTPEngineIssue_StoresAndMails(t *testing.T) {
	repo := newMockUserRepo()
	mail := &mockDispatcher{}
	engine := NewOTPEngine(zap.NewNop(), repo, mail)

	user := domain.User{ID: "u1", Email: "a@x.com", CreatedAt: time.Now().UTC()}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	start := time.Now().UTC()
	if err := engine.Issue(context.Background(), user, domain.OTPPurposeReset); err != nil {
		t.Fatalf("issue: %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), "u1")
	if stored.ResetOTP == "" || stored.ResetOTPExpireAt == nil {
		t.Fatalf("expected reset otp stored")
	}
	if stored.VerifyOTP != "" {
		t.Fatalf("reset issue must not touch the verification slot")
	}
	// Ventana de reset: 15 minutos.
	if stored.ResetOTPExpireAt.Before(start.Add(14*time.Minute)) || stored.ResetOTPExpireAt.After(start.Add(16*time.Minute)) {
		t.Fatalf("expected ~15m expiry, got %v", stored.ResetOTPExpireAt)
	}
	if mail.lastCode() != stored.ResetOTP {
		t.Fatalf("expected mailed code to match stored code")
	}
}

func TestOTPEngineIssue_VerifyWindow(t *testing.T) {
	repo := newMockUserRepo()
	mail := &mockDispatcher{}
	engine := NewOTPEngine(zap.NewNop(), repo, mail)

	user := domain.User{ID: "u1", Email: "a@x.com", CreatedAt: time.Now().UTC()}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	start := time.Now().UTC()
	if err := engine.Issue(context.Background(), user, domain.OTPPurposeVerify); err != nil {
		t.Fatalf("issue: %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), "u1")
	if stored.VerifyOTPExpireAt == nil || stored.VerifyOTPExpireAt.Before(start.Add(23*time.Hour)) {
		t.Fatalf("expected ~24h expiry, got %v", stored.VerifyOTPExpireAt)
	}
}

func TestOTPEngineIssue_MailFailureDoesNotAbort(t *testing.T) {
	repo := newMockUserRepo()
	mail := &mockDispatcher{err: errors.New("queue down")}
	engine := NewOTPEngine(zap.NewNop(), repo, mail)

	user := domain.User{ID: "u1", Email: "a@x.com", CreatedAt: time.Now().UTC()}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	// El código queda persistido aunque la cola falle: el envío es best-effort.
	if err := engine.Issue(context.Background(), user, domain.OTPPurposeVerify); err != nil {
		t.Fatalf("expected issue success despite enqueue failure, got %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), "u1")
	if stored.VerifyOTP == "" {
		t.Fatalf("expected otp stored")
	}
}

func TestOTPEngineConsume_Expired(t *testing.T) {
	repo := newMockUserRepo()
	engine := NewOTPEngine(zap.NewNop(), repo, &mockDispatcher{})

	expiredAt := time.Now().UTC().Add(-time.Minute)
	user := domain.User{
		ID:               "u1",
		Email:            "a@x.com",
		ResetOTP:         "123456",
		ResetOTPExpireAt: &expiredAt,
		CreatedAt:        time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	// Vencido falla aunque el código coincida, y el par se limpia al tocarlo.
	if err := engine.Consume(context.Background(), user, domain.OTPPurposeReset, "123456"); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), "u1")
	if stored.ResetOTP != "" || stored.ResetOTPExpireAt != nil {
		t.Fatalf("expected expired otp cleared")
	}
}

func TestOTPEngineConsume_EmptyOrMismatch(t *testing.T) {
	repo := newMockUserRepo()
	engine := NewOTPEngine(zap.NewNop(), repo, &mockDispatcher{})

	user := domain.User{ID: "u1", Email: "a@x.com", CreatedAt: time.Now().UTC()}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := engine.Consume(context.Background(), user, domain.OTPPurposeVerify, "123456"); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid for empty slot, got %v", err)
	}

	future := time.Now().UTC().Add(time.Hour)
	user.VerifyOTP = "123456"
	user.VerifyOTPExpireAt = &future
	_ = repo.SetOTP(context.Background(), "u1", domain.OTPPurposeVerify, "123456", future)

	if err := engine.Consume(context.Background(), user, domain.OTPPurposeVerify, "654321"); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid for mismatch, got %v", err)
	}
}

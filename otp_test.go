package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/appertide/auth"
)

func TestSendVerificationOTP_UnregisteredEmail(t *testing.T) {
	a, sender := newTestAuth(t)

	err := a.SendVerificationOTP("nobody@x.com")
	if !errors.Is(err, auth.ErrEmailNotRegistered) {
		t.Fatalf("err = %v, want ErrEmailNotRegistered", err)
	}

	// nothing may be generated or sent for an unknown email
	if sender.count() != 0 {
		t.Errorf("sent %d emails, want 0", sender.count())
	}
	if _, err := a.Verifications.GetVerification("nobody@x.com"); !errors.Is(err, auth.ErrVerificationNotFound) {
		t.Errorf("verification stored for unknown email: %v", err)
	}
}

func TestSendVerificationOTP_RegisteredEmail(t *testing.T) {
	a, sender := newTestAuth(t)
	signUp(t, a, "a@x.com", "Secret123!", "ann")

	if err := a.SendVerificationOTP("a@x.com"); err != nil {
		t.Fatalf("SendVerificationOTP() error = %v", err)
	}

	verification, err := a.Verifications.GetVerification("a@x.com")
	if err != nil {
		t.Fatalf("no verification stored: %v", err)
	}
	if len(verification.Code) != auth.OTPLength {
		t.Errorf("code length = %d, want %d", len(verification.Code), auth.OTPLength)
	}
	if verification.IsExpired() {
		t.Error("fresh code already expired")
	}

	if sender.count() != 1 {
		t.Fatalf("sent %d emails, want 1", sender.count())
	}
	if got := sender.last(); got.To != "a@x.com" || got.Code != verification.Code {
		t.Errorf("sent = %+v, want stored code to a@x.com", got)
	}
}

func TestSendVerificationOTP_ResendReplacesCode(t *testing.T) {
	a, sender := newTestAuth(t)
	signUp(t, a, "a@x.com", "Secret123!", "ann")

	if err := a.SendVerificationOTP("a@x.com"); err != nil {
		t.Fatal(err)
	}
	first := sender.last().Code

	if err := a.SendVerificationOTP("a@x.com"); err != nil {
		t.Fatal(err)
	}
	second := sender.last().Code
	if second == first {
		t.Skip("resent code collided with the first")
	}

	// the first code must no longer verify
	if err := a.VerifyEmailOTP("a@x.com", first); !errors.Is(err, auth.ErrInvalidOTP) {
		t.Errorf("stale code err = %v, want ErrInvalidOTP", err)
	}
	if err := a.VerifyEmailOTP("a@x.com", second); err != nil {
		t.Errorf("current code rejected: %v", err)
	}
}

func TestVerifyEmailOTP_Success(t *testing.T) {
	a, sender := newTestAuth(t)
	user := signUp(t, a, "a@x.com", "Secret123!", "ann")

	if err := a.SendVerificationOTP("a@x.com"); err != nil {
		t.Fatal(err)
	}

	if err := a.VerifyEmailOTP("a@x.com", sender.last().Code); err != nil {
		t.Fatalf("VerifyEmailOTP() error = %v", err)
	}

	verified, err := a.Users.GetUserByID(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !verified.EmailVerified {
		t.Error("EmailVerified still false after verification")
	}

	// codes are single use
	if err := a.VerifyEmailOTP("a@x.com", sender.last().Code); !errors.Is(err, auth.ErrInvalidOTP) {
		t.Errorf("reused code err = %v, want ErrInvalidOTP", err)
	}
}

func TestVerifyEmailOTP_WrongCode(t *testing.T) {
	a, sender := newTestAuth(t)
	user := signUp(t, a, "a@x.com", "Secret123!", "ann")

	if err := a.SendVerificationOTP("a@x.com"); err != nil {
		t.Fatal(err)
	}

	wrong := "000000"
	if wrong == sender.last().Code {
		wrong = "000001"
	}

	if err := a.VerifyEmailOTP("a@x.com", wrong); !errors.Is(err, auth.ErrInvalidOTP) {
		t.Fatalf("err = %v, want ErrInvalidOTP", err)
	}

	verification, err := a.Verifications.GetVerification("a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if verification.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", verification.Attempts)
	}

	// the right code still works after one failure
	if err := a.VerifyEmailOTP("a@x.com", sender.last().Code); err != nil {
		t.Errorf("correct code rejected after one failure: %v", err)
	}

	u, _ := a.Users.GetUserByID(user.ID)
	if !u.EmailVerified {
		t.Error("EmailVerified still false")
	}
}

func TestVerifyEmailOTP_AttemptLimit(t *testing.T) {
	a, sender := newTestAuth(t)
	signUp(t, a, "a@x.com", "Secret123!", "ann")

	if err := a.SendVerificationOTP("a@x.com"); err != nil {
		t.Fatal(err)
	}
	code := sender.last().Code
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	for i := 0; i < auth.OTPMaxAttempts; i++ {
		if err := a.VerifyEmailOTP("a@x.com", wrong); !errors.Is(err, auth.ErrInvalidOTP) {
			t.Fatalf("attempt %d err = %v, want ErrInvalidOTP", i+1, err)
		}
	}

	// the limit locks out even the correct code, and the row is gone
	if err := a.VerifyEmailOTP("a@x.com", code); !errors.Is(err, auth.ErrTooManyAttempts) {
		t.Fatalf("err = %v, want ErrTooManyAttempts", err)
	}
	if _, err := a.Verifications.GetVerification("a@x.com"); !errors.Is(err, auth.ErrVerificationNotFound) {
		t.Errorf("verification still present after lockout: %v", err)
	}
}

func TestVerifyEmailOTP_Expired(t *testing.T) {
	a, _ := newTestAuth(t)
	signUp(t, a, "a@x.com", "Secret123!", "ann")

	if _, err := a.Verifications.CreateVerification("a@x.com", "123456", -time.Minute); err != nil {
		t.Fatal(err)
	}

	if err := a.VerifyEmailOTP("a@x.com", "123456"); !errors.Is(err, auth.ErrExpiredOTP) {
		t.Fatalf("err = %v, want ErrExpiredOTP", err)
	}
	// the expired row is cleaned up
	if _, err := a.Verifications.GetVerification("a@x.com"); !errors.Is(err, auth.ErrVerificationNotFound) {
		t.Errorf("expired verification still present: %v", err)
	}
}

func TestVerifyEmailOTP_NoPendingCode(t *testing.T) {
	a, _ := newTestAuth(t)
	signUp(t, a, "a@x.com", "Secret123!", "ann")

	if err := a.VerifyEmailOTP("a@x.com", "123456"); !errors.Is(err, auth.ErrInvalidOTP) {
		t.Errorf("err = %v, want ErrInvalidOTP", err)
	}
}

func TestSignInRequiresVerifiedEmail(t *testing.T) {
	a, sender := newTestAuth(t)
	a.RequireEmailVerification = true
	signUp(t, a, "a@x.com", "Secret123!", "ann")

	if _, err := a.SignInWithEmail("a@x.com", "Secret123!"); !errors.Is(err, auth.ErrEmailNotVerified) {
		t.Fatalf("err = %v, want ErrEmailNotVerified", err)
	}

	if err := a.SendVerificationOTP("a@x.com"); err != nil {
		t.Fatal(err)
	}
	if err := a.VerifyEmailOTP("a@x.com", sender.last().Code); err != nil {
		t.Fatal(err)
	}

	if _, err := a.SignInWithEmail("a@x.com", "Secret123!"); err != nil {
		t.Errorf("sign-in after verification failed: %v", err)
	}
}

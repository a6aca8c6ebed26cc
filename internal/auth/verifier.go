// Package auth is the credential verifier: it owns password hashing and the
// one-time-passcode flow for password resets. The rest of the system never
// sees plaintext secrets.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"expenseflow/internal/core"
	"expenseflow/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidOTP         = errors.New("invalid or expired passcode")
)

const otpTTL = 5 * time.Minute

// Verifier checks and manages user credentials.
type Verifier interface {
	Register(ctx context.Context, email, password string) error
	Verify(ctx context.Context, email, password string) (*core.User, error)
	ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error
	IssueOTP(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
}

// BcryptVerifier implements Verifier over the user store with bcrypt hashes.
// Issued passcodes live in memory; they are short-lived and per-process.
type BcryptVerifier struct {
	store *storage.SQLiteRepository

	mu   sync.Mutex
	otps map[string]issuedOTP
}

type issuedOTP struct {
	code      string
	expiresAt time.Time
}

func NewBcryptVerifier(store *storage.SQLiteRepository) *BcryptVerifier {
	return &BcryptVerifier{
		store: store,
		otps:  make(map[string]issuedOTP),
	}
}

// Register creates a new user with a hashed credential.
func (v *BcryptVerifier) Register(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := v.store.CreateUser(ctx, email, string(hash)); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Verify returns the user record when the password matches its stored hash.
// Unknown email and wrong password are indistinguishable to the caller.
func (v *BcryptVerifier) Verify(ctx context.Context, email, password string) (*core.User, error) {
	user, err := v.store.GetUser(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword verifies the old credential before storing a new hash.
func (v *BcryptVerifier) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if _, err := v.Verify(ctx, email, oldPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := v.store.UpdatePassword(ctx, email, string(hash)); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	slog.InfoContext(ctx, "Password changed", "email", email)
	return nil
}

// IssueOTP generates a six-digit passcode for a known user, valid for five
// minutes. Re-issuing replaces any previous code for that email.
func (v *BcryptVerifier) IssueOTP(ctx context.Context, email string) (string, error) {
	if _, err := v.store.GetUser(ctx, email); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("load user: %w", err)
	}

	code, err := generateOTP()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	v.mu.Lock()
	v.otps[email] = issuedOTP{code: code, expiresAt: time.Now().Add(otpTTL)}
	v.mu.Unlock()

	slog.InfoContext(ctx, "OTP issued", "email", email)
	return code, nil
}

// ResetPassword consumes a valid passcode and stores the new credential.
func (v *BcryptVerifier) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	v.mu.Lock()
	issued, ok := v.otps[email]
	if ok {
		delete(v.otps, email) // single use, even on failure below
	}
	v.mu.Unlock()

	if !ok || issued.code != otp || time.Now().After(issued.expiresAt) {
		return ErrInvalidOTP
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := v.store.UpdatePassword(ctx, email, string(hash)); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	slog.InfoContext(ctx, "Password reset via OTP", "email", email)
	return nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

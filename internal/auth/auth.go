// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth supplies the current-user identity for the hanu client.
//
// Credentials live in the shared document store. Passwords are never
// stored; a PBKDF2-SHA256 hash with a per-user random salt is kept
// instead. Admin accounts can additionally be gated behind a TOTP second
// factor. Everything above this package consumes only "current user id,
// or absence thereof".
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// KeySize is the PBKDF2 output length in bytes.
	KeySize = 32

	// SaltSize is the per-user salt length in bytes.
	SaltSize = 32

	// PBKDF2Iterations is the PBKDF2 work factor.
	PBKDF2Iterations = 600000

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8
)

// Error variables for authentication failures.
var (
	// ErrInvalidCredentials indicates an unknown email or wrong password.
	// Deliberately indistinguishable between the two.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserExists indicates the email is already registered.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound indicates no account exists for the email.
	ErrUserNotFound = errors.New("user not found")

	// ErrWeakPassword indicates the password is below MinPasswordLength.
	ErrWeakPassword = errors.New("password too short")

	// ErrTOTPRequired indicates sign-in needs a TOTP code to complete.
	ErrTOTPRequired = errors.New("totp code required")

	// ErrTOTPInvalid indicates the supplied TOTP code did not verify.
	ErrTOTPInvalid = errors.New("invalid totp code")
)

// User is an authenticated account.
type User struct {
	ID    string
	Email string
}

// =============================================================================
// CREDENTIAL STORE
// =============================================================================

type userRecord struct {
	id         string
	email      string
	salt       []byte
	passHash   []byte
	totpSecret string
}

// Authenticator verifies credentials and tracks the signed-in user.
type Authenticator struct {
	db *sql.DB

	// requireTOTP gates accounts that have a TOTP secret enrolled.
	requireTOTP bool

	mu      sync.Mutex
	current *User
}

// New creates an Authenticator over the shared document database.
func New(db *sql.DB, requireTOTP bool) *Authenticator {
	return &Authenticator{db: db, requireTOTP: requireTOTP}
}

// CurrentUser returns the signed-in user, or nil when nobody is.
func (a *Authenticator) CurrentUser() *User {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil
	}
	u := *a.current
	return &u
}

// CurrentUserID returns the signed-in user's id, or "".
func (a *Authenticator) CurrentUserID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return ""
	}
	return a.current.ID
}

// =============================================================================
// SIGN UP / SIGN IN / SIGN OUT
// =============================================================================

// SignUp registers a new account and signs it in.
func (a *Authenticator) SignUp(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	u := User{ID: uuid.NewString(), Email: email}
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO users (id, email, salt, pass_hash, created_at)
		 VALUES (?, ?, ?, ?, datetime('now'))`,
		u.ID, u.Email, salt, hashPassword(password, salt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	a.setCurrent(&u)
	return &u, nil
}

// SignIn verifies email/password. Accounts with an enrolled TOTP secret
// (when the TOTP gate is on) must additionally pass a code to
// VerifyTOTP; until then ErrTOTPRequired is returned and nobody is
// signed in.
func (a *Authenticator) SignIn(ctx context.Context, email, password string) (*User, error) {
	rec, err := a.lookup(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	candidate := hashPassword(password, rec.salt)
	if subtle.ConstantTimeCompare(candidate, rec.passHash) != 1 {
		return nil, ErrInvalidCredentials
	}

	u := User{ID: rec.id, Email: rec.email}
	if a.requireTOTP && rec.totpSecret != "" {
		return &u, ErrTOTPRequired
	}

	a.setCurrent(&u)
	return &u, nil
}

// VerifyTOTP completes a TOTP-gated sign-in.
func (a *Authenticator) VerifyTOTP(ctx context.Context, email, code string) (*User, error) {
	rec, err := a.lookup(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if rec.totpSecret == "" || !totp.Validate(code, rec.totpSecret) {
		return nil, ErrTOTPInvalid
	}

	u := User{ID: rec.id, Email: rec.email}
	a.setCurrent(&u)
	return &u, nil
}

// EnrollTOTP stores a TOTP secret for the account and returns it for
// QR/manual enrollment in a second-factor app.
func (a *Authenticator) EnrollTOTP(ctx context.Context, email string) (string, error) {
	rec, err := a.lookup(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "hanu",
		AccountName: rec.email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate totp secret: %w", err)
	}

	_, err = a.db.ExecContext(ctx,
		`UPDATE users SET totp_secret = ? WHERE id = ?`, key.Secret(), rec.id)
	if err != nil {
		return "", fmt.Errorf("failed to store totp secret: %w", err)
	}
	return key.Secret(), nil
}

// SignOut clears the current user.
func (a *Authenticator) SignOut() {
	a.setCurrent(nil)
}

// ResetPassword re-hashes the account under a new password and a fresh
// salt. Any signed-in state is untouched.
func (a *Authenticator) ResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}
	rec, err := a.lookup(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	_, err = a.db.ExecContext(ctx,
		`UPDATE users SET salt = ?, pass_hash = ? WHERE id = ?`,
		salt, hashPassword(newPassword, salt), rec.id)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

// =============================================================================
// INTERNALS
// =============================================================================

func (a *Authenticator) setCurrent(u *User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = u
}

func (a *Authenticator) lookup(ctx context.Context, email string) (*userRecord, error) {
	var rec userRecord
	err := a.db.QueryRowContext(ctx,
		`SELECT id, email, salt, pass_hash, totp_secret FROM users WHERE email = ?`,
		email).Scan(&rec.id, &rec.email, &rec.salt, &rec.passHash, &rec.totpSecret)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &rec, nil
}

// hashPassword derives a fixed-size key from the password and salt.
func hashPassword(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, KeySize, sha256.New)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

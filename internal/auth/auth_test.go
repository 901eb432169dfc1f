// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanuai/hanu-tui/internal/store"
)

func newAuthenticator(t *testing.T, requireTOTP bool) *Authenticator {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "hanu.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s.DB(), requireTOTP)
}

func TestSignUpAndSignIn(t *testing.T) {
	a := newAuthenticator(t, false)
	ctx := context.Background()

	u, err := a.SignUp(ctx, "User@Example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", u.Email)
	assert.Equal(t, u.ID, a.CurrentUserID())

	a.SignOut()
	assert.Empty(t, a.CurrentUserID())

	// Case-insensitive email match on sign-in.
	signed, err := a.SignIn(ctx, "user@EXAMPLE.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, signed.ID)
	assert.Equal(t, u.ID, a.CurrentUserID())
}

func TestSignIn_WrongPassword(t *testing.T) {
	a := newAuthenticator(t, false)
	ctx := context.Background()

	_, err := a.SignUp(ctx, "u@example.com", "correct horse")
	require.NoError(t, err)
	a.SignOut()

	_, err = a.SignIn(ctx, "u@example.com", "wrong horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, a.CurrentUserID(), "failed sign-in must not set a user")

	// Unknown email reports the same error as a wrong password.
	_, err = a.SignIn(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUp_Validation(t *testing.T) {
	a := newAuthenticator(t, false)
	ctx := context.Background()

	_, err := a.SignUp(ctx, "u@example.com", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = a.SignUp(ctx, "u@example.com", "long enough")
	require.NoError(t, err)
	_, err = a.SignUp(ctx, "u@example.com", "long enough")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestResetPassword(t *testing.T) {
	a := newAuthenticator(t, false)
	ctx := context.Background()

	_, err := a.SignUp(ctx, "u@example.com", "old password")
	require.NoError(t, err)
	a.SignOut()

	require.NoError(t, a.ResetPassword(ctx, "u@example.com", "new password"))

	_, err = a.SignIn(ctx, "u@example.com", "old password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.SignIn(ctx, "u@example.com", "new password")
	assert.NoError(t, err)
}

func TestTOTPGate(t *testing.T) {
	a := newAuthenticator(t, true)
	ctx := context.Background()

	_, err := a.SignUp(ctx, "admin@example.com", "admin password")
	require.NoError(t, err)
	a.SignOut()

	secret, err := a.EnrollTOTP(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, secret)

	// Password alone no longer completes sign-in.
	_, err = a.SignIn(ctx, "admin@example.com", "admin password")
	assert.ErrorIs(t, err, ErrTOTPRequired)
	assert.Empty(t, a.CurrentUserID())

	_, err = a.VerifyTOTP(ctx, "admin@example.com", "000000")
	assert.ErrorIs(t, err, ErrTOTPInvalid)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	u, err := a.VerifyTOTP(ctx, "admin@example.com", code)
	require.NoError(t, err)
	assert.Equal(t, u.ID, a.CurrentUserID())
}

func TestHashPassword_SaltMatters(t *testing.T) {
	h1 := hashPassword("password123", []byte("salt-one-salt-one-salt-one-salt!"))
	h2 := hashPassword("password123", []byte("salt-two-salt-two-salt-two-salt!"))
	assert.NotEqual(t, h1, h2)
	assert.Len(t, h1, KeySize)
}

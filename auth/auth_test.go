package auth

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kokexgggguu/haxball/errors"
	"github.com/kokexgggguu/haxball/store"
)

func TestHashAndComparePassword(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("Sup3rSecret!")
	req.NoError(err)
	req.Contains(hash, "$argon2id$")

	match, err := ComparePassword("Sup3rSecret!", hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("wrong", hash)
	req.NoError(err)
	req.False(match)

	_, err = ComparePassword("whatever", "not-a-hash")
	req.Error(err)
}

func TestTokens_RoundTrip(t *testing.T) {
	req := require.New(t)
	tokens := NewTokens("test-secret", time.Hour)

	signed, err := tokens.Generate("user-1", "alice")
	req.NoError(err)

	claims, err := tokens.Validate(signed)
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
	req.Equal("alice", claims.Username)
	req.Equal(issuer, claims.Issuer)
}

func TestTokens_RejectsTampering(t *testing.T) {
	req := require.New(t)

	signed, err := NewTokens("secret-a", time.Hour).Generate("user-1", "alice")
	req.NoError(err)

	_, err = NewTokens("secret-b", time.Hour).Validate(signed)
	req.Error(err)
}

func TestTokens_RejectsExpired(t *testing.T) {
	req := require.New(t)
	tokens := NewTokens("test-secret", -time.Minute)

	signed, err := tokens.Generate("user-1", "alice")
	req.NoError(err)

	_, err = tokens.Validate(signed)
	req.Error(err)
}

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{name: "valid", username: "alice", password: "Str0ngPass", wantErr: false},
		{name: "username too short", username: "al", password: "Str0ngPass", wantErr: true},
		{name: "username not alphanumeric", username: "al ice", password: "Str0ngPass", wantErr: true},
		{name: "password too short", username: "alice", password: "S0rt", wantErr: true},
		{name: "password without digits", username: "alice", password: "OnlyLetters", wantErr: true},
		{name: "password without upper", username: "alice", password: "onlylower123", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(RegisterRequest{Username: tt.username, Password: tt.password})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func newAuthService(t *testing.T) (*Service, *store.MemStore) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemStore()
	return NewService(log, st, NewTokens("test-secret", time.Hour)), st
}

func TestService_RegisterAndLogin(t *testing.T) {
	req := require.New(t)
	svc, _ := newAuthService(t)

	// Given a registered account
	user, err := svc.Register("alice", "Str0ngPass")
	req.NoError(err)
	req.Equal("alice", user.Username)

	// When logging in with the right password
	token, err := svc.Login("alice", "Str0ngPass")
	req.NoError(err)

	claims, err := svc.Verify(token)
	req.NoError(err)
	req.Equal(user.ID, claims.UserID)
}

func TestService_LoginFailures(t *testing.T) {
	req := require.New(t)
	svc, _ := newAuthService(t)
	_, err := svc.Register("alice", "Str0ngPass")
	req.NoError(err)

	// Wrong password and unknown user look identical
	_, err = svc.Login("alice", "WrongPass1")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
	_, err = svc.Login("nobody", "Str0ngPass")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}

func TestService_DuplicateRegistration(t *testing.T) {
	req := require.New(t)
	svc, _ := newAuthService(t)

	_, err := svc.Register("alice", "Str0ngPass")
	req.NoError(err)
	_, err = svc.Register("ALICE", "Str0ngPass")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestService_VerifyRejectsGarbage(t *testing.T) {
	req := require.New(t)
	svc, _ := newAuthService(t)

	_, err := svc.Verify("not.a.token")
	req.ErrorIs(err, errors.ErrInvalidToken)
}

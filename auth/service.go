package auth

import (
	"fmt"
	"log/slog"

	"github.com/kokexgggguu/haxball/contract"
	"github.com/kokexgggguu/haxball/domain"
	"github.com/kokexgggguu/haxball/errors"
)

// Service ties registration and login to the user store.
type Service struct {
	log    *slog.Logger
	store  contract.Store
	tokens *Tokens
}

func NewService(log *slog.Logger, store contract.Store, tokens *Tokens) *Service {
	return &Service{
		log:    log.With(slog.String("component", "auth")),
		store:  store,
		tokens: tokens,
	}
}

// Register validates and creates a dashboard account.
func (s *Service) Register(username, password string) (domain.User, error) {
	if err := ValidateRegister(RegisterRequest{Username: username, Password: password}); err != nil {
		return domain.User{}, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing password: %w", err)
	}
	user, err := s.store.CreateUser(username, hash)
	if err != nil {
		return domain.User{}, err
	}
	s.log.Info("account registered", slog.String("username", username))
	return user, nil
}

// Login verifies credentials and returns a signed bearer token. Unknown
// user and wrong password are indistinguishable to the caller.
func (s *Service) Login(username, password string) (string, error) {
	user, ok := s.store.GetUserByUsername(username)
	if !ok {
		return "", errors.ErrInvalidCredentials
	}
	match, err := ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		s.log.Error("token generation failed", slog.Any("error", err))
		return "", errors.ErrTokenGeneration
	}
	return token, nil
}

// Verify checks a bearer token and returns its claims.
func (s *Service) Verify(token string) (*Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}

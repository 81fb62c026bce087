package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"vidlink/api/internal/identity"
	"vidlink/api/internal/models"
	"vidlink/api/internal/repository"
	"vidlink/api/internal/security"
)

// AuthService delegates signup and login to the external identity
// provider and keeps a local user row for quota accounting.
type AuthService struct {
	users    UserStore
	provider identity.Provider
	log      zerolog.Logger
}

func NewAuthService(users UserStore, provider identity.Provider, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		provider: provider,
		log:      log,
	}
}

// Signup registers the account with the identity provider and persists
// the matching local user row.
func (s *AuthService) Signup(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return models.User{}, ErrMissingFields
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailRegistered
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	ident, err := s.provider.CreateUser(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           ident.ID,
		Username:     usernameFromEmail(email),
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user signed up")
	return user, nil
}

// Login verifies the id token with the identity provider and resolves
// the local user row.
func (s *AuthService) Login(ctx context.Context, token string) (models.User, error) {
	ident, err := s.provider.VerifyToken(ctx, token)
	if err != nil {
		return models.User{}, err
	}
	return s.ResolveIdentity(ctx, ident)
}

// ResolveIdentity maps a verified identity to its local user row,
// provisioning one for accounts that predate this service.
func (s *AuthService) ResolveIdentity(ctx context.Context, ident identity.Identity) (models.User, error) {
	user, err := s.users.GetByID(ctx, ident.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	user = models.User{
		ID:       ident.ID,
		Username: usernameFromEmail(ident.Email),
		Email:    ident.Email,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("provision user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user provisioned from identity")
	return user, nil
}

func usernameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

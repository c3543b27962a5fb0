package admins

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/regisync/regisync/internal/server/auth"
	"github.com/regisync/regisync/internal/server/config"
	"github.com/regisync/regisync/internal/shared"
)

type Service struct {
	repo                        Repository
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewService(repo Repository, cfg *config.Config) *Service {
	return &Service{
		repo:                        repo,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Create registers a new admin account with a bcrypt-hashed password.
// Returns shared.ErrAlreadyExists when the username is taken.
func (s *Service) Create(ctx context.Context, username, password, role string) (*Admin, error) {

	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrValidation)
	}
	if role == "" {
		role = RoleAdmin
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("error checking admin existence: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	admin := &Admin{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}

	admin, err = s.repo.Create(ctx, admin)
	if err != nil {
		return nil, fmt.Errorf("error creating admin: %w", err)
	}

	return admin, nil
}

// Authenticate verifies credentials and returns the matching admin.
// Unknown usernames and bad passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Admin, error) {

	admin, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, fmt.Errorf("error loading admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrUnauthorized
	}

	return admin, nil
}

// Login authenticates and mints an access token for the admin API.
func (s *Service) Login(ctx context.Context, username, password string) (string, *Admin, error) {

	admin, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	token, err := auth.GenerateToken(admin.ID, admin.Role, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", nil, fmt.Errorf("error generating token: %w", err)
	}

	return token, admin, nil
}

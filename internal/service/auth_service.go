package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/phone_shop/internal/hash"
	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/models"
	"github.com/Skotchmaster/phone_shop/internal/mykafka"
	"github.com/Skotchmaster/phone_shop/internal/repo"
)

type AuthService struct {
	Users  *repo.UserRepo
	Tokens *TokenService
	Events mykafka.Publisher
}

type AuthResult struct {
	User *models.User `json:"user"`
	Pair
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	passwordHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(name),
		Role:         models.RoleUser,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, invalidCause("Email already registered", err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.Tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, user.ID.String(), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &AuthResult{User: user, Pair: pair}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, unauthorized("Invalid email or password", err)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, unauthorized("Invalid email or password", nil)
	}

	pair, err := s.Tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, user.ID.String(), map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
	})
	return &AuthResult{User: user, Pair: pair}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (Pair, error) {
	if refreshToken == "" {
		return Pair{}, invalid("Refresh token required")
	}
	pair, err := s.Tokens.Rotate(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return Pair{}, unauthorized("Invalid or expired refresh token", err)
		}
		return Pair{}, err
	}
	return pair, nil
}

// Logout forgets refreshToken. An empty or unknown token still succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Tokens.Revoke(ctx, refreshToken)
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, notFound("User not found")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	existing, err := s.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.Role.IsAdmin() {
			logging.FromContext(ctx).Warn("admin_seed_skipped",
				"reason", "email belongs to a non-admin account",
				"email", email,
			)
		}
		return false, nil
	case !repo.IsNotFound(err):
		return false, fmt.Errorf("load admin: %w", err)
	}

	passwordHash, err := hash.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	admin := &models.User{Email: email, PasswordHash: passwordHash, Name: name, Role: models.RoleAdmin}
	if err := s.Users.Create(ctx, admin); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}

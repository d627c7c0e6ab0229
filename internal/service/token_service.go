package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/phone_shop/internal/hash"
	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/metrics"
	"github.com/Skotchmaster/phone_shop/internal/models"
	"github.com/Skotchmaster/phone_shop/internal/repo"
	"github.com/Skotchmaster/phone_shop/internal/tokens"
)

type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenService struct {
	Repo          *repo.TokenRepo
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Metrics       *metrics.Metrics
	Now           func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// mint signs a pair for user and returns the refresh row to persist.
func (s *TokenService) mint(user *models.User, now time.Time) (Pair, *models.RefreshToken, error) {
	id := tokens.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}

	access, err := tokens.NewAccessToken(id, s.AccessSecret, now, now.Add(s.AccessTTL))
	if err != nil {
		return Pair{}, nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := tokens.NewRefreshToken(id, s.RefreshSecret, now, now.Add(s.RefreshTTL))
	if err != nil {
		return Pair{}, nil, fmt.Errorf("sign refresh token: %w", err)
	}

	row := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hash.Sha256Hex(refresh),
		ExpiresAt: now.Add(s.RefreshTTL),
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, row, nil
}

// Issue mints a pair for user and stores exactly one refresh row.
func (s *TokenService) Issue(ctx context.Context, user *models.User) (Pair, error) {
	pair, row, err := s.mint(user, s.now())
	if err != nil {
		return Pair{}, err
	}
	if err := s.Repo.Store(ctx, row); err != nil {
		return Pair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return pair, nil
}

func (s *TokenService) VerifyAccess(token string) (tokens.Identity, error) {
	claims, err := tokens.AccessClaimsFromToken(token, s.AccessSecret)
	if err != nil {
		return tokens.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	id, err := claims.Identity()
	if err != nil {
		return tokens.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return id, nil
}

// Rotate consumes refresh and returns a new pair minted from the current user
// record. A token can be rotated at most once.
func (s *TokenService) Rotate(ctx context.Context, refresh string) (Pair, error) {
	if _, err := tokens.RefreshClaimsFromToken(refresh, s.RefreshSecret); err != nil {
		s.Metrics.TokenRotation("rejected")
		return Pair{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	now := s.now()
	var pair Pair
	_, err := s.Repo.RotateRefreshToken(ctx, hash.Sha256Hex(refresh), now, func(u *models.User) (*models.RefreshToken, error) {
		p, row, err := s.mint(u, now)
		if err != nil {
			return nil, err
		}
		pair = p
		return row, nil
	})
	if err != nil {
		s.Metrics.TokenRotation("rejected")
		if errors.Is(err, repo.ErrRefreshNotFound) {
			return Pair{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
		return Pair{}, err
	}

	s.Metrics.TokenRotation("success")
	return pair, nil
}

// Revoke deletes the stored refresh token. Unknown tokens are ignored.
func (s *TokenService) Revoke(ctx context.Context, refresh string) error {
	if _, err := s.Repo.DeleteByHash(ctx, hash.Sha256Hex(refresh)); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.Repo.DeleteExpired(ctx, s.now())
}

// RunJanitor purges expired refresh tokens every interval until ctx ends.
func (s *TokenService) RunJanitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.PurgeExpired(ctx)
			l := logging.FromContext(ctx)
			if err != nil {
				l.Error("token_purge_error", "error", err)
				continue
			}
			l.Info("token_purge_success", "deleted", n)
		}
	}
}

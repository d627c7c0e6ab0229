package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/phone_shop/internal/models"
	"github.com/Skotchmaster/phone_shop/internal/repo"
)

type UserService struct {
	Users *repo.UserRepo
}

func (s *UserService) List(ctx context.Context, role models.Role, offset, limit int) (int64, []models.User, error) {
	if role != "" && !role.Valid() {
		return 0, nil, invalid("Invalid role")
	}
	return s.Users.List(ctx, repo.UserFilter{Role: role, Offset: offset, Limit: limit})
}

// Delete removes a user account. Admins cannot remove their own account.
func (s *UserService) Delete(ctx context.Context, actor, id uuid.UUID) error {
	if actor == id {
		return invalid("Cannot delete yourself")
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return notFound("User not found")
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

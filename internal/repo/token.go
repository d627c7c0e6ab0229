package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/phone_shop/internal/models"
)

type TokenRepo struct {
	DB *gorm.DB
}

func (r *TokenRepo) Store(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

// RotateRefreshToken consumes the live row with oldHash and stores the row
// built by next for the token's owner, all in one transaction. A missing,
// expired or concurrently consumed row gives ErrRefreshNotFound.
func (r *TokenRepo) RotateRefreshToken(
	ctx context.Context,
	oldHash string,
	now time.Time,
	next func(user *models.User) (*models.RefreshToken, error),
) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old models.RefreshToken
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token_hash = ? AND expires_at > ?", oldHash, now).
			First(&old).Error; err != nil {
			if IsNotFound(err) {
				return ErrRefreshNotFound
			}
			return err
		}

		res := tx.Where("id = ?", old.ID).Delete(&models.RefreshToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRefreshNotFound
		}

		if err := tx.Where("id = ?", old.UserID).First(&user).Error; err != nil {
			if IsNotFound(err) {
				return ErrRefreshNotFound
			}
			return err
		}

		row, err := next(&user)
		if err != nil {
			return err
		}
		return tx.Create(row).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *TokenRepo) DeleteByHash(ctx context.Context, hash string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("token_hash = ?", hash).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

func (r *TokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

func (r *TokenRepo) CountForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

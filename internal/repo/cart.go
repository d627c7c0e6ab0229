package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/phone_shop/internal/models"
)

type CartRepo struct {
	DB *gorm.DB
}

func (r *CartRepo) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart merges quantity into the user's single row for the product with an
// upsert on (user_id, product_id). The product row is locked so the merged
// quantity is checked against stock without racing another add.
func (r *CartRepo) AddToCart(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_active = ?", item.ProductID, true).
			First(&product).Error; err != nil {
			return err
		}

		var current models.CartItem
		inCart := 0
		err := tx.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(&current).Error
		switch {
		case err == nil:
			inCart = current.Quantity
		case !IsNotFound(err):
			return err
		}
		if inCart+item.Quantity > product.Stock {
			return ErrNotEnoughStock
		}

		err = tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).Create(item).Error
		if err != nil {
			return err
		}

		var merged models.CartItem
		if err := tx.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(&merged).Error; err != nil {
			return err
		}
		*item = merged
		return nil
	})
}

func (r *CartRepo) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", itemID, userID).
			First(&item).Error; err != nil {
			return err
		}

		var product models.Product
		if err := tx.Where("id = ?", item.ProductID).First(&product).Error; err != nil {
			return err
		}
		if quantity > product.Stock {
			return ErrNotEnoughStock
		}

		if err := tx.Model(&item).Update("quantity", quantity).Error; err != nil {
			return err
		}
		item.Quantity = quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartRepo) DeleteFromCart(ctx context.Context, userID, itemID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CartRepo) DeleteAllFromCart(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

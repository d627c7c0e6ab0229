package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/phone_shop/internal/models"
)

type CategoryRepo struct {
	DB *gorm.DB
}

type CategoryWithCount struct {
	models.Category
	ProductCount int64 `json:"product_count"`
}

func (r *CategoryRepo) List(ctx context.Context) ([]CategoryWithCount, error) {
	out := make([]CategoryWithCount, 0)
	err := r.DB.WithContext(ctx).
		Model(&models.Category{}).
		Select("categories.*, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id AND products.is_active = ?", true).
		Group("categories.id").
		Order("categories.name ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) SlugExists(ctx context.Context, slug string, exceptID uuid.UUID) (bool, error) {
	var n int64
	q := r.DB.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug)
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *CategoryRepo) Update(ctx context.Context, id uuid.UUID, u *CategoryUpdate) (*models.Category, error) {
	if u.Empty() {
		return nil, ErrNothingToUpdate
	}
	res := r.DB.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(u.set.values())
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a category; its products stay in the catalog uncategorised.
func (r *CategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Category{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

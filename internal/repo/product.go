package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/phone_shop/internal/models"
)

type ProductRepo struct {
	DB *gorm.DB
}

type ProductFilter struct {
	ActiveOnly   bool
	CategorySlug string
	Search       string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	SortBy       string
	SortDesc     bool
	Offset       int
	Limit        int
}

var productSortColumns = map[string]string{
	"created_at": "created_at",
	"price":      "price",
	"name":       "name",
	"stock":      "stock",
}

// ProductSortColumn reports whether sortBy is allowed and the column it maps to.
func ProductSortColumn(sortBy string) (string, bool) {
	col, ok := productSortColumns[sortBy]
	return col, ok
}

func (f ProductFilter) apply(q *gorm.DB) *gorm.DB {
	if f.ActiveOnly {
		q = q.Where("products.is_active = ?", true)
	}
	if f.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", f.CategorySlug)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where("(LOWER(products.name) LIKE ? ESCAPE '\\' OR LOWER(products.description) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	if f.MinPrice != nil {
		q = q.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.price <= ?", *f.MaxPrice)
	}
	return q
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (r *ProductRepo) List(ctx context.Context, f ProductFilter) (int64, []models.Product, error) {
	var total int64
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.Product{})).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	col, ok := ProductSortColumn(f.SortBy)
	if !ok {
		col = "created_at"
	}

	items := make([]models.Product, 0, f.Limit)
	err := f.apply(r.DB.WithContext(ctx).Model(&models.Product{})).
		Preload("Category").
		Order(clause.OrderByColumn{Column: clause.Column{Table: "products", Name: col}, Desc: f.SortDesc}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "products", Name: "id"}}).
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&items).Error
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) GetBySlug(ctx context.Context, slug string, activeOnly bool) (*models.Product, error) {
	q := r.DB.WithContext(ctx).Preload("Category").Where("slug = ?", slug)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var p models.Product
	if err := q.First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByIDs returns active products in the order of ids, skipping unknown ones.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var found []models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProductRepo) SlugExists(ctx context.Context, slug string, exceptID uuid.UUID) (bool, error) {
	var n int64
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts p. An inactive product is written in the same transaction:
// gorm leaves a false is_active out of the INSERT because the column has a
// default, so it is set by a follow-up update before commit.
func (r *ProductRepo) Create(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
		if p.IsActive {
			return nil
		}
		return tx.Model(&models.Product{}).Where("id = ?", p.ID).UpdateColumn("is_active", false).Error
	})
}

func (r *ProductRepo) Update(ctx context.Context, id uuid.UUID, u *ProductUpdate) (*models.Product, error) {
	if err := u.Err(); err != nil {
		return nil, err
	}
	if u.Empty() {
		return nil, ErrNothingToUpdate
	}

	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(u.set.values())
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a product. Order lines keep their snapshot with a NULL
// product reference; cart lines for the product are dropped.
func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Update("product_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *ProductRepo) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).Where("stock < ?", threshold).Count(&n).Error
	return n, err
}

func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}

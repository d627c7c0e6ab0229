package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/phone_shop/internal/models"
	"github.com/Skotchmaster/phone_shop/internal/util"
)

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", Name: "Test User", Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     name,
		Slug:     util.Slugify(name),
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
		Images:   []string{},
	}
	require.NoError(t, db.Omit("Category").Create(p).Error)
	return p
}

func seedCart(t *testing.T, db *gorm.DB, userID uuid.UUID, p *models.Product, qty int) {
	t.Helper()
	require.NoError(t, db.Omit("Product").Create(&models.CartItem{UserID: userID, ProductID: p.ID, Quantity: qty}).Error)
}

func stockOf(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return p.Stock
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

var bg = context.Background()

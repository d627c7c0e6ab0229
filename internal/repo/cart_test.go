package repo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/phone_shop/internal/dbtest"
	"github.com/Skotchmaster/phone_shop/internal/models"
)

func TestCartRepo_AddToCart_MergesIntoOneRow(t *testing.T) {
	t.Parallel()

	db := dbtest.New(t)
	r := &CartRepo{DB: db}
	u := seedUser(t, db, "cart@example.com", models.RoleUser)
	p := seedProduct(t, db, "Pixel 9", "100", 10)

	first := &models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 3}
	require.NoError(t, r.AddToCart(bg, first))

	second := &models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 2}
	require.NoError(t, r.AddToCart(bg, second))
	assert.Equal(t, 5, second.Quantity)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1), count(t, db, &models.CartItem{}))

	third := &models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 5}
	require.NoError(t, r.AddToCart(bg, third))
	assert.Equal(t, 10, third.Quantity)
	assert.Equal(t, first.ID, third.ID)
	assert.False(t, third.UpdatedAt.Before(first.UpdatedAt))

	items, err := r.GetCart(bg, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 10, items[0].Quantity)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Pixel 9", items[0].Product.Name)
}

func TestCartRepo_AddToCart_StockAndAvailability(t *testing.T) {
	t.Parallel()

	db := dbtest.New(t)
	r := &CartRepo{DB: db}
	u := seedUser(t, db, "cart@example.com", models.RoleUser)
	p := seedProduct(t, db, "Galaxy S24", "900", 4)

	require.NoError(t, r.AddToCart(bg, &models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 3}))

	err := r.AddToCart(bg, &models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 2})
	assert.ErrorIs(t, err, ErrNotEnoughStock)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).Update("is_active", false).Error)
	err = r.AddToCart(bg, &models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 1})
	assert.True(t, IsNotFound(err))

	err = r.AddToCart(bg, &models.CartItem{UserID: u.ID, ProductID: uuid.New(), Quantity: 1})
	assert.True(t, IsNotFound(err))

	items, err := r.GetCart(bg, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestCartRepo_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	db := dbtest.New(t)
	r := &CartRepo{DB: db}
	owner := seedUser(t, db, "owner@example.com", models.RoleUser)
	other := seedUser(t, db, "other@example.com", models.RoleUser)
	p := seedProduct(t, db, "iPhone 16", "1200", 5)

	item := &models.CartItem{UserID: owner.ID, ProductID: p.ID, Quantity: 1}
	require.NoError(t, r.AddToCart(bg, item))

	updated, err := r.UpdateQuantity(bg, owner.ID, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = r.UpdateQuantity(bg, owner.ID, item.ID, 6)
	assert.ErrorIs(t, err, ErrNotEnoughStock)

	_, err = r.UpdateQuantity(bg, other.ID, item.ID, 1)
	assert.True(t, IsNotFound(err))

	assert.True(t, IsNotFound(r.DeleteFromCart(bg, other.ID, item.ID)))
	require.NoError(t, r.DeleteFromCart(bg, owner.ID, item.ID))
	assert.Zero(t, count(t, db, &models.CartItem{}))
}

func TestCartRepo_DeleteAllFromCart(t *testing.T) {
	t.Parallel()

	db := dbtest.New(t)
	r := &CartRepo{DB: db}
	u := seedUser(t, db, "clear@example.com", models.RoleUser)
	other := seedUser(t, db, "keep@example.com", models.RoleUser)
	a := seedProduct(t, db, "A", "1", 10)
	b := seedProduct(t, db, "B", "1", 10)
	seedCart(t, db, u.ID, a, 1)
	seedCart(t, db, u.ID, b, 1)
	seedCart(t, db, other.ID, a, 1)

	require.NoError(t, r.DeleteAllFromCart(bg, u.ID))

	items, err := r.GetCart(bg, u.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(1), count(t, db, &models.CartItem{}))
}

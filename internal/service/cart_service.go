package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/phone_shop/internal/models"
	"github.com/Skotchmaster/phone_shop/internal/repo"
)

type CartService struct {
	Cart *repo.CartRepo
}

// CartLine is a cart row flattened with the product fields the storefront
// shows next to it.
type CartLine struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     int             `json:"quantity"`
	ProductName  string          `json:"product_name"`
	ProductSlug  string          `json:"product_slug"`
	ProductPrice decimal.Decimal `json:"product_price"`
	ProductImage *string         `json:"product_image"`
	ProductStock int             `json:"product_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type CartView struct {
	Items     []CartLine      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"itemCount"`
}

func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	items, err := s.Cart.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	view := &CartView{Items: make([]CartLine, 0, len(items)), Subtotal: decimal.Zero}
	for _, it := range items {
		line := CartLine{
			ID:        it.ID,
			UserID:    it.UserID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			CreatedAt: it.CreatedAt,
			UpdatedAt: it.UpdatedAt,
		}
		if p := it.Product; p != nil {
			line.ProductName = p.Name
			line.ProductSlug = p.Slug
			line.ProductPrice = p.Price
			line.ProductStock = p.Stock
			if len(p.Images) > 0 {
				img := p.Images[0]
				line.ProductImage = &img
			}
		}
		view.Subtotal = view.Subtotal.Add(line.ProductPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		view.Items = append(view.Items, line)
	}
	view.ItemCount = len(view.Items)
	return view, nil
}

func (s *CartService) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, invalid("Quantity must be at least 1")
	}

	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := s.Cart.AddToCart(ctx, item); err != nil {
		switch {
		case repo.IsNotFound(err):
			return nil, notFound("Product not found")
		case errors.Is(err, repo.ErrNotEnoughStock):
			return nil, invalidCause("Not enough stock available", err)
		}
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return item, nil
}

func (s *CartService) Update(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, invalid("Quantity must be at least 1")
	}

	item, err := s.Cart.UpdateQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		switch {
		case repo.IsNotFound(err):
			return nil, notFound("Cart item not found")
		case errors.Is(err, repo.ErrNotEnoughStock):
			return nil, invalidCause("Not enough stock available", err)
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return item, nil
}

func (s *CartService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.Cart.DeleteFromCart(ctx, userID, itemID); err != nil {
		if repo.IsNotFound(err) {
			return notFound("Cart item not found")
		}
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.Cart.DeleteAllFromCart(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/metrics"
	"github.com/Skotchmaster/phone_shop/internal/models"
	"github.com/Skotchmaster/phone_shop/internal/mykafka"
	"github.com/Skotchmaster/phone_shop/internal/repo"
)

type OrderService struct {
	Orders  *repo.OrderRepo
	Events  mykafka.Publisher
	Metrics *metrics.Metrics
}

type CreateOrderInput struct {
	ShippingAddress models.ShippingAddress
	PaymentMethod   *string
	Notes           *string
}

// Create checks out the user's cart. Business-rule failures come back as
// ErrValidation with the message to show; the cart and stock are untouched.
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, in CreateOrderInput) (*models.Order, error) {
	order, err := s.Orders.PlaceOrder(ctx, repo.PlaceOrder{
		UserID:          userID,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Notes:           in.Notes,
	})
	if err != nil {
		var stockErr *repo.InsufficientStockError
		switch {
		case errors.Is(err, repo.ErrEmptyCart):
			return nil, invalidCause("Cart is empty", err)
		case errors.As(err, &stockErr):
			return nil, invalidCause("Not enough stock for "+stockErr.ProductName, err)
		}
		return nil, fmt.Errorf("place order: %w", err)
	}

	s.Metrics.OrderCreated()
	logging.FromContext(ctx).Info("order_created",
		"order_id", order.ID,
		"user_id", userID,
		"items", len(order.Items),
		"total", order.Total.StringFixed(2),
	)

	publish(ctx, s.Events, mykafka.TopicOrderEvents, order.ID.String(), map[string]any{
		"type":     "order_created",
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.Total.StringFixed(2),
		"items":    len(order.Items),
	})
	return order, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID uuid.UUID, offset, limit int) (int64, []models.Order, error) {
	return s.Orders.List(ctx, repo.OrderFilter{UserID: userID, Offset: offset, Limit: limit})
}

func (s *OrderService) ListAll(ctx context.Context, status models.OrderStatus, offset, limit int) (int64, []models.Order, error) {
	return s.Orders.List(ctx, repo.OrderFilter{Status: status, Offset: offset, Limit: limit})
}

// Get returns an order with its items. With a non-nil owner the order must
// belong to that user.
func (s *OrderService) Get(ctx context.Context, id, owner uuid.UUID) (*models.Order, error) {
	order, err := s.Orders.Get(ctx, id, owner)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, notFound("Order not found")
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	return order, nil
}

// UpdateStatus moves an order to any of the known statuses. Which transitions
// are legal is not checked.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, invalid("Invalid status")
	}

	order, err := s.Orders.UpdateStatus(ctx, id, status)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, notFound("Order not found")
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicOrderEvents, order.ID.String(), map[string]any{
		"type":     "order_status_changed",
		"order_id": order.ID,
		"user_id":  order.UserID,
		"status":   order.Status,
	})
	return order, nil
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/phone_shop/internal/models"
	"github.com/Skotchmaster/phone_shop/internal/repo"
)

const (
	lowStockThreshold = 10
	recentOrderCount  = 5
)

type DashboardService struct {
	Products *repo.ProductRepo
	Orders   *repo.OrderRepo
	Users    *repo.UserRepo
}

type DashboardStats struct {
	Stats struct {
		TotalProducts int64           `json:"totalProducts"`
		TotalOrders   int64           `json:"totalOrders"`
		TotalUsers    int64           `json:"totalUsers"`
		TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	} `json:"stats"`
	RecentOrders []RecentOrder `json:"recentOrders"`
	Alerts       struct {
		LowStock      int64 `json:"lowStock"`
		PendingOrders int64 `json:"pendingOrders"`
	} `json:"alerts"`
}

type RecentOrder struct {
	ID       uuid.UUID          `json:"id"`
	Customer string             `json:"customer"`
	Product  string             `json:"product"`
	Total    decimal.Decimal    `json:"total"`
	Status   models.OrderStatus `json:"status"`
}

func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	var err error

	if out.Stats.TotalProducts, err = s.Products.Count(ctx); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if out.Stats.TotalOrders, err = s.Orders.CountByStatus(ctx, ""); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	if out.Stats.TotalUsers, err = s.Users.CountByRole(ctx, models.RoleUser); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if out.Stats.TotalRevenue, err = s.Orders.Revenue(ctx, models.OrderStatusDelivered); err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	if out.Alerts.LowStock, err = s.Products.CountLowStock(ctx, lowStockThreshold); err != nil {
		return nil, fmt.Errorf("count low stock: %w", err)
	}
	if out.Alerts.PendingOrders, err = s.Orders.CountByStatus(ctx, models.OrderStatusPending); err != nil {
		return nil, fmt.Errorf("count pending orders: %w", err)
	}

	recent, err := s.Orders.Recent(ctx, recentOrderCount)
	if err != nil {
		return nil, fmt.Errorf("load recent orders: %w", err)
	}
	out.RecentOrders = make([]RecentOrder, 0, len(recent))
	for _, o := range recent {
		ro := RecentOrder{ID: o.ID, Product: "Unknown Product", Total: o.Total, Status: o.Status}
		if o.User != nil {
			ro.Customer = o.User.Name
		}
		if len(o.Items) > 0 {
			ro.Product = o.Items[0].ProductName
		}
		out.RecentOrders = append(out.RecentOrders, ro)
	}
	return &out, nil
}

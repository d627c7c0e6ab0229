package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/models"
	"github.com/Skotchmaster/phone_shop/internal/service"
	"github.com/Skotchmaster/phone_shop/internal/transport"
)

const (
	defaultMyOrdersPage  = 10
	defaultAllOrdersPage = 20
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	id, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.CreateOrderRequest
	if err := bind(c, l, "create_order_error", &req); err != nil {
		return err
	}

	a := req.ShippingAddress
	order, err := h.Svc.Create(ctx, id.UserID, service.CreateOrderInput{
		ShippingAddress: models.ShippingAddress{
			Name:       a.Name,
			Phone:      a.Phone,
			Address:    a.Address,
			City:       a.City,
			Province:   a.Province,
			PostalCode: a.PostalCode,
		},
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return transport.OK(c, http.StatusCreated, order)
}

func (h *OrderHTTP) GetMyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.my_orders")

	id, err := currentUser(c)
	if err != nil {
		return err
	}
	pq := pageParams(c, "limit", defaultMyOrdersPage)
	total, orders, err := h.Svc.ListForUser(ctx, id.UserID, pq.offset, pq.limit)
	if err != nil {
		return fail(l, "get_orders_error", err)
	}
	return transport.Page(c, orders, pq.pagination(total))
}

func (h *OrderHTTP) GetMyOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.my_order")

	id, err := currentUser(c)
	if err != nil {
		return err
	}
	return h.get(c, l, id.UserID)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "order.admin_order")
	return h.get(c, l, uuid.Nil)
}

func (h *OrderHTTP) get(c echo.Context, l *slog.Logger, owner uuid.UUID) error {
	orderID, err := pathID(c, l, "get_order_error")
	if err != nil {
		return err
	}
	order, err := h.Svc.Get(c.Request().Context(), orderID, owner)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return transport.OK(c, http.StatusOK, order)
}

func (h *OrderHTTP) GetAllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.all_orders")

	var status models.OrderStatus
	if v := c.QueryParam("status"); v != "" {
		st, err := models.ParseOrderStatus(v)
		if err != nil {
			l.Warn("get_all_orders_error", "status", http.StatusBadRequest, "reason", "invalid status filter", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
		}
		status = st
	}

	pq := pageParams(c, "limit", defaultAllOrdersPage)
	total, orders, err := h.Svc.ListAll(ctx, status, pq.offset, pq.limit)
	if err != nil {
		return fail(l, "get_all_orders_error", err)
	}
	return transport.Page(c, orders, pq.pagination(total))
}

func (h *OrderHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	orderID, err := pathID(c, l, "update_order_status_error")
	if err != nil {
		return err
	}
	var req transport.UpdateOrderStatusRequest
	if err := bind(c, l, "update_order_status_error", &req); err != nil {
		return err
	}

	order, err := h.Svc.UpdateStatus(ctx, orderID, models.OrderStatus(req.Status))
	if err != nil {
		return fail(l, "update_order_status_error", err)
	}

	l.Info("update_order_status_success", "order_id", order.ID, "order_status", order.Status)
	return transport.OK(c, http.StatusOK, order)
}

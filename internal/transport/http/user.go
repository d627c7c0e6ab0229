package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/models"
	"github.com/Skotchmaster/phone_shop/internal/service"
	"github.com/Skotchmaster/phone_shop/internal/transport"
)

const defaultUsersPage = 20

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) GetUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	pq := pageParams(c, "limit", defaultUsersPage)
	total, users, err := h.Svc.List(ctx, models.Role(c.QueryParam("role")), pq.offset, pq.limit)
	if err != nil {
		return fail(l, "get_users_error", err)
	}
	return transport.Page(c, users, pq.pagination(total))
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "delete_user_error")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, actor.UserID, id); err != nil {
		return fail(l, "delete_user_error", err)
	}

	l.Info("delete_user_success", "user_id", id)
	return transport.Message(c, "User deleted successfully")
}

type DashboardHTTP struct {
	Svc *service.DashboardService
}

func (h *DashboardHTTP) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dashboard.stats")

	stats, err := h.Svc.Stats(ctx)
	if err != nil {
		return fail(l, "dashboard_stats_error", err)
	}
	return transport.OK(c, http.StatusOK, stats)
}

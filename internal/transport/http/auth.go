package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/service"
	"github.com/Skotchmaster/phone_shop/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bind(c, l, "register_error", &req); err != nil {
		return err
	}

	res, err := h.Svc.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success", "user_id", res.User.ID)
	return transport.OK(c, http.StatusCreated, res)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bind(c, l, "login_error", &req); err != nil {
		return err
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}

	l.Info("login_success", "user_id", res.User.ID)
	return transport.OK(c, http.StatusOK, res)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req transport.RefreshRequest
	if err := bind(c, l, "refresh_error", &req); err != nil {
		return err
	}

	pair, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return fail(l, "refresh_error", err)
	}

	l.Info("refresh_success")
	return transport.OK(c, http.StatusOK, pair)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	var req transport.RefreshRequest
	if err := bind(c, l, "logout_error", &req); err != nil {
		return err
	}

	if err := h.Svc.Logout(ctx, req.RefreshToken); err != nil {
		return fail(l, "logout_error", err)
	}

	l.Info("logout_success")
	return transport.Message(c, "Logged out successfully")
}

func (h *AuthHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.profile")

	id, err := currentUser(c)
	if err != nil {
		return err
	}

	user, err := h.Svc.Profile(ctx, id.UserID)
	if err != nil {
		return fail(l, "profile_error", err)
	}
	return transport.OK(c, http.StatusOK, user)
}

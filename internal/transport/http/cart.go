package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/service"
	"github.com/Skotchmaster/phone_shop/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	id, err := currentUser(c)
	if err != nil {
		return err
	}
	cart, err := h.Svc.Get(ctx, id.UserID)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return transport.OK(c, http.StatusOK, cart)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	id, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.AddToCartRequest
	if err := bind(c, l, "add_to_cart_error", &req); err != nil {
		return err
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product id")
	}

	item, err := h.Svc.Add(ctx, id.UserID, productID, req.Quantity)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("add_to_cart_success", "product_id", item.ProductID, "quantity", item.Quantity)
	return transport.OK(c, http.StatusCreated, item)
}

func (h *CartHTTP) UpdateCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	id, err := currentUser(c)
	if err != nil {
		return err
	}
	itemID, err := pathID(c, l, "update_cart_error")
	if err != nil {
		return err
	}
	var req transport.UpdateCartItemRequest
	if err := bind(c, l, "update_cart_error", &req); err != nil {
		return err
	}

	item, err := h.Svc.Update(ctx, id.UserID, itemID, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_error", err)
	}

	l.Info("update_cart_success", "item_id", item.ID, "quantity", item.Quantity)
	return transport.OK(c, http.StatusOK, item)
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	id, err := currentUser(c)
	if err != nil {
		return err
	}
	itemID, err := pathID(c, l, "remove_from_cart_error")
	if err != nil {
		return err
	}
	if err := h.Svc.Remove(ctx, id.UserID, itemID); err != nil {
		return fail(l, "remove_from_cart_error", err)
	}

	l.Info("remove_from_cart_success", "item_id", itemID)
	return transport.Message(c, "Item removed from cart")
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	id, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Clear(ctx, id.UserID); err != nil {
		return fail(l, "clear_cart_error", err)
	}

	l.Info("clear_cart_success")
	return transport.Message(c, "Cart cleared")
}

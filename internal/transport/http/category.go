package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/service"
	"github.com/Skotchmaster/phone_shop/internal/transport"
)

type CategoryHTTP struct {
	Svc *service.CategoryService
}

func (h *CategoryHTTP) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	items, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "get_categories_error", err)
	}
	return transport.OK(c, http.StatusOK, items)
}

func (h *CategoryHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get")

	cat, err := h.Svc.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return fail(l, "get_category_error", err)
	}
	return transport.OK(c, http.StatusOK, cat)
}

func (h *CategoryHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CategoryRequest
	if err := bind(c, l, "create_category_error", &req); err != nil {
		return err
	}

	cat, err := h.Svc.Create(ctx, req.Name, req.Image)
	if err != nil {
		return fail(l, "create_category_error", err)
	}

	l.Info("create_category_success", "category_id", cat.ID)
	return transport.OK(c, http.StatusCreated, cat)
}

func (h *CategoryHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	id, err := pathID(c, l, "update_category_error")
	if err != nil {
		return err
	}
	var req transport.PatchCategoryRequest
	if err := bind(c, l, "update_category_error", &req); err != nil {
		return err
	}

	patch := service.CategoryPatch{Name: req.Name, Image: req.Image}
	if req.Image != nil && *req.Image == "" {
		patch.Image, patch.ClearImage = nil, true
	}
	cat, err := h.Svc.Update(ctx, id, patch)
	if err != nil {
		return fail(l, "update_category_error", err)
	}

	l.Info("update_category_success", "category_id", cat.ID)
	return transport.OK(c, http.StatusOK, cat)
}

func (h *CategoryHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := pathID(c, l, "delete_category_error")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_category_error", err)
	}

	l.Info("delete_category_success", "category_id", id)
	return transport.Message(c, "Category deleted successfully")
}

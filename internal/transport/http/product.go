package httpserver

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/repo"
	"github.com/Skotchmaster/phone_shop/internal/service"
	"github.com/Skotchmaster/phone_shop/internal/transport"
)

const (
	defaultProductPage = 12
	defaultSearchPage  = 20
)

type ProductHTTP struct {
	Svc *service.ProductService
}

// filter reads the catalog query string shared by the public and admin lists.
func (h *ProductHTTP) filter(c echo.Context, activeOnly bool) (repo.ProductFilter, pageQuery, error) {
	pq := pageParams(c, "limit", defaultProductPage)
	f := repo.ProductFilter{
		ActiveOnly:   activeOnly,
		CategorySlug: c.QueryParam("category"),
		Search:       c.QueryParam("search"),
		SortBy:       c.QueryParam("sortBy"),
		SortDesc:     !strings.EqualFold(c.QueryParam("sortOrder"), "asc"),
		Offset:       pq.offset,
		Limit:        pq.limit,
	}
	for key, dst := range map[string]**decimal.Decimal{"minPrice": &f.MinPrice, "maxPrice": &f.MaxPrice} {
		v := c.QueryParam(key)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, pq, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+key)
		}
		*dst = &d
	}
	return f, pq, nil
}

func (h *ProductHTTP) list(c echo.Context, activeOnly bool, event string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	f, pq, err := h.filter(c, activeOnly)
	if err != nil {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "invalid filter", "error", err)
		return err
	}

	total, items, err := h.Svc.List(ctx, f)
	if err != nil {
		return fail(l, event, err)
	}
	return transport.Page(c, items, pq.pagination(total))
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	return h.list(c, true, "get_products_error")
}

func (h *ProductHTTP) GetAdminProducts(c echo.Context) error {
	return h.list(c, false, "get_admin_products_error")
}

func (h *ProductHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	pq := pageParams(c, "size", defaultSearchPage)
	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), pq.offset, pq.limit)
	if err != nil {
		return fail(l, "search_error", err)
	}

	l.Info("search_success", "hits", total)
	return transport.Page(c, items, pq.pagination(total))
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	p, err := h.Svc.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return transport.OK(c, http.StatusOK, p)
}

func parseCategoryID(raw *string) (*uuid.UUID, bool, error) {
	if raw == nil {
		return nil, false, nil
	}
	if *raw == "" {
		return nil, true, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, false, err
	}
	return &id, false, nil
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := bind(c, l, "create_product_error", &req); err != nil {
		return err
	}
	categoryID, _, err := parseCategoryID(req.CategoryID)
	if err != nil {
		l.Warn("create_product_error", "status", http.StatusBadRequest, "reason", "invalid category id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category id")
	}

	p, err := h.Svc.Create(ctx, service.ProductInput{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		Stock:          req.Stock,
		Images:         req.Images,
		CategoryID:     categoryID,
		Specifications: req.Specifications,
		IsActive:       req.IsActive,
	})
	if err != nil {
		return fail(l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return transport.OK(c, http.StatusCreated, p)
}

func (h *ProductHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := pathID(c, l, "update_product_error")
	if err != nil {
		return err
	}
	var req transport.PatchProductRequest
	if err := bind(c, l, "update_product_error", &req); err != nil {
		return err
	}
	categoryID, clearCategory, err := parseCategoryID(req.CategoryID)
	if err != nil {
		l.Warn("update_product_error", "status", http.StatusBadRequest, "reason", "invalid category id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category id")
	}

	p, err := h.Svc.Update(ctx, id, service.ProductPatch{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		Stock:          req.Stock,
		Images:         req.Images,
		CategoryID:     categoryID,
		ClearCategory:  clearCategory,
		Specifications: req.Specifications,
		IsActive:       req.IsActive,
	})
	if err != nil {
		return fail(l, "update_product_error", err)
	}

	l.Info("update_product_success", "product_id", p.ID)
	return transport.OK(c, http.StatusOK, p)
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := pathID(c, l, "delete_product_error")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_product_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return transport.Message(c, "Product deleted successfully")
}

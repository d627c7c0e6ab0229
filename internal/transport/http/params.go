package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phone_shop/internal/middleware/auth"
	"github.com/Skotchmaster/phone_shop/internal/tokens"
	"github.com/Skotchmaster/phone_shop/internal/util"
)

// bind decodes the body into req and validates it.
func bind(c echo.Context, l *slog.Logger, event string, req any) error {
	if err := c.Bind(req); err != nil {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "validation failed", "error", err)
		return err
	}
	return nil
}

func pathID(c echo.Context, l *slog.Logger, event string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "invalid id", "error", err)
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid ID")
	}
	return id, nil
}

func currentUser(c echo.Context) (tokens.Identity, error) {
	id, ok := auth.Identity(c)
	if !ok {
		return tokens.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return id, nil
}

type pageQuery struct {
	page, offset, limit int
}

// pageParams reads ?page= and ?<sizeKey>= with def as the default page size.
func pageParams(c echo.Context, sizeKey string, def int) pageQuery {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	if page < 1 {
		page = 1
	}
	offset, limit := util.Calculate(page, util.ParseIntDefault(c.QueryParam(sizeKey), def), def)
	return pageQuery{page: page, offset: offset, limit: limit}
}

func (q pageQuery) pagination(total int64) util.Pagination {
	return util.NewPagination(q.page, q.limit, total)
}

package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phone_shop/internal/util"
)

// Response is the envelope of every API reply.
type Response struct {
	Success    bool             `json:"success"`
	Data       any              `json:"data,omitempty"`
	Message    string           `json:"message,omitempty"`
	Pagination *util.Pagination `json:"pagination,omitempty"`
	Error      string           `json:"error,omitempty"`
	Details    []FieldError     `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func OK(c echo.Context, code int, data any) error {
	return c.JSON(code, Response{Success: true, Data: data})
}

func Page(c echo.Context, data any, p util.Pagination) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: data, Pagination: &p})
}

func Message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: msg})
}

func Fail(c echo.Context, code int, msg string, details []FieldError) error {
	return c.JSON(code, Response{Success: false, Error: msg, Details: details})
}

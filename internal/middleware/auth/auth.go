package auth

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/models"
	"github.com/Skotchmaster/phone_shop/internal/tokens"
)

const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxIdentity = "identity"
)

const (
	msgNotAuthenticated = "Not authenticated"
	msgInvalidToken     = "Invalid or expired token"
	msgAdminRequired    = "Admin access required"
)

type Verifier interface {
	VerifyAccess(token string) (tokens.Identity, error)
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id tokens.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFromContext(ctx context.Context) (tokens.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(tokens.Identity)
	return id, ok
}

// Identity returns the caller resolved by one of the Authenticator middlewares.
func Identity(c echo.Context) (tokens.Identity, bool) {
	if id, ok := c.Get(CtxIdentity).(tokens.Identity); ok {
		return id, true
	}
	return IdentityFromContext(c.Request().Context())
}

type Authenticator struct {
	Verifier Verifier
}

func New(v Verifier) *Authenticator {
	return &Authenticator{Verifier: v}
}

// bearer extracts the token from an Authorization header. The scheme match is
// case-insensitive; present reports whether any Authorization header was sent.
func bearer(header string) (token string, present bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	scheme, rest, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(rest), true
}

// resolve returns (identity, true, nil) for a valid token, (zero, false, nil)
// when no header was sent, and a 401 when a token is present but unusable.
func (a *Authenticator) resolve(c echo.Context) (tokens.Identity, bool, error) {
	token, present := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
	if !present {
		return tokens.Identity{}, false, nil
	}
	l := logging.FromContext(c.Request().Context())
	if token == "" {
		l.Warn("auth_error", "status", http.StatusUnauthorized, "reason", "malformed authorization header")
		return tokens.Identity{}, false, echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
	}
	id, err := a.Verifier.VerifyAccess(token)
	if err != nil {
		l.Warn("auth_error", "status", http.StatusUnauthorized, "reason", "invalid token", "error", err)
		return tokens.Identity{}, false, echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
	}
	return id, true, nil
}

func attach(c echo.Context, id tokens.Identity) {
	c.Set(CtxIdentity, id)
	c.Set(CtxUserID, id.UserID.String())
	c.Set(CtxRole, string(id.Role))
	ctx := WithIdentity(c.Request().Context(), id)
	ctx = logging.WithAttrs(ctx, "user_id", id.UserID, "role", id.Role)
	c.SetRequest(c.Request().WithContext(ctx))
}

// Optional lets anonymous requests through but still rejects a bad token.
func (a *Authenticator) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok, err := a.resolve(c)
		if err != nil {
			return err
		}
		if ok {
			attach(c, id)
		}
		return next(c)
	}
}

func (a *Authenticator) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok, err := a.resolve(c)
		if err != nil {
			return err
		}
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, msgNotAuthenticated)
		}
		attach(c, id)
		return next(c)
	}
}

func (a *Authenticator) RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return a.RequireAuth(func(c echo.Context) error {
			id, _ := Identity(c)
			if !slices.Contains(roles, id.Role) {
				logging.FromContext(c.Request().Context()).Warn("auth_error",
					"status", http.StatusForbidden, "reason", "role not allowed", "role", id.Role)
				return echo.NewHTTPError(http.StatusForbidden, msgAdminRequired)
			}
			return next(c)
		})
	}
}

func (a *Authenticator) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return a.RequireRole(models.RoleAdmin)(next)
}

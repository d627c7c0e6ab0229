package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/phone_shop/internal/models"
)

var ErrMalformedClaims = errors.New("malformed claims")

// Identity is what a verified access token tells about the caller.
type Identity struct {
	UserID uuid.UUID   `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (c *AccessClaims) Identity() (Identity, error) {
	return identity(c.Subject, c.Email, c.Role)
}

func (c *RefreshClaims) Identity() (Identity, error) {
	return identity(c.Subject, c.Email, c.Role)
}

func identity(sub, email, role string) (Identity, error) {
	id, err := uuid.Parse(sub)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: subject: %v", ErrMalformedClaims, err)
	}
	r, err := models.ParseRole(role)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrMalformedClaims, err)
	}
	return Identity{UserID: id, Email: email, Role: r}, nil
}

func NewAccessToken(id Identity, secret []byte, now, exp time.Time) (string, error) {
	claims := AccessClaims{
		Email: id.Email,
		Role:  string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// NewRefreshToken signs a refresh token carrying a fresh jti, so two tokens
// minted for the same user within one second still differ.
func NewRefreshToken(id Identity, secret []byte, now, exp time.Time) (string, error) {
	claims := RefreshClaims{
		Email: id.Email,
		Role:  string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

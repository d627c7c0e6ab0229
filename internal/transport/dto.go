package transport

import (
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"     validate:"required,min=2"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is used by both refresh and logout. An empty token is
// reported by the service, not the validator.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ShippingAddress struct {
	Name       string `json:"name"        validate:"required,min=2"`
	Phone      string `json:"phone"       validate:"required,min=10"`
	Address    string `json:"address"     validate:"required,min=5"`
	City       string `json:"city"        validate:"required,min=2"`
	Province   string `json:"province"    validate:"required,min=2"`
	PostalCode string `json:"postal_code" validate:"required,min=5"`
}

type CreateOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   *string         `json:"payment_method" validate:"omitnil,max=50"`
	Notes           *string         `json:"notes"          validate:"omitnil,max=1000"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"min=1"`
}

// CreateProductRequest accepts price as a JSON number or string. Positivity
// of the price is checked by the service.
type CreateProductRequest struct {
	Name           string          `json:"name"           validate:"required,min=2"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock"          validate:"min=0"`
	Images         []string        `json:"images"         validate:"omitempty,max=10,dive,required"`
	CategoryID     *string         `json:"category_id"`
	Specifications map[string]any  `json:"specifications"`
	IsActive       *bool           `json:"is_active"`
}

// PatchProductRequest leaves absent fields untouched. An empty category_id
// detaches the product from its category.
type PatchProductRequest struct {
	Name           *string          `json:"name"           validate:"omitnil,min=2"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	Stock          *int             `json:"stock"          validate:"omitnil,min=0"`
	Images         *[]string        `json:"images"         validate:"omitnil,max=10"`
	CategoryID     *string          `json:"category_id"`
	Specifications map[string]any   `json:"specifications"`
	IsActive       *bool            `json:"is_active"`
}

type CategoryRequest struct {
	Name  string  `json:"name"  validate:"required,min=2"`
	Image *string `json:"image"`
}

// PatchCategoryRequest treats an empty image as removal.
type PatchCategoryRequest struct {
	Name  *string `json:"name"  validate:"omitnil,min=2"`
	Image *string `json:"image"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"            json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"            json:"email"`
	PasswordHash string    `gorm:"not null"                        json:"-"`
	Name         string    `gorm:"not null"                        json:"name"`
	Role         Role      `gorm:"type:varchar(16);not null;index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null"             json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Image     *string   `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"                          json:"id"`
	Name           string          `gorm:"not null"                                      json:"name"`
	Slug           string          `gorm:"uniqueIndex;not null"                          json:"slug"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `gorm:"type:numeric(14,2);not null"                   json:"price"`
	Stock          int             `gorm:"not null;default:0;check:stock >= 0"           json:"stock"`
	Images         []string        `gorm:"serializer:json"                               json:"images"`
	CategoryID     *uuid.UUID      `gorm:"type:uuid;index"                               json:"category_id"`
	Category       *Category       `gorm:"constraint:OnDelete:SET NULL"                  json:"category,omitempty"`
	Specifications map[string]any  `gorm:"serializer:json"                               json:"specifications"`
	IsActive       bool            `gorm:"not null;default:true;index"                   json:"is_active"`
	CreatedAt      time.Time       `gorm:"index"                                         json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                                     json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"     json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"     json:"product_id"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE"                              json:"product,omitempty"`
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0"                    json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShippingAddress is stored on the order as a JSON snapshot, detached from any
// later profile edits.
type ShippingAddress struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"      json:"user_id"`
	User            *User           `gorm:"constraint:OnDelete:CASCADE"   json:"user,omitempty"`
	Status          OrderStatus     `gorm:"type:varchar(16);not null;index" json:"status"`
	Total           decimal.Decimal `gorm:"type:numeric(14,2);not null"   json:"total"`
	ShippingAddress ShippingAddress `gorm:"serializer:json;not null"      json:"shipping_address"`
	PaymentMethod   *string         `json:"payment_method"`
	Notes           *string         `json:"notes"`
	Items           []OrderItem     `gorm:"constraint:OnDelete:CASCADE"   json:"items,omitempty"`
	CreatedAt       time.Time       `gorm:"index"                         json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem snapshots one cart line at checkout. ProductID survives product
// deletion as NULL; name and price never change after creation.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"           json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"       json:"order_id"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"                json:"product_id"`
	Product     *Product        `gorm:"constraint:OnDelete:SET NULL"   json:"-"`
	ProductName string          `gorm:"not null"                       json:"product_name"`
	Quantity    int             `gorm:"not null;check:quantity > 0"    json:"quantity"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null"    json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LineTotal is price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"    json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	TokenHash string    `gorm:"uniqueIndex;not null"        json:"-"`
	ExpiresAt time.Time `gorm:"not null;index"              json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error { return ensureID(&u.ID) }
func (c *Category) BeforeCreate(*gorm.DB) error { return ensureID(&c.ID) }
func (p *Product) BeforeCreate(*gorm.DB) error { return ensureID(&p.ID) }
func (i *CartItem) BeforeCreate(*gorm.DB) error { return ensureID(&i.ID) }
func (o *Order) BeforeCreate(*gorm.DB) error { return ensureID(&o.ID) }
func (i *OrderItem) BeforeCreate(*gorm.DB) error { return ensureID(&i.ID) }
func (t *RefreshToken) BeforeCreate(*gorm.DB) error { return ensureID(&t.ID) }

func ensureID(id *uuid.UUID) error {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	return nil
}

// All lists every persisted model in dependency order for migrations.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&RefreshToken{},
	}
}

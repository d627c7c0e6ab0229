package repo

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrEmptyCart is returned by PlaceOrder when the user has nothing to check out.
	ErrEmptyCart = errors.New("cart is empty")

	ErrNotEnoughStock  = errors.New("not enough stock")
	ErrRefreshNotFound = errors.New("refresh token not found or expired")
	ErrEmailTaken      = errors.New("email already registered")
	ErrNothingToUpdate = errors.New("nothing to update")
)

// InsufficientStockError names the first cart line that cannot be fulfilled.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s", e.ProductName)
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

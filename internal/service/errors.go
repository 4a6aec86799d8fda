package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrUnknownAccount  = errors.New("account not found")
	ErrUnknownProduct  = errors.New("product not found")

	// ErrStoreUnavailable wraps persistence-layer failures; the transaction
	// has already been rolled back when it is returned.
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrRefreshFailed = errors.New("summary refresh failed")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// InsufficientStockError reports a checkout rejected because the product
// cannot cover the requested quantity. Available is included for user
// feedback.
type InsufficientStockError struct {
	ProductID uint
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// IsCheckoutRejection reports whether err is one of the per-request checkout
// rejections, as opposed to a store failure.
func IsCheckoutRejection(err error) bool {
	var insufficient *InsufficientStockError
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrUnknownAccount) ||
		errors.Is(err, ErrUnknownProduct) ||
		errors.As(err, &insufficient)
}

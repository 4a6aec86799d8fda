package dto

import "time"

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type CheckoutRequest struct {
	ProductID uint  `json:"product_id" validate:"required"`
	Quantity  int64 `json:"quantity" validate:"required"`
}

type OrderReceipt struct {
	OrderID     uint   `json:"order_id"`
	Reference   string `json:"reference"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	Total       int64  `json:"total"`
}

type ProductSales struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Units     int64  `json:"units"`
	Revenue   int64  `json:"revenue"`
}

type SalesReport struct {
	Mode string          `json:"mode"`
	Rows []*ProductSales `json:"rows"`
	// set in precomputed mode only; the caller judges freshness from it
	RefreshedAt *time.Time `json:"refreshed_at,omitempty"`
}

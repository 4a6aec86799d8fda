package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"mini-ecommerce/internal/dto"
	"mini-ecommerce/internal/middleware"
	"mini-ecommerce/internal/service"
)

type ShopHandler struct {
	catalogService  service.CatalogService
	checkoutService service.CheckoutService
}

func NewShopHandler(catalogService service.CatalogService, checkoutService service.CheckoutService) *ShopHandler {
	return &ShopHandler{
		catalogService:  catalogService,
		checkoutService: checkoutService,
	}
}

func (h *ShopHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.catalogService.ListProducts(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

func (h *ShopHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	receipt, err := h.checkoutService.Checkout(ctx, claims.Email, req.ProductID, req.Quantity)
	if err != nil {
		return checkoutHTTPError(err)
	}

	return c.JSON(http.StatusCreated, receipt)
}

func checkoutHTTPError(err error) error {
	var insufficient *service.InsufficientStockError
	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be a positive integer")
	case errors.Is(err, service.ErrUnknownAccount):
		return echo.NewHTTPError(http.StatusUnauthorized, "account not found")
	case errors.Is(err, service.ErrUnknownProduct):
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	case errors.As(err, &insufficient):
		return echo.NewHTTPError(http.StatusConflict, map[string]interface{}{
			"error":     "insufficient stock",
			"available": insufficient.Available,
		})
	case errors.Is(err, service.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	default:
		return err
	}
}

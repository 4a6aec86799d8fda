package server

import (
	"mini-ecommerce/internal/handler"
	custommw "mini-ecommerce/internal/middleware"
	"mini-ecommerce/internal/model"
	"mini-ecommerce/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo         *echo.Echo
	authService  service.AuthService
	authHandler  *handler.AuthHandler
	shopHandler  *handler.ShopHandler
	adminHandler *handler.AdminHandler
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func NewServer(
	authService service.AuthService,
	catalogService service.CatalogService,
	checkoutService service.CheckoutService,
	reportService service.ReportService,
) *Server {
	e := echo.New()

	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	authHandler := handler.NewAuthHandler(authService)
	shopHandler := handler.NewShopHandler(catalogService, checkoutService)
	adminHandler := handler.NewAdminHandler(reportService)

	s := &Server{
		echo:         e,
		authService:  authService,
		authHandler:  authHandler,
		shopHandler:  shopHandler,
		adminHandler: adminHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.POST("/auth/register", s.authHandler.Register)
	api.POST("/auth/login", s.authHandler.Login)

	// -------- storefront (any authenticated user) --------
	shop := api.Group("", custommw.Authenticate(s.authService))
	shop.GET("/products", s.shopHandler.ListProducts)
	shop.POST("/checkout", s.shopHandler.Checkout)

	// -------- reporting (admin only) --------
	admin := api.Group("/admin",
		custommw.Authenticate(s.authService),
		custommw.RequireRole(model.RoleAdmin),
	)
	admin.GET("/sales", s.adminHandler.SalesReport)
	admin.POST("/sales/refresh", s.adminHandler.RefreshSummary)
}

// Echo exposes the underlying router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}

package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/phone_shop/internal/metrics"
	"github.com/Skotchmaster/phone_shop/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/phone_shop/internal/middleware/logging"
	"github.com/Skotchmaster/phone_shop/internal/middleware/ratelimit"
)

// bodyLimit leaves room for a full batch of images.
const bodyLimit = "60M"

type Deps struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Auth        *auth.Authenticator
	Limiter     *ratelimit.Limiter
	CORSOrigins []string

	// UploadDir is served statically under UploadBaseURL when set.
	UploadDir     string
	UploadBaseURL string

	HealthHandler    *HealthHTTP
	AuthHandler      *AuthHTTP
	ProductHandler   *ProductHTTP
	CategoryHandler  *CategoryHTTP
	CartHandler      *CartHTTP
	OrderHandler     *OrderHTTP
	UserHandler      *UserHTTP
	DashboardHandler *DashboardHTTP
	UploadHandler    *UploadHTTP
}

// New builds the echo instance with the shared middleware chain and every route.
func New(d *Deps) *echo.Echo {
	l := d.Logger
	if l == nil {
		l = slog.Default()
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(loggingmw.RequestLogger(l))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.BodyLimit(bodyLimit))

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", d.HealthHandler.Live)
	e.GET("/health/ready", d.HealthHandler.Ready)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}
	if d.UploadDir != "" && d.UploadBaseURL != "" {
		e.Static(d.UploadBaseURL, d.UploadDir)
	}

	a := d.Auth
	api := e.Group("/api")
	api.GET("/health", d.HealthHandler.Status)

	authG := api.Group("/auth", d.Limiter.Middleware())
	authG.POST("/register", d.AuthHandler.Register)
	authG.POST("/login", d.AuthHandler.Login)
	authG.POST("/refresh", d.AuthHandler.Refresh)
	authG.POST("/logout", d.AuthHandler.Logout)
	authG.GET("/profile", d.AuthHandler.Profile, a.RequireAuth)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts, a.Optional)
	products.GET("/search", d.ProductHandler.Search, a.Optional)
	products.GET("/:slug", d.ProductHandler.GetProduct, a.Optional)

	productsAdmin := api.Group("/products/admin", a.RequireAdmin)
	productsAdmin.GET("/all", d.ProductHandler.GetAdminProducts)
	productsAdmin.POST("", d.ProductHandler.CreateProduct)
	productsAdmin.PUT("/:id", d.ProductHandler.UpdateProduct)
	productsAdmin.DELETE("/:id", d.ProductHandler.DeleteProduct)

	categories := api.Group("/categories")
	categories.GET("", d.CategoryHandler.GetCategories, a.Optional)
	categories.GET("/:slug", d.CategoryHandler.GetCategory, a.Optional)

	categoriesAdmin := api.Group("/categories/admin", a.RequireAdmin)
	categoriesAdmin.POST("", d.CategoryHandler.CreateCategory)
	categoriesAdmin.PUT("/:id", d.CategoryHandler.UpdateCategory)
	categoriesAdmin.DELETE("/:id", d.CategoryHandler.DeleteCategory)

	cart := api.Group("/cart", a.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.PUT("/:id", d.CartHandler.UpdateCartItem)
	cart.DELETE("/:id", d.CartHandler.RemoveFromCart)
	cart.DELETE("", d.CartHandler.ClearCart)

	orders := api.Group("/orders", a.RequireAuth)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("/my", d.OrderHandler.GetMyOrders)
	orders.GET("/my/:id", d.OrderHandler.GetMyOrder)

	ordersAdmin := api.Group("/orders/admin", a.RequireAdmin)
	ordersAdmin.GET("/all", d.OrderHandler.GetAllOrders)
	ordersAdmin.GET("/:id", d.OrderHandler.GetOrder)
	ordersAdmin.PUT("/:id/status", d.OrderHandler.UpdateOrderStatus)

	users := api.Group("/users", a.RequireAdmin)
	users.GET("", d.UserHandler.GetUsers)
	users.DELETE("/:id", d.UserHandler.DeleteUser)

	api.GET("/dashboard/stats", d.DashboardHandler.GetStats, a.RequireAdmin)

	uploads := api.Group("/upload", a.RequireAdmin)
	uploads.POST("", d.UploadHandler.UploadImages)
	uploads.POST("/image", d.UploadHandler.UploadImage)
	uploads.POST("/images", d.UploadHandler.UploadImages)
}

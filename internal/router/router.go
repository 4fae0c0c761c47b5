package router

import (
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"foodgram/internal/auth"
	"foodgram/internal/config"
	"foodgram/internal/handler"
)

// maxBodySize fits a base64 image at storage.MaxImageSize plus the rest of
// the payload.
const maxBodySize = "15M"

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Subscriptions *handler.SubscriptionHandler
	Catalog       *handler.CatalogHandler
	Recipes       *handler.RecipeHandler
}

// Dependencies are the shared collaborators of the middleware chain.
type Dependencies struct {
	Auth   *auth.Middleware
	Logger *slog.Logger
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, deps Dependencies, h Handlers) {
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: newRequestID}))
	e.Use(requestContext)
	e.Use(requestLogger(deps.Logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit),
				Burst:     cfg.RateLimit * 2,
				ExpiresIn: 3 * time.Minute,
			}),
		}))
	}

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/s/:code", h.Recipes.FollowShortLink)
	if cfg.StorageDriver == "local" {
		e.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	optional := deps.Auth.Optional()
	required := deps.Auth.Required()

	api := e.Group("/api")

	// Auth
	api.POST("/auth/token/login", h.Auth.Login)
	api.POST("/auth/token/refresh", h.Auth.Refresh)
	api.POST("/auth/token/logout", h.Auth.Logout, required)

	// Users
	api.POST("/users", h.Auth.Register)
	api.GET("/users", h.Users.ListUsers, optional)
	api.GET("/users/me", h.Users.Me, required)
	api.PATCH("/users/me", h.Users.UpdateMe, required)
	api.DELETE("/users/me", h.Users.DeleteMe, required)
	api.PUT("/users/me/avatar", h.Users.SetAvatar, required)
	api.DELETE("/users/me/avatar", h.Users.DeleteAvatar, required)
	api.POST("/users/set_password", h.Auth.SetPassword, required)
	api.GET("/users/subscriptions", h.Subscriptions.List, required)
	api.GET("/users/:id", h.Users.GetUser, optional)
	api.POST("/users/:id/subscribe", h.Subscriptions.Subscribe, required)
	api.DELETE("/users/:id/subscribe", h.Subscriptions.Unsubscribe, required)

	// Catalog
	api.GET("/tags", h.Catalog.ListTags)
	api.GET("/tags/:id", h.Catalog.GetTag)
	api.GET("/ingredients", h.Catalog.ListIngredients)
	api.GET("/ingredients/:id", h.Catalog.GetIngredient)

	// Recipes
	api.GET("/recipes", h.Recipes.List, optional)
	api.POST("/recipes", h.Recipes.Create, required)
	api.GET("/recipes/download_shopping_cart", h.Recipes.DownloadShoppingCart, required)
	api.GET("/recipes/:id", h.Recipes.Get, optional)
	api.PATCH("/recipes/:id", h.Recipes.Update, required)
	api.DELETE("/recipes/:id", h.Recipes.Delete, required)
	api.GET("/recipes/:id/get-link", h.Recipes.GetLink)
	api.POST("/recipes/:id/favorite", h.Recipes.AddFavorite, required)
	api.DELETE("/recipes/:id/favorite", h.Recipes.RemoveFavorite, required)
	api.POST("/recipes/:id/shopping_cart", h.Recipes.AddToCart, required)
	api.DELETE("/recipes/:id/shopping_cart", h.Recipes.RemoveFromCart, required)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a validator reporting fields by their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"foodgram/docs"
	"foodgram/internal/auth"
	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/db"
	"foodgram/internal/handler"
	"foodgram/internal/log"
	"foodgram/internal/mail"
	"foodgram/internal/repository"
	"foodgram/internal/router"
	"foodgram/internal/service"
	"foodgram/internal/storage"
)

// @title Foodgram API
// @version 1.0
// @description Recipe sharing API with favorites, shopping cart, subscriptions and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := log.New(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if os.Getenv("RESET_DB") == "true" {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			return err
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn("redis unreachable, continuing without cache", slog.Any("error", err))
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return err
	}

	mailer := mail.New(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPSender,
	})

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	recipeRepo := repository.NewRecipeRepository(gormDB)
	ingredientRepo := repository.NewIngredientRepository(gormDB)
	tagRepo := repository.NewTagRepository(gormDB)
	memberRepo := repository.NewMembershipRepository(gormDB)
	subRepo := repository.NewSubscriptionRepository(gormDB)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Services
	projector := service.NewProjector(store)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, mailer, logger)
	userService := service.NewUserService(userRepo, subRepo, store, cacheClient, projector, logger)
	subService := service.NewSubscriptionService(subRepo, userRepo, recipeRepo, projector)
	catalogService := service.NewCatalogService(ingredientRepo, tagRepo, cacheClient, cfg.CatalogCacheTTL)
	memberService := service.NewMembershipService(memberRepo, recipeRepo, projector)
	shoppingService := service.NewShoppingListService(memberRepo)
	recipeService := service.NewRecipeService(service.RecipeDeps{
		Recipes:       recipeRepo,
		Users:         userRepo,
		Ingredients:   ingredientRepo,
		Tags:          tagRepo,
		Members:       memberRepo,
		Subscriptions: subRepo,
		Storage:       store,
		Projector:     projector,
		Logger:        logger,
	}, service.RecipeRules{MaxCookingTime: cfg.MaxCookingTime}, cfg.BaseURL)

	// Handlers
	pages := handler.Paginator{DefaultSize: cfg.PageSize, MaxSize: cfg.MaxPageSize}
	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Users:         handler.NewUserHandler(userService, pages),
		Subscriptions: handler.NewSubscriptionHandler(subService, pages),
		Catalog:       handler.NewCatalogHandler(catalogService),
		Recipes:       handler.NewRecipeHandler(recipeService, memberService, shoppingService, pages),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, router.Dependencies{
		Auth:   auth.NewMiddleware(jwtService, tokenStore),
		Logger: logger,
	}, handlers)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logger.Info("swagger documentation available", slog.String("url", strings.TrimRight(cfg.BaseURL, "/")+"/swagger/index.html"))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("port", cfg.ServerPort))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.StorageDriver == "s3" {
		return storage.NewS3(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
	}
	return storage.NewLocal(cfg.MediaRoot, cfg.MediaURL), nil
}

package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/spoonhq/accounts-api/docs"
	"github.com/spoonhq/accounts-api/internal/api/handler"
	"github.com/spoonhq/accounts-api/internal/api/middleware"
	"github.com/spoonhq/accounts-api/internal/core/domain"
	"github.com/spoonhq/accounts-api/internal/core/ports"
	"github.com/spoonhq/accounts-api/internal/core/service"
	"github.com/spoonhq/accounts-api/internal/pkg/config"
	mongostore "github.com/spoonhq/accounts-api/internal/infrastructure/db/mongo"
	redisstore "github.com/spoonhq/accounts-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The notifier is constructed by the caller so its workers share the process
// lifecycle, not the router's.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, notifier ports.Notifier, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("accounts"))

	// --- Dependencies ---
	repo := mongostore.NewAccountRepository(db)
	availability := mongostore.NewAvailabilityStore(db)
	throttle := redisstore.NewResetThrottle(rdb, cfg.ResetMailCooldown)
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL, cfg.ResetTTL)
	gate := service.NewGate(repo)

	accounts := service.NewAccountService(repo, tokens, notifier, throttle, cfg.PublicBaseURL, cfg.BcryptCost, log)
	operators := service.NewOperatorService(repo, availability, gate, tokens, notifier, cfg.PublicBaseURL, cfg.BcryptCost, log)

	userHandler := handler.NewAccountHandler(accounts, domain.KindUser)
	adminHandler := handler.NewAccountHandler(accounts, domain.KindOperator)
	operatorHandler := handler.NewOperatorHandler(operators)

	authRequired := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RequireAdmin(gate)

	// --- Customer routes ---
	user := e.Group("/user")
	user.POST("/register", userHandler.Register)
	user.POST("/login", userHandler.Login)
	user.POST("/set-password", userHandler.ForgotPassword)
	user.GET("/reset-password/:id/:token", userHandler.VerifyReset)
	user.POST("/forget-password", userHandler.CompleteReset)
	user.POST("/user-data", userHandler.AccountData)
	user.POST("/reset-password", userHandler.ChangePassword, authRequired)
	user.POST("/update-user-details/:id", userHandler.UpdateProfile, authRequired)

	// --- Operator routes ---
	admin := e.Group("/admin")
	admin.POST("/register", adminHandler.Register)
	admin.POST("/login", adminHandler.Login)
	admin.POST("/set-password", adminHandler.ForgotPassword)
	admin.GET("/reset-password/:id/:token", adminHandler.VerifyReset)
	admin.POST("/reset-password", adminHandler.CompleteReset)
	admin.POST("/admin-data", adminHandler.AccountData)
	admin.POST("/change-password", adminHandler.ChangePassword, authRequired)
	admin.POST("/validate-admin-password", adminHandler.ValidatePassword, authRequired)
	admin.POST("/update-details", adminHandler.UpdateProfile, authRequired)

	// --- Operator lifecycle (administrators only) ---
	admin.POST("/add-new-user", operatorHandler.AddOperator, authRequired, adminOnly)
	admin.POST("/edit-user-details", operatorHandler.EditOperator, authRequired, adminOnly)
	admin.DELETE("/delete-user/:id", operatorHandler.DeleteOperator, authRequired, adminOnly)
	admin.GET("/get-all-users", operatorHandler.ListOperators, authRequired, adminOnly)
	admin.GET("/set-order-delivery-status/:id/:status", operatorHandler.SetAvailability, authRequired, adminOnly)
	e.GET("/get-restaurant-open-status", operatorHandler.GetAvailability)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}

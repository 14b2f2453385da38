package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ecommerce-platform/identity-service/internal/api/handler"
	"github.com/ecommerce-platform/identity-service/internal/api/middleware"
	"github.com/ecommerce-platform/identity-service/internal/core/domain"
	"github.com/ecommerce-platform/identity-service/internal/core/ports"
	"github.com/ecommerce-platform/identity-service/internal/core/token"
)

// NewRouter builds the Echo instance with all routes registered. Dependencies
// are constructed by the caller and passed in explicitly.
func NewRouter(
	authService ports.AuthService,
	codec *token.Codec,
	db *mongo.Database,
	rdb *redis.Client,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	authHandler := handler.NewAuthHandler(authService)
	authenticated := middleware.Auth(codec)

	// --- Public auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Protected user management routes ---
	users := e.Group("/auth/users", authenticated)
	users.GET("", authHandler.ListUsers, middleware.RBAC(domain.RoleAdmin, domain.RoleManager))
	users.GET("/:id", authHandler.GetUser, middleware.RBAC(domain.RoleAdmin, domain.RoleManager))
	users.PATCH("/:id/role", authHandler.UpdateRole, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}

package router

import (
	"context"
	"net/http"

	"github.com/anonto42/userdir/backend/internal/handlers"
	"github.com/anonto42/userdir/backend/internal/repositories"
	"github.com/anonto42/userdir/backend/internal/services"
	"github.com/anonto42/userdir/backend/validators"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Dependencies are the store handles and shared services the routes are built from
type Dependencies struct {
	Users   repositories.UserRepository
	Follows repositories.FollowRepository
	Ping    func(ctx context.Context) error
	Log     *zap.Logger
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, log *zap.Logger) {
	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			switch {
			case v.Status >= http.StatusInternalServerError:
				log.Error("http request", fields...)
			case v.Status >= http.StatusBadRequest:
				log.Warn("http request", fields...)
			default:
				log.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodDelete,
			http.MethodPut, http.MethodPatch, http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin, "X-Requested-With", echo.HeaderContentType, echo.HeaderAccept,
		},
	}))
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	v := validators.NewValidator()
	e.Validator = v
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(deps.Log)

	if deps.Ping != nil {
		e.GET("/health", handlers.NewHealthHandler(deps.Ping).HealthCheck)
	}

	api := e.Group("/v1")

	userService := services.NewUserService(deps.Users, v, deps.Log)
	handlers.NewUserHandler(userService).RegisterUserRoutes(api)
	deps.Log.Debug("User routes configured.")

	followService := services.NewFollowService(deps.Follows, deps.Users, v)
	handlers.NewFollowHandler(followService).RegisterFollowRoutes(api)
	deps.Log.Debug("Follow routes configured.")
}

// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"enroll/internal/delivery/http/middleware"
	"enroll/internal/delivery/http/router/handler"
	"enroll/internal/domain/entity"
	"enroll/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// RouterParams holds everything the router wires up, injected by Fx.
type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	AuthMiddleware *middleware.AuthMiddleware
	Metrics        *metrics.Metrics
}

type router struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	authMiddleware *middleware.AuthMiddleware
	metrics        *metrics.Metrics
}

// NewRouter is the constructor for the Router.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		userHandler:    params.UserHandler,
		authMiddleware: params.AuthMiddleware,
		metrics:        params.Metrics,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(r.metrics.Registry(), promhttp.HandlerOpts{})))

	v1 := e.Group("/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/registration", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh-token", r.authHandler.Refresh)
		authGroup.GET("/user-exists", r.authHandler.UserExists)
		authGroup.GET("/me", r.authHandler.Me, r.authMiddleware.Authenticate)
		authGroup.DELETE("/me", r.authHandler.DeleteMe, r.authMiddleware.Authenticate)
	}

	// Profile CRUD requires an authenticated caller; deletes are for admins.
	userGroup := v1.Group("/users")
	userGroup.Use(r.authMiddleware.Authenticate)
	{
		userGroup.POST("", r.userHandler.CreateUser, r.authMiddleware.RequireRole(entity.RoleAdmin))
		userGroup.GET("", r.userHandler.FindUserByEmail)
		userGroup.GET("/:id", r.userHandler.GetUser)
		userGroup.PATCH("/:id", r.userHandler.UpdateUser)
		userGroup.DELETE("/:id", r.userHandler.DeleteUser, r.authMiddleware.RequireRole(entity.RoleAdmin))
	}
}

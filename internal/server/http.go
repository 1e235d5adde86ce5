// Package server assembles the gin router: routes, auth middleware, CORS,
// and request telemetry.
package server

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	authservice "identity-service/internal/auth/service"
	"identity-service/internal/security"
	"identity-service/internal/server/handler"
	"identity-service/internal/server/middleware"
	userservice "identity-service/internal/user/service"
)

// Options carries everything the router needs.
type Options struct {
	Auth       *authservice.AuthService
	Users      *userservice.UserService
	Tokens     *security.TokenProvider
	DB         *sql.DB
	CORSOrigin string
	Tracer     trace.Tracer
	Meter      metric.Meter
	// Production switches gin to release mode.
	Production bool
}

// NewRouter builds the HTTP router with all routes registered.
func NewRouter(opts Options) *gin.Engine {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.CORS(opts.CORSOrigin))
	r.Use(middleware.Telemetry(opts.Tracer, opts.Meter))

	authH := handler.NewAuthHandler(opts.Auth, opts.Tokens)
	usersH := handler.NewUsersHandler(opts.Users)
	healthH := handler.NewHealthHandler(opts.DB)

	r.GET("/health", healthH.Check)

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authH.Signup)
		auth.POST("/login", authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.POST("/logout", middleware.RequireAuth(opts.Tokens), authH.Logout)
		auth.GET("/me", middleware.RequireAuth(opts.Tokens), authH.GetMe)
	}

	users := r.Group("/users", middleware.RequireAuth(opts.Tokens))
	{
		users.GET("/profile", usersH.GetProfile)
		users.PATCH("/profile", usersH.UpdateProfile)

		admin := users.Group("", middleware.RequireAdmin())
		{
			admin.GET("", usersH.ListUsers)
			admin.GET("/:id", usersH.GetUserByID)
			admin.PATCH("/:id", usersH.UpdateUserByID)
			admin.DELETE("/:id", usersH.DeleteUserByID)
		}
	}

	return r
}

package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/blogforge/content-api/internal/api/handler"
	"github.com/blogforge/content-api/internal/api/middleware"
	"github.com/blogforge/content-api/internal/core/domain"
	"github.com/blogforge/content-api/internal/core/ports"
	"github.com/blogforge/content-api/internal/gateway"
)

// Deps bundles everything the router needs to register routes.
type Deps struct {
	Users   ports.UserService
	Posts   ports.PostService
	Auth    ports.AuthService
	Tokens  ports.TokenService
	Gateway *gateway.Gateway
	Mongo   *mongo.Database
	Redis   *redis.Client
	Log     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("content_api"))
	e.Use(middleware.Auth(d.Tokens, d.Users, d.Log))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Users)
	postHandler := handler.NewPostHandler(d.Posts)
	dataHandler := handler.NewDataHandler(d.Gateway)
	healthHandler := handler.NewHealthHandler(d.Mongo, d.Redis)

	// --- Auth routes (public) ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)

	// --- Users ---
	requireAuth := middleware.RequireAuth()
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	e.GET("/me", userHandler.Me, requireAuth)

	users := e.Group("/users")
	users.GET("", userHandler.List, requireAuth)
	users.GET("/search", userHandler.Search, requireAuth)
	users.GET("/role/:role", userHandler.ListByRole, adminOnly)
	users.GET("/username/:username", userHandler.GetByUsername, requireAuth)
	users.GET("/:id", userHandler.Get, requireAuth)
	users.GET("/:id/with-posts", userHandler.GetWithPosts, requireAuth)
	users.GET("/:id/posts", postHandler.ListByUser)
	users.GET("/:id/posts/count", postHandler.CountByUser)
	users.PUT("/:id", userHandler.Update, requireAuth)
	users.DELETE("/:id", userHandler.Delete, adminOnly)

	// --- Posts ---
	posts := e.Group("/posts")
	posts.GET("", postHandler.List)
	posts.GET("/search", postHandler.Search)
	posts.GET("/:id", postHandler.Get)
	posts.POST("", postHandler.Create, requireAuth)
	posts.PUT("/:id", postHandler.Update, requireAuth)
	posts.DELETE("/:id", postHandler.Delete, requireAuth)

	// --- Aggregation gateway ---
	e.GET("/data/combined/:id", dataHandler.Combined, requireAuth)

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/movielist-api/docs"
	"github.com/99minutos/movielist-api/internal/api/handler"
	"github.com/99minutos/movielist-api/internal/api/middleware"
	"github.com/99minutos/movielist-api/internal/core/ports"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Log          zerolog.Logger
	AuthService  ports.AuthService
	MovieService ports.MovieService
	Tokens       ports.TokenIssuer
	// Checks feed the readiness probe, keyed by dependency name.
	Checks map[string]handler.CheckFunc
	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "movielist",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	movieHandler := handler.NewMovieHandler(d.MovieService)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Checks)
	authMiddleware := middleware.Auth(d.Tokens)

	// --- Operational routes (no auth required) ---
	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/protected", authHandler.Protected, authMiddleware)

	// --- Movie routes ---
	movies := e.Group("/api/movies", authMiddleware)
	movies.POST("", movieHandler.Create)
	movies.GET("", movieHandler.List)
	movies.GET("/:id", movieHandler.Get)
	movies.PUT("/:id", movieHandler.Update)
	movies.PATCH("/:id", movieHandler.Update)
	movies.DELETE("/:id", movieHandler.Delete)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "route not found")
	})

	return e
}

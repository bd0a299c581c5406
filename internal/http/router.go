package http

import (
	"log/slog"

	"github.com/geocoder89/bookshelf/internal/auth"
	"github.com/geocoder89/bookshelf/internal/config"
	"github.com/geocoder89/bookshelf/internal/credentials"
	"github.com/geocoder89/bookshelf/internal/http/handlers"
	"github.com/geocoder89/bookshelf/internal/http/middlewares"
	"github.com/geocoder89/bookshelf/internal/library"
	"github.com/geocoder89/bookshelf/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps are the long-lived services the routes are built on. Prom, Gatherer
// and Health are optional.
type Deps struct {
	Accounts *credentials.Store
	Books    *library.Store
	Tokens   *auth.Manager
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Health   *handlers.HealthHandler
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders(!cfg.IsDev()))
	r.Use(middlewares.CORSMiddleware(cfg.Origins()))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	// operational
	health := deps.Health
	if health == nil {
		health = handlers.NewHealthHandler(nil)
	}
	r.GET("/", handlers.Welcome)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	errs := handlers.ErrorPolicy{ExposeInternal: cfg.IsDev(), Log: log}

	authMW := middlewares.NewAuthMiddleware(deps.Tokens, deps.Accounts)
	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Books, deps.Tokens, errs, deps.Prom)
	booksHandler := handlers.NewBooksHandler(deps.Books, errs)

	api := r.Group("/api/auth")
	api.Use(middlewares.RequireJSON())
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		protected := api.Group("")
		protected.Use(authMW.RequireAuth())
		protected.DELETE("/delete", authHandler.Delete)
		protected.GET("/me", authHandler.Me)
		protected.PUT("/me", authHandler.UpdateMe)
	}

	books := r.Group("/books")
	books.Use(authMW.RequireAuth(), middlewares.RequireJSON())
	{
		books.POST("", booksHandler.CreateBook)
		books.GET("", booksHandler.ListBooks)
		books.GET("/:id", booksHandler.GetBookByID)
		books.PUT("/:id", booksHandler.UpdateBook)
		books.DELETE("/:id", booksHandler.DeleteBook)
	}

	return r
}

package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/thev1ndu/xp/auth"
	"github.com/thev1ndu/xp/config"
	"github.com/thev1ndu/xp/middleware"
	"github.com/thev1ndu/xp/shop"
)

// App represents the XP shop web application
type App struct {
	engine      *gin.Engine
	config      *config.Config
	logger      zerolog.Logger
	shop        *shop.Service
	sessions    *auth.SessionManager
	shopHandler *ShopHandler
	httpServer  *http.Server
	onShutdown  []func()
}

// Options holds server configuration options
type Options struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Shop     *shop.Service
	Sessions *auth.SessionManager
}

// New creates a new application
func New(opts Options) (*App, error) {
	// Balances are sent to the browser as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	if opts.Config.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	engine.SetHTMLTemplate(tmpl)

	app := &App{
		engine:   engine,
		config:   opts.Config,
		logger:   opts.Logger,
		shop:     opts.Shop,
		sessions: opts.Sessions,
	}
	app.shopHandler = NewShopHandler(app)

	return app, nil
}

// UseCommonMiddlewares adds common middlewares to the application
func (a *App) UseCommonMiddlewares() {
	// Recovery middleware (must be first)
	a.engine.Use(middleware.Recovery(a.logger))
	a.engine.Use(middleware.TraceID())
	a.engine.Use(middleware.Logging(a.logger))
	a.engine.Use(middleware.Timeout(a.config.Server.RequestTimeout))
}

// RegisterHealthCheck adds health check endpoints
func (a *App) RegisterHealthCheck() {
	a.engine.GET("/health", a.healthCheck)
	a.engine.GET("/api/healthcheck", a.shopHandler.Healthcheck)
}

func (a *App) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now(),
		"environment": a.config.Environment,
	})
}

// RegisterShopRoutes registers the site routes
//
// Flow: HTTP Request -> SessionMiddleware -> ShopHandler -> shop.Service -> RCON
//
// Routes registered:
//   - GET/POST /login        -> ShopHandler.LoginPage / Login
//   - POST     /logout       -> ShopHandler.Logout
//   - GET      /             -> ShopHandler.Index
//   - GET/POST /register     -> ShopHandler.RegisterPage / Register
//   - GET      /shop         -> ShopHandler.Shop
//   - POST     /buy_xp       -> ShopHandler.BuyXP
//   - POST     /api/register -> ShopHandler.APIRegister
func (a *App) RegisterShopRoutes() {
	h := a.shopHandler

	a.engine.GET("/login", h.LoginPage)
	a.engine.POST("/login", h.Login)
	a.engine.POST("/logout", h.Logout)

	site := a.engine.Group("/", a.sessions.Middleware())
	{
		site.GET("/", h.Index)
		site.GET("/register", h.RegisterPage)
		site.POST("/register", h.Register)
		site.GET("/shop", h.Shop)
		site.POST("/buy_xp", h.BuyXP)
		site.POST("/api/register", h.APIRegister)
	}

	a.logger.Info().Int("skills", len(a.shop.Catalog().Skills())).Msg("Shop routes registered")
}

// Router returns the Gin engine for custom route registration
func (a *App) Router() *gin.Engine {
	return a.engine
}

// OnShutdown registers a function to be called on shutdown
func (a *App) OnShutdown(fn func()) {
	a.onShutdown = append(a.onShutdown, fn)
}

func (a *App) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.engine,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunWithContext(ctx)
}

// RunWithContext starts the HTTP server and shuts it down when ctx is done
func (a *App) RunWithContext(ctx context.Context) error {
	a.httpServer = a.newHTTPServer()

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info().
			Int("port", a.config.Server.Port).
			Str("environment", a.config.Environment).
			Str("rcon", a.config.RCON.Addr()).
			Msg("Starting HTTP server")

		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return a.shutdown()
	case err := <-errChan:
		return err
	}
}

func (a *App) shutdown() error {
	a.logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Let in-flight purchases finish before releasing dependencies
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Error during server shutdown")
		return err
	}

	for _, fn := range a.onShutdown {
		fn()
	}

	a.logger.Info().Msg("Server shutdown complete")
	return nil
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger
func (a *App) Logger() zerolog.Logger {
	return a.logger
}

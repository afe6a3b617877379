// Package pubfront is a server-rendered blog front-end built with Go, Echo
// and templ. It owns no data: article, category, tag and user data come from
// a remote JSON API on every request.
//
// Users provide the page components via the ViewFuncs struct; pubfront owns
// routing, data loading, sessions and the error pages.
package pubfront

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/eringen/pubfront/api"
	"github.com/eringen/pubfront/logger"
)

// ViewFuncs holds the page components the handlers render.
type ViewFuncs struct {
	Article     func(page ArticlePage, layout Layout) templ.Component
	Listing     func(page ListingPage, layout Layout) templ.Component
	Login       func(showError bool, message string, layout Layout) templ.Component
	NotFound    func(layout Layout) templ.Component
	ServerError func(layout Layout) templ.Component
}

// App wires together the API client, caches, handlers, middleware and views.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	API    *api.Client
	Index  *IndexCache
	Views  ViewFuncs

	loginLimiter *LoginLimiter
	validate     *validator.Validate
	apiConfig    *api.Config
	cacheBackend CacheBackend
	customRoutes []func(*App)
	staticDir    string
}

// New creates an App ready to serve. Routes and middleware are registered
// immediately so the App can be exercised through Echo.ServeHTTP.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config:    cfg,
		Echo:      e,
		Views:     views,
		validate:  validator.New(),
		staticDir: "public",
	}
	for _, opt := range opts {
		opt(a)
	}

	a.API = api.New(a.fetchConfig())
	if a.cacheBackend == nil {
		a.cacheBackend = NewMemoryBackend()
	}
	a.Index = NewIndexCache(a.cacheBackend, cfg.CacheTTL, a.fetchRecent)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a
}

// Start listens on Config.Addr and blocks until the server stops.
func (a *App) Start() error {
	logger.Info().Str("addr", a.Config.Addr).Str("api", a.Config.APIURL).Msg("starting server")
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/healthz", handleHealth)

	e.GET("/", a.handleHome)
	e.GET("/article/:slug", a.handleArticle)
	e.GET("/category/:slug", a.handleCategory)
	e.GET("/tag/:slug", a.handleTag)

	e.GET("/login", a.handleLoginForm)
	e.POST("/login", a.handleLogin)
	e.POST("/logout", handleLogout)
}

// Close releases the cache backend and stops background work.
func (a *App) Close() error {
	a.loginLimiter.Stop()
	if c, ok := a.cacheBackend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

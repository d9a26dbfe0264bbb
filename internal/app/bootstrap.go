package app

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"freelance-hub/internal/config"
	"freelance-hub/internal/delivery/http/handler"
	"freelance-hub/internal/delivery/http/middleware"
	"freelance-hub/internal/delivery/http/routes"
	"freelance-hub/internal/pkg/logger"
	"freelance-hub/internal/ws"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the logger, the dependency container and the HTTP app.
// The returned cleanup releases everything in reverse order.
func Bootstrap(cfg config.Config) (*App, func() error, error) {
	log, err := logger.NewStructured(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	log = log.With(logger.Fields{"app": cfg.App.AppName, "env": cfg.App.Environment})

	c, err := NewContainer(cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}

	cleanup := func() error {
		err := c.Close()
		_ = log.Sync()
		return err
	}
	return New(c), cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(c.Logger).Middleware())

	origins := c.Config.App.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions},
		AllowHeaders: []string{fiber.HeaderContentType, fiber.HeaderAcceptLanguage, middleware.HeaderRequestID},
	}))
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	routes.NewRegistry(routes.Handlers{
		Health:      handler.NewHealthHandler(c.HealthChecks),
		Translation: handler.NewTranslationHandler(c.TaxonomyUC, c.Logger),
		Taxonomy:    handler.NewTaxonomyHandler(c.TaxonomyUC, c.Translator),
		Profile:     handler.NewProfileHandler(c.ProfileUC, c.Translator),
		Events:      ws.NewHandler(c.Hub, c.Logger),
		Metrics:     adaptor.HTTPHandler(promhttp.Handler()),
	}).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}

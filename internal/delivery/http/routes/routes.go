package routes

import (
	"github.com/gofiber/fiber/v3"

	"freelance-hub/internal/delivery/http/handler"
	"freelance-hub/internal/ws"
)

type Handlers struct {
	Health      *handler.HealthHandler
	Translation *handler.TranslationHandler
	Taxonomy    *handler.TaxonomyHandler
	Profile     *handler.ProfileHandler
	Events      *ws.Handler
	Metrics     fiber.Handler
}

type Registry struct {
	h Handlers
}

func NewRegistry(h Handlers) *Registry {
	return &Registry{h: h}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerOperational(app)
	r.registerAPI(app)
}

func (r *Registry) registerOperational(app *fiber.App) {
	if r.h.Health != nil {
		r.h.Health.RegisterRoutes(app)
	}
	if r.h.Metrics != nil {
		app.Get("/metrics", r.h.Metrics)
	}
	if r.h.Events != nil {
		r.h.Events.RegisterRoutes(app)
	}
	if r.h.Translation != nil {
		r.h.Translation.RegisterLocaleRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	if r.h.Translation != nil {
		r.h.Translation.RegisterRoutes(api)
	}
	RegisterV1(api.Group("/v1"), r.h)
}

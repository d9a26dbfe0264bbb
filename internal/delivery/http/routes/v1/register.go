package v1

import (
	"github.com/gofiber/fiber/v3"

	"freelance-hub/internal/delivery/http/handler"
)

func Register(r fiber.Router, taxonomy *handler.TaxonomyHandler, profiles *handler.ProfileHandler) {
	if r == nil {
		return
	}

	if taxonomy != nil {
		taxonomy.RegisterRoutes(r)
	}
	if profiles != nil {
		profiles.RegisterRoutes(r)
	}
}

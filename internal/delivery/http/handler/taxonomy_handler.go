package handler

import (
	"github.com/gofiber/fiber/v3"

	"freelance-hub/internal/pkg/response"
	"freelance-hub/internal/usecase"
)

type TaxonomyHandler struct {
	uc  usecase.TaxonomyUsecase
	loc Localizer
}

func NewTaxonomyHandler(uc usecase.TaxonomyUsecase, loc Localizer) *TaxonomyHandler {
	return &TaxonomyHandler{uc: uc, loc: loc}
}

func (h *TaxonomyHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/taxonomy")
	grp.Get("/", h.Options)
	grp.Get("/:industry/work-types", h.WorkTypes)
}

func (h *TaxonomyHandler) Options(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.uc.Options(requestLang(c, h.loc)))
}

// WorkTypes is the cascading selector; an unknown industry returns an
// empty list rather than 404.
func (h *TaxonomyHandler) WorkTypes(c fiber.Ctx) error {
	opts := h.uc.WorkTypeOptions(requestLang(c, h.loc), c.Params("industry"))
	return response.Success(c, fiber.StatusOK, response.MessageOK, opts)
}

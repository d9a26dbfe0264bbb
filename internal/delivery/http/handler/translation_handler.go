package handler

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"freelance-hub/internal/delivery/http/dto"
	"freelance-hub/internal/domain/taxonomy"
	"freelance-hub/internal/pkg/logger"
	"freelance-hub/internal/pkg/response"
	"freelance-hub/internal/pkg/validation"
	"freelance-hub/internal/usecase"
)

var updateTranslationSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"type"},
	"anyOf": []interface{}{
		map[string]interface{}{"required": []interface{}{"key"}},
		map[string]interface{}{"required": []interface{}{"name"}},
	},
	"properties": map[string]interface{}{
		"type":     map[string]interface{}{"type": "string", "enum": []interface{}{"industry", "workType"}},
		"key":      map[string]interface{}{"type": "string"},
		"industry": map[string]interface{}{"type": "string"},
		"name":     map[string]interface{}{"type": "string"},
		"isEdit":   map[string]interface{}{"type": "boolean"},
		"translations": map[string]interface{}{
			"type":                 "object",
			"additionalProperties": map[string]interface{}{"type": "string"},
		},
	},
})

var deleteTranslationSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"type", "key"},
	"properties": map[string]interface{}{
		"type":     map[string]interface{}{"type": "string", "enum": []interface{}{"industry", "workType"}},
		"key":      map[string]interface{}{"type": "string", "minLength": 1},
		"industry": map[string]interface{}{"type": "string"},
	},
})

// TranslationHandler serves the taxonomy admin endpoints and the locale
// documents the UI loads at startup.
type TranslationHandler struct {
	uc     usecase.TaxonomyUsecase
	logger logger.Logger
}

func NewTranslationHandler(uc usecase.TaxonomyUsecase, l logger.Logger) *TranslationHandler {
	return &TranslationHandler{uc: uc, logger: logger.OrNop(l)}
}

func (h *TranslationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/translations")
	grp.Post("/update", h.Update)
	grp.Post("/delete", h.Delete)
}

func (h *TranslationHandler) RegisterLocaleRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/locales/:lang/translation.json", h.Locale)
}

func (h *TranslationHandler) Update(c fiber.Ctx) error {
	body := c.Body()
	if err := updateTranslationSchema.ValidateJSON(body); err != nil {
		return response.TranslationError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	var req dto.UpdateTranslationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return response.TranslationError(c, fiber.StatusBadRequest, "invalid JSON body")
	}

	err := h.uc.Update(c.Context(), usecase.UpdateInput{
		Type:         req.Type,
		Key:          req.Key,
		Industry:     req.Industry,
		Name:         req.Name,
		Translations: req.Translations,
		IsEdit:       req.IsEdit,
	})
	if err != nil {
		return response.TranslationError(c, statusFor(err), err.Error())
	}
	return response.TranslationSuccess(c)
}

func (h *TranslationHandler) Delete(c fiber.Ctx) error {
	body := c.Body()
	if err := deleteTranslationSchema.ValidateJSON(body); err != nil {
		return response.TranslationError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	var req dto.DeleteTranslationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return response.TranslationError(c, fiber.StatusBadRequest, "invalid JSON body")
	}

	err := h.uc.Delete(c.Context(), usecase.DeleteInput{
		Type:     req.Type,
		Key:      req.Key,
		Industry: req.Industry,
	})
	if err != nil {
		return response.TranslationError(c, statusFor(err), err.Error())
	}
	return response.TranslationSuccess(c)
}

// Locale returns the raw document, without the envelope, in the shape the
// UI translation backend expects.
func (h *TranslationHandler) Locale(c fiber.Ctx) error {
	lang := taxonomy.Lang(strings.ToLower(c.Params("lang")))
	doc, err := h.uc.Document(lang)
	if err != nil {
		return mapUsecaseError(err)
	}
	c.Set(fiber.HeaderCacheControl, "no-cache")
	return c.JSON(doc)
}

func validationMessage(err error) string {
	var verr *validation.Error
	if errors.As(err, &verr) && len(verr.Violations) > 0 {
		return strings.Join(verr.Violations, "; ")
	}
	return err.Error()
}

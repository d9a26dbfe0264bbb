package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"freelance-hub/internal/delivery/http/dto"
	"freelance-hub/internal/delivery/http/middleware"
	"freelance-hub/internal/domain/filter"
	"freelance-hub/internal/pkg/response"
	"freelance-hub/internal/pkg/validation"
	"freelance-hub/internal/usecase"
)

const dateLayout = "2006-01-02"

var signUpSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"name", "email", "workPreferences"},
	"properties": map[string]interface{}{
		"name":    map[string]interface{}{"type": "string", "minLength": 1},
		"email":   map[string]interface{}{"type": "string", "minLength": 3},
		"avatar":  map[string]interface{}{"type": []interface{}{"string", "null"}},
		"aboutMe": map[string]interface{}{"type": "string"},
		"workPreferences": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"industry", "workType"},
				"properties": map[string]interface{}{
					"industry":       map[string]interface{}{"type": "string"},
					"workType":       map[string]interface{}{"type": "string"},
					"specialtyNote":  map[string]interface{}{"type": "string"},
					"experienceNote": map[string]interface{}{"type": "string"},
				},
			},
		},
	},
})

type ProfileHandler struct {
	uc  usecase.ProfileUsecase
	loc Localizer
	now func() time.Time
}

func NewProfileHandler(uc usecase.ProfileUsecase, loc Localizer) *ProfileHandler {
	return &ProfileHandler{uc: uc, loc: loc, now: time.Now}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/profiles")
	grp.Get("/", h.List)
	grp.Post("/", h.SignUp)
	grp.Get("/facets", h.Facets)
	grp.Get("/:id", h.Get)
}

func (h *ProfileHandler) List(c fiber.Ctx) error {
	sel, err := h.parseSelection(c)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	}

	res, err := h.uc.List(c.Context(), sel, requestLang(c, h.loc))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *ProfileHandler) Facets(c fiber.Ctx) error {
	facets, err := h.uc.Facets(c.Context(), requestLang(c, h.loc))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, facets)
}

func (h *ProfileHandler) Get(c fiber.Ctx) error {
	lang := requestLang(c, h.loc)
	view, err := h.uc.Get(c.Context(), c.Params("id"), lang)
	if errors.Is(err, usecase.ErrProfileNotFound) {
		msg := "Profile not found"
		if h.loc != nil {
			msg = h.loc.T(lang, "profilePage.notFound", nil)
		}
		return middleware.NewAppError(fiber.StatusNotFound, msg, nil, err)
	}
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, view)
}

func (h *ProfileHandler) SignUp(c fiber.Ctx) error {
	if err := signUpSchema.ValidateJSON(c.Body()); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, validationMessage(err), nil, err)
	}

	var req dto.SignUpRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageBadRequest, nil, err)
	}

	in := usecase.SignUpInput{
		Name:    req.Name,
		Email:   req.Email,
		Avatar:  req.Avatar,
		AboutMe: req.AboutMe,
	}
	for _, p := range req.WorkPreferences {
		in.Preferences = append(in.Preferences, usecase.PreferenceInput{
			Industry:       p.Industry,
			WorkType:       p.WorkType,
			SpecialtyNote:  p.SpecialtyNote,
			ExperienceNote: p.ExperienceNote,
		})
	}

	created, err := h.uc.SignUp(c.Context(), in)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, created)
}

// parseSelection reads industry and workType as repeated or comma
// separated query values, plus an optional availability constraint.
func (h *ProfileHandler) parseSelection(c fiber.Ctx) (filter.Selection, error) {
	var sel filter.Selection
	for _, dim := range []filter.Dimension{filter.DimIndustry, filter.DimWorkType} {
		for _, v := range queryValues(c, string(dim)) {
			if err := sel.SetFilter(dim, v, true); err != nil {
				return filter.Selection{}, err
			}
		}
	}

	kind := strings.TrimSpace(c.Query("availability"))
	if kind == "" {
		return sel, nil
	}

	var a filter.Availability
	switch filter.AvailabilityKind(kind) {
	case filter.AvailabilityDay:
		d, err := parseDate(c.Query("date"))
		if err != nil {
			return filter.Selection{}, err
		}
		a = filter.Day(d)
	case filter.AvailabilityRange:
		from, err := parseDate(c.Query("from"))
		if err != nil {
			return filter.Selection{}, err
		}
		to, err := parseDate(c.Query("to"))
		if err != nil {
			return filter.Selection{}, err
		}
		a = filter.Range(from, to)
	case filter.AvailabilityWeek:
		a = filter.NextWeek(h.now())
	default:
		return filter.Selection{}, errors.New("availability must be day, range or week")
	}
	if err := sel.SetAvailability(&a); err != nil {
		return filter.Selection{}, err
	}
	return sel, nil
}

func queryValues(c fiber.Ctx, name string) []string {
	var out []string
	for _, raw := range c.Request().URI().QueryArgs().PeekMulti(name) {
		for _, part := range strings.Split(string(raw), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.New("dates must use YYYY-MM-DD")
	}
	return t, nil
}

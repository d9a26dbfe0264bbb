package handler

import (
	"github.com/gofiber/fiber/v3"

	"freelance-hub/internal/domain/taxonomy"
)

// Localizer picks the response language and renders UI messages.
type Localizer interface {
	Negotiate(explicit, acceptLanguage string) taxonomy.Lang
	T(lang taxonomy.Lang, key string, params map[string]any) string
}

func requestLang(c fiber.Ctx, l Localizer) taxonomy.Lang {
	if l == nil {
		return taxonomy.EN
	}
	return l.Negotiate(c.Query("lang"), c.Get(fiber.HeaderAcceptLanguage))
}

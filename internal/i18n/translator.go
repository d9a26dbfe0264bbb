// Package i18n resolves translation keys against the live locale documents
// and picks a response language for a request.
package i18n

import (
	"fmt"
	"regexp"
	"strconv"

	"golang.org/x/text/language"

	"freelance-hub/internal/domain/taxonomy"
)

type Params = map[string]any

// Source supplies the current locale documents.
type Source interface {
	Snapshot() *taxonomy.Snapshot
}

type Translator struct {
	src      Source
	langs    []taxonomy.Lang
	fallback taxonomy.Lang
	matcher  language.Matcher
}

// New builds a Translator. The first language is the fallback.
func New(src Source, langs []taxonomy.Lang) *Translator {
	if len(langs) == 0 {
		langs = taxonomy.DefaultLanguages
	}
	tags := make([]language.Tag, 0, len(langs))
	for _, l := range langs {
		tags = append(tags, language.Make(string(l)))
	}
	return &Translator{
		src:      src,
		langs:    append([]taxonomy.Lang(nil), langs...),
		fallback: langs[0],
		matcher:  language.NewMatcher(tags),
	}
}

func (t *Translator) Languages() []taxonomy.Lang {
	return append([]taxonomy.Lang(nil), t.langs...)
}

func (t *Translator) Fallback() taxonomy.Lang {
	return t.fallback
}

// Negotiate prefers an explicit language code, then the Accept-Language
// header, then the fallback.
func (t *Translator) Negotiate(explicit, acceptLanguage string) taxonomy.Lang {
	if l, ok := taxonomy.ParseLang(explicit, t.langs); ok {
		return l
	}
	if acceptLanguage == "" {
		return t.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.fallback
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(t.langs) {
		return t.fallback
	}
	return t.langs[idx]
}

// T resolves key in lang, falling back to the fallback language and
// finally to the key itself. A "count" param selects key_one or key_other
// when those exist. {{name}} placeholders are filled from params.
func (t *Translator) T(lang taxonomy.Lang, key string, params Params) string {
	var snap *taxonomy.Snapshot
	if t.src != nil {
		snap = t.src.Snapshot()
	}

	candidates := []string{key}
	if n, ok := countOf(params); ok {
		suffix := "_other"
		if n == 1 {
			suffix = "_one"
		}
		candidates = []string{key + suffix, key}
	}

	for _, l := range uniqueLangs(lang, t.fallback) {
		for _, k := range candidates {
			if v, ok := snap.Lookup(l, k); ok {
				if s, ok := v.(string); ok {
					return interpolate(s, params)
				}
			}
		}
	}
	return key
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

func interpolate(s string, params Params) string {
	if len(params) == 0 {
		return s
	}
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		v, ok := params[name]
		if !ok {
			return m
		}
		return formatParam(v)
	})
}

func formatParam(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

func countOf(params Params) (float64, bool) {
	v, ok := params["count"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func uniqueLangs(primary, fallback taxonomy.Lang) []taxonomy.Lang {
	if primary == "" || primary == fallback {
		return []taxonomy.Lang{fallback}
	}
	return []taxonomy.Lang{primary, fallback}
}

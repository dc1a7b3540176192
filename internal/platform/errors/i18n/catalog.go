// Package i18n renders user-facing messages for domain error codes.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
)

// BaseLocale is the canonical source locale for catalogs.
const BaseLocale = "en-US"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[string]string
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{
		BaseLocale: {locale: BaseLocale, messages: enUS},
	}
)

// RegisterCatalog installs or replaces the catalog for a locale.
func RegisterCatalog(locale string, messages map[string]string) {
	normalized := normalizeLocale(locale)
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[normalized] = &Catalog{locale: normalized, messages: messages}
}

// GetCatalog returns the catalog best matching the requested locale.
// Falls back to en-US when the locale is unknown or unsupported.
func GetCatalog(locale string) *Catalog {
	requested := normalizeLocale(locale)

	catalogsMu.RLock()
	defer catalogsMu.RUnlock()

	if c, ok := catalogs[requested]; ok {
		return c
	}

	tags := make([]language.Tag, 0, len(catalogs))
	locales := make([]string, 0, len(catalogs))
	// Base locale first so the matcher falls back to it.
	tags = append(tags, language.MustParse(BaseLocale))
	locales = append(locales, BaseLocale)
	for name := range catalogs {
		if name == BaseLocale {
			continue
		}
		tag, err := language.Parse(name)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		locales = append(locales, name)
	}

	matcher := language.NewMatcher(tags)
	_, index, _ := matcher.Match(language.Make(requested))
	return catalogs[locales[index]]
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

func normalizeLocale(locale string) string {
	trimmed := strings.TrimSpace(locale)
	if trimmed == "" {
		return BaseLocale
	}
	return trimmed
}

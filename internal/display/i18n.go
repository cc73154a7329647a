package display

import (
	"embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/smokyabdulrahman/ramadan-status/internal/logger"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle
	languages  []string
)

// loadBundle reads every locales/active.<lang>.json file once.
func loadBundle() *i18n.Bundle {
	bundleOnce.Do(func() {
		log := logger.Named("i18n")
		bundle = i18n.NewBundle(language.English)
		bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

		entries, err := localeFS.ReadDir("locales")
		if err != nil {
			log.Error().Err(err).Msg("cannot read embedded locales")
			return
		}
		for _, entry := range entries {
			name := entry.Name()
			lang := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
			if lang == "" || lang == name {
				log.Warn().Str("file", name).Msg("skipping locale file")
				continue
			}
			if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
				log.Error().Err(err).Str("file", name).Msg("cannot load locale")
				continue
			}
			languages = append(languages, lang)
		}
	})
	return bundle
}

// Languages returns the embedded language codes.
func Languages() []string {
	loadBundle()
	return append([]string(nil), languages...)
}

// Translator localizes the fixed strings of the terminal output.
type Translator struct {
	loc *i18n.Localizer
}

// NewTranslator returns a Translator for lang. Unknown languages and
// missing messages fall back to English.
func NewTranslator(lang string) *Translator {
	return &Translator{loc: i18n.NewLocalizer(loadBundle(), lang, "en")}
}

// T translates id, returning id itself when no translation exists.
func (t *Translator) T(id string, data map[string]any) string {
	msg, err := t.loc.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		return id
	}
	return msg
}

// N translates a plural message for count n. The template sees n as .Count.
func (t *Translator) N(id string, n int) string {
	msg, err := t.loc.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		PluralCount:  n,
		TemplateData: map[string]any{"Count": n},
	})
	if err != nil {
		return id
	}
	return msg
}

// Package messages holds the user-facing strings of both frontends.
package messages

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localesFS embed.FS

// Message IDs, matching the keys in locales/active.*.toml.
const (
	AppTitle         = "AppTitle"
	CityPlaceholder  = "CityPlaceholder"
	SubmitLabel      = "SubmitLabel"
	EmptyCity        = "EmptyCity"
	ResultsTitle     = "ResultsTitle"
	Loading          = "Loading"
	FetchFailed      = "FetchFailed"
	TemperatureLabel = "TemperatureLabel"
	HumidityLabel    = "HumidityLabel"
	WindLabel        = "WindLabel"
	ConditionLabel   = "ConditionLabel"
	SearchAnother    = "SearchAnother"
)

// Catalog resolves message IDs for one language, falling back to English.
type Catalog struct {
	localizer *i18n.Localizer
}

// Load builds a Catalog for lang (a BCP 47 tag such as "en" or "es").
func Load(lang string) (*Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(localesFS, "locales/*.toml")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(localesFS, f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	return &Catalog{localizer: i18n.NewLocalizer(bundle, lang, language.English.String())}, nil
}

// Text returns the message for id. Unknown IDs come back unchanged.
func (c *Catalog) Text(id string) string {
	return c.Format(id, nil)
}

// Format returns the message for id with data substituted into its template.
func (c *Catalog) Format(id string, data map[string]any) string {
	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		slog.Warn("missing message", "id", id, "err", err)
		return id
	}
	return msg
}

// Package locale translates the labels shown by the story list.
// English source strings double as catalog keys.
package locale

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

type pluralEntry struct {
	singular, plural string
}

// plurals are keyed on the plural source string.
var plurals = map[string]pluralEntry{
	"%d Stories": {"%d Story", "%d Stories"},
}

var translations = map[language.Tag]map[string]string{
	language.German: {
		"Story name":        "Name der Geschichte",
		"Last changed date": "Zuletzt geändert",
		"%d Story":          "%d Geschichte",
		"%d Stories":        "%d Geschichten",
		"New story":         "Neue Geschichte",
		"Rename story":      "Geschichte umbenennen",
		"Delete":            "Löschen",
		"Import":            "Importieren",
	},
	language.French: {
		"Story name":        "Nom de l'histoire",
		"Last changed date": "Date de modification",
		"%d Story":          "%d histoire",
		"%d Stories":        "%d histoires",
		"New story":         "Nouvelle histoire",
		"Rename story":      "Renommer l'histoire",
		"Delete":            "Supprimer",
		"Import":            "Importer",
	},
}

var supported = []language.Tag{language.English, language.German, language.French}

type Locale struct {
	tag     language.Tag
	printer *message.Printer
}

func buildCatalog() (*catalog.Builder, error) {
	b := catalog.NewBuilder()
	for _, tag := range supported {
		table := translations[tag]
		for key, msg := range table {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, err
			}
		}
		for key, p := range plurals {
			one, other := p.singular, p.plural
			if tr, ok := table[one]; ok {
				one = tr
			}
			if tr, ok := table[other]; ok {
				other = tr
			}
			err := b.Set(tag, key, plural.Selectf(1, "%d", "=1", one, "other", other))
			if err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// New returns a Locale for the requested language (a BCP 47 tag such
// as "de" or "fr-CA"). Unsupported languages fall back to English.
func New(lang string) (*Locale, error) {
	cat, err := buildCatalog()
	if err != nil {
		return nil, err
	}
	tag := language.English
	if lang != "" {
		matcher := language.NewMatcher(supported)
		_, idx, conf := matcher.Match(language.Make(lang))
		if conf != language.No {
			tag = supported[idx]
		}
	}
	return &Locale{tag: tag, printer: message.NewPrinter(tag, message.Catalog(cat))}, nil
}

func (l *Locale) Tag() language.Tag { return l.tag }

func (l *Locale) Say(key string) string {
	return l.printer.Sprintf(key)
}

// SayPlural picks the singular or plural form for n and formats n into it.
func (l *Locale) SayPlural(singular, pluralForm string, n int) string {
	if _, ok := plurals[pluralForm]; ok {
		return l.printer.Sprintf(pluralForm, n)
	}
	if n == 1 {
		return l.printer.Sprintf(singular, n)
	}
	return l.printer.Sprintf(pluralForm, n)
}

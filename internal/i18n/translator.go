// internal/i18n/translator.go
package i18n

import "strings"

// Translator resolves a user-facing phrase, keyed by its literal English
// form, and substitutes named {{placeholder}} parameters after lookup.
type Translator interface {
	Translate(msg string, params map[string]string) string
}

type passthrough struct{}

func (passthrough) Translate(msg string, params map[string]string) string {
	return Substitute(msg, params)
}

// Passthrough returns a Translator that keeps every phrase in English.
func Passthrough() Translator {
	return passthrough{}
}

// Catalog translates through a phrase lookup table, falling back to the
// English phrase when no entry exists.
type Catalog struct {
	entries map[string]string
}

// NewCatalog builds a Catalog from English-phrase -> translation entries.
func NewCatalog(entries map[string]string) *Catalog {
	return &Catalog{entries: entries}
}

func (c *Catalog) Translate(msg string, params map[string]string) string {
	if t, ok := c.entries[msg]; ok {
		msg = t
	}
	return Substitute(msg, params)
}

// Substitute replaces {{name}} placeholders with values from params.
// Placeholders without a matching parameter are removed so a missing value
// degrades to blank content instead of leaking template syntax.
func Substitute(msg string, params map[string]string) string {
	for k, v := range params {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", v)
	}

	for {
		start := strings.Index(msg, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(msg[start:], "}}")
		if end == -1 {
			break
		}
		msg = msg[:start] + msg[start+end+2:]
	}

	return msg
}

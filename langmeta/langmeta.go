// Package langmeta provides language display metadata (native and English
// names, emoji flags) for CLI output.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	// Name is the language's name in itself ("Español").
	Name string
	// English is the English name ("Spanish").
	English string
	// Flag is the emoji flag of the most likely region, or "".
	Flag string
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort language metadata for language codes,
// supporting variants like pt_BR and pt-BR. Codes x/text does not know
// are passed through as the name.
func Resolve(lang string) Meta {
	tag, err := language.Parse(canonicalize(lang))
	if err != nil {
		return Meta{Name: lang, English: lang}
	}

	m := Meta{
		Name:    display.Self.Name(tag),
		English: display.English.Tags().Name(tag),
	}
	if m.Name == "" {
		m.Name = lang
	}
	if m.English == "" {
		m.English = lang
	}

	if region, conf := tag.Region(); conf >= language.Low {
		m.Flag = Flag(region.String())
	}
	return m
}

// Flag converts a two-letter region code into its emoji flag.
func Flag(region string) string {
	if len(region) != 2 {
		return ""
	}
	var b strings.Builder
	for _, c := range strings.ToUpper(region) {
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (c - 'A'))
	}
	return b.String()
}

// Label formats a language for lists: "español (Spanish)".
func Label(lang string) string {
	m := Resolve(lang)
	if m.Name == m.English {
		return m.Name
	}
	return m.Name + " (" + m.English + ")"
}

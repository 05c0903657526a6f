package engine

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// DefaultModel is the model the sidecars are expected to serve.
const DefaultModel = "facebook/m2m100_418M"

// languageTokenBase is the id of the first language token; language tokens
// follow the 128000-entry SentencePiece vocabulary and four special tokens.
const languageTokenBase = 128004

// m2m100Languages lists the model's language codes in token order.
var m2m100Languages = []string{
	"af", "am", "ar", "ast", "az", "ba", "be", "bg", "bn", "br",
	"bs", "ca", "ceb", "cs", "cy", "da", "de", "el", "en", "es",
	"et", "fa", "ff", "fi", "fr", "fy", "ga", "gd", "gl", "gu",
	"ha", "he", "hi", "hr", "ht", "hu", "hy", "id", "ig", "ilo",
	"is", "it", "ja", "jv", "ka", "kk", "km", "kn", "ko", "lb",
	"lg", "ln", "lo", "lt", "lv", "mg", "mk", "ml", "mn", "mr",
	"ms", "my", "ne", "nl", "no", "ns", "oc", "or", "pa", "pl",
	"ps", "pt", "ro", "ru", "sd", "si", "sk", "sl", "so", "sq",
	"sr", "ss", "su", "sv", "sw", "ta", "th", "tl", "tn", "tr",
	"uk", "ur", "uz", "vi", "wo", "xh", "yi", "yo", "zh", "zu",
}

var langIndex = func() map[string]int {
	m := make(map[string]int, len(m2m100Languages))
	for i, code := range m2m100Languages {
		m[code] = i
	}
	return m
}()

// Languages returns the supported language codes in model order.
func Languages() []string {
	out := make([]string, len(m2m100Languages))
	copy(out, m2m100Languages)
	return out
}

// NormalizeCode maps a language code or BCP 47 tag to the model's code,
// e.g. "pt-BR" → "pt", "zh_Hans" → "zh", "EN" → "en".
func NormalizeCode(code string) (string, error) {
	c := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(code)), "_", "-")
	if _, ok := langIndex[c]; ok {
		return c, nil
	}

	tag, err := language.Parse(c)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	base, _ := tag.Base()
	if _, ok := langIndex[base.String()]; ok {
		return base.String(), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
}

// LanguageID returns the language token id for code.
func LanguageID(code string) (int, error) {
	c, err := NormalizeCode(code)
	if err != nil {
		return 0, err
	}
	return languageTokenBase + langIndex[c], nil
}

// LanguageToken returns the "__xx__" token text for code.
func LanguageToken(code string) (string, error) {
	c, err := NormalizeCode(code)
	if err != nil {
		return "", err
	}
	return "__" + c + "__", nil
}

// Package i18n translates transjson's own messages.
//
// Catalogs are gettext .po files embedded from locales/<lang>/LC_MESSAGES.
// The user's locale is matched against the embedded catalogs, so "de_AT",
// "de_DE@euro" and "de_DE.UTF-8" all select the German catalog. Messages
// with no matching catalog are shown in English.
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

//go:embed all:locales
var locales embed.FS

const domain = "transjson"

var po *gotext.Locale

// Init loads the catalog that best matches lang. An empty lang means the
// locale from LANGUAGE, LC_ALL, LC_MESSAGES and LANG. Without a match T and
// N return their English arguments.
func Init(lang string) {
	prefs := []string{lang}
	if lang == "" {
		prefs = envLocales()
	}

	po = nil
	name := matchCatalog(prefs)
	if name == "" {
		return
	}
	po = gotext.NewLocaleFSWithPath(name, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates msgid.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a message with plural forms chosen by n.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// envLocales lists the user's locales in gettext priority order: every
// entry of LANGUAGE, then the first of LC_ALL, LC_MESSAGES and LANG.
// C and POSIX are skipped.
func envLocales() []string {
	var out []string
	usable := func(v string) bool {
		v = stripLocale(v)
		return v != "" && v != "C" && v != "POSIX"
	}

	for _, v := range strings.Split(os.Getenv("LANGUAGE"), ":") {
		if usable(v) {
			out = append(out, v)
		}
	}
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(env); usable(v) {
			out = append(out, v)
			break
		}
	}
	return out
}

// stripLocale drops the ".charset" and "@modifier" parts of a POSIX locale.
func stripLocale(s string) string {
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// catalogs returns the embedded catalog names.
func catalogs() []string {
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

// matchCatalog returns the embedded catalog that best serves prefs, in
// order of preference, or "" when English should be used.
func matchCatalog(prefs []string) string {
	var desired []language.Tag
	for _, p := range prefs {
		tag, err := language.Parse(strings.ReplaceAll(stripLocale(p), "_", "-"))
		if err != nil {
			continue
		}
		desired = append(desired, tag)
	}
	if len(desired) == 0 {
		return ""
	}

	// English comes first: it is the messages' own language and the
	// matcher's fallback.
	names := catalogs()
	supported := []language.Tag{language.English}
	var dirs []string
	for _, name := range names {
		tag, err := language.Parse(name)
		if err != nil {
			continue
		}
		supported = append(supported, tag)
		dirs = append(dirs, name)
	}

	_, idx, conf := language.NewMatcher(supported).Match(desired...)
	if idx == 0 || conf < language.High {
		return ""
	}
	return dirs[idx-1]
}

package blogcatalog

import (
	"errors"
	"regexp"
	"slices"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
)

// ErrUnknownLocale is returned for a locale the site does not serve.
var ErrUnknownLocale = errors.New("unknown locale")

var reLocale = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z0-9]{2,8})*$`)

const (
	sessionName      = "blog_prefs"
	sessionLocaleKey = "locale"
)

// localeSet answers which of the served locales best fits a request.
type localeSet struct {
	locales []string
	def     string
	matcher language.Matcher
}

// newLocaleSet builds the set with def first, so it wins when nothing
// in Accept-Language matches.
func newLocaleSet(locales []string, def string) *localeSet {
	ordered := []string{def}
	for _, loc := range locales {
		if !slices.Contains(ordered, loc) {
			ordered = append(ordered, loc)
		}
	}
	tags := make([]language.Tag, 0, len(ordered))
	for _, loc := range ordered {
		tags = append(tags, language.Make(loc))
	}
	return &localeSet{locales: ordered, def: def, matcher: language.NewMatcher(tags)}
}

func (l *localeSet) Has(locale string) bool {
	return slices.Contains(l.locales, locale)
}

// Negotiate picks a locale for an Accept-Language header value.
func (l *localeSet) Negotiate(acceptLanguage string) string {
	if acceptLanguage == "" {
		return l.def
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return l.def
	}
	_, idx, conf := l.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(l.locales) {
		return l.def
	}
	return l.locales[idx]
}

// preferredLocale returns the locale remembered in the session, then the
// Accept-Language choice.
func (a *App) preferredLocale(c echo.Context) string {
	if sess, err := session.Get(sessionName, c); err == nil {
		if loc, ok := sess.Values[sessionLocaleKey].(string); ok && a.locales.Has(loc) {
			return loc
		}
	}
	return a.locales.Negotiate(c.Request().Header.Get("Accept-Language"))
}

func setLocaleSession(c echo.Context, locale string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[sessionLocaleKey] = locale
	return sess.Save(c.Request(), c.Response())
}

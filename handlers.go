package blogcatalog

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blogcatalog/logfields"
	"github.com/eringen/blogcatalog/markdown"
	"github.com/eringen/blogcatalog/views"
)

const (
	maxPageSize  = 100
	relatedLimit = 3
)

func (a *App) handleLocaleRedirect(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/api/"+a.preferredLocale(c)+"/posts")
}

func (a *App) handleSetLocale(c echo.Context) error {
	locale := c.Param("locale")
	if !a.locales.Has(locale) {
		return echo.NewHTTPError(http.StatusNotFound, ErrUnknownLocale.Error())
	}
	if err := setLocaleSession(c, locale); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"locales": a.Config.Locales,
		"cached":  a.Cache.Locales(),
	})
}

func (a *App) handleListPosts(c echo.Context) error {
	cat, err := a.catalog(c)
	if err != nil {
		return err
	}
	spec, err := a.parseFilter(c)
	if err != nil {
		return err
	}
	res := Query(cat, spec)
	a.recorder.IncQuery(cat.Locale, spec.IsFiltered())

	listing := views.Listing{
		Locale:     cat.Locale,
		Posts:      make([]views.PostSummary, 0, len(res.Posts)),
		Page:       res.Page,
		PageSize:   spec.PageSize,
		TotalPages: res.TotalPages,
		Total:      res.Total,
		Filters:    views.Filters{Search: spec.Search, Tag: spec.Tag, Date: spec.Date},
		Meta: views.PageMeta{
			Title:       a.Config.Name,
			Description: a.Config.Description,
			URL:         views.BuildURL(a.Config.URL, cat.Locale),
			OGType:      "website",
			Locale:      cat.Locale,
			Alternates:  a.homeAlternates(),
		},
	}
	for _, p := range res.Posts {
		listing.Posts = append(listing.Posts, a.summary(cat.Locale, p))
	}
	return c.JSON(http.StatusOK, listing)
}

func (a *App) handleGetPost(c echo.Context) error {
	cat, err := a.catalog(c)
	if err != nil {
		return err
	}
	post, err := a.findPost(c, cat, "/api/"+cat.Locale+"/posts/%s")
	if err != nil || post == nil {
		return err
	}

	html, err := markdown.HTML(post.Body)
	if err != nil {
		return fmt.Errorf("render %s: %w", post.DefaultSlug, err)
	}
	summary := a.summary(cat.Locale, *post)
	related := RelatedPosts(*post, SortedPosts(cat.Posts), relatedLimit)
	detail := views.PostDetail{
		PostSummary: summary,
		HTML:        html,
		Related:     make([]views.PostSummary, 0, len(related)),
		JSONLD:      views.BlogPostingJsonLD(a.siteView(), cat.Locale, summary),
		Meta: views.PageMeta{
			Title:       post.Title,
			Description: post.Description,
			URL:         summary.URL,
			OGType:      "article",
			Locale:      cat.Locale,
			Alternates:  a.postAlternates(*post),
		},
	}
	for _, r := range related {
		detail.Related = append(detail.Related, a.summary(cat.Locale, r))
	}
	return c.JSON(http.StatusOK, detail)
}

func (a *App) handlePostBody(c echo.Context) error {
	cat, err := a.catalog(c)
	if err != nil {
		return err
	}
	post, err := a.findPost(c, cat, "/"+cat.Locale+"/blog/%s/body")
	if err != nil || post == nil {
		return err
	}
	return Render(c, markdown.Markdown(post.Body))
}

func (a *App) handleCover(c echo.Context) error {
	cat, err := a.catalog(c)
	if err != nil {
		return err
	}
	post, err := a.findPost(c, cat, "/"+cat.Locale+"/blog/%s/cover.jpg")
	if err != nil || post == nil {
		return err
	}
	if post.Cover == "" || a.coverOpener == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no cover")
	}
	data, err := a.covers.get(a.coverOpener, post.DefaultSlug, post.Cover)
	if errors.Is(err, fs.ErrNotExist) {
		return echo.NewHTTPError(http.StatusNotFound, "no cover")
	}
	if err != nil {
		return fmt.Errorf("cover %s: %w", post.DefaultSlug, err)
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}

func (a *App) handleFacets(c echo.Context) error {
	cat, err := a.catalog(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views.Facets{
		Locale:    cat.Locale,
		Tags:      AllTags(cat.Posts),
		Archives:  ArchiveDates(cat.Posts),
		TagCounts: TagCounts(cat.Posts),
	})
}

func (a *App) handleSitemap(c echo.Context) error {
	catalogs := make(map[string]*Catalog, len(a.Config.Locales))
	for _, loc := range a.Config.Locales {
		cat, err := a.Cache.Get(loc)
		if err != nil {
			return fmt.Errorf("load catalog %s: %w", loc, err)
		}
		catalogs[loc] = cat
	}
	return a.renderSitemap(c, catalogs)
}

func (a *App) handleFeed(c echo.Context) error {
	cat, err := a.catalog(c)
	if err != nil {
		return err
	}
	return a.renderRSS(c, cat)
}

// catalog returns the catalog for the :locale path parameter.
func (a *App) catalog(c echo.Context) (*Catalog, error) {
	locale := c.Param("locale")
	if !a.locales.Has(locale) {
		return nil, echo.NewHTTPError(http.StatusNotFound, ErrUnknownLocale.Error())
	}
	cat, err := a.Cache.Get(locale)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", locale, err)
	}
	return cat, nil
}

// findPost resolves the :slug parameter. A directory name that is not the
// locale's slug redirects to the localized URL built from redirectFormat,
// in which case the returned post is nil.
func (a *App) findPost(c echo.Context, cat *Catalog, redirectFormat string) (*PostRecord, error) {
	slug := c.Param("slug")
	post, err := FindBySlug(cat.Posts, slug)
	if err == nil {
		return &post, nil
	}
	post, err = FindByDefaultSlug(cat.Posts, slug)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	}
	return nil, c.Redirect(http.StatusMovedPermanently, fmt.Sprintf(redirectFormat, post.Slug))
}

// parseFilter reads listing query parameters. Unknown dates are passed
// through and ignored by the query; malformed numbers are rejected.
func (a *App) parseFilter(c echo.Context) (FilterSpec, error) {
	spec := FilterSpec{
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Tag:      strings.TrimSpace(c.QueryParam("tag")),
		Date:     strings.TrimSpace(c.QueryParam("date")),
		Page:     1,
		PageSize: a.Config.PageSize,
	}
	if v := c.QueryParam("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return spec, echo.NewHTTPError(http.StatusBadRequest, "page must be an integer")
		}
		spec.Page = n
	}
	if v := c.QueryParam("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return spec, echo.NewHTTPError(http.StatusBadRequest, "pageSize must be a positive integer")
		}
		spec.PageSize = min(n, maxPageSize)
	}
	return spec, nil
}

func (a *App) siteView() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}

func (a *App) summary(locale string, p PostRecord) views.PostSummary {
	s := views.PostSummary{
		Slug:        p.Slug,
		DefaultSlug: p.DefaultSlug,
		Title:       p.Title,
		Description: p.Description,
		Date:        p.Date,
		Archive:     p.Archive(),
		Tags:        p.Tags,
		URL:         views.PostURL(a.Config.URL, locale, p.Slug),
		Localized:   p.Localized,
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	if p.Cover != "" {
		s.CoverURL = strings.TrimSuffix(a.Config.URL, "/") + "/" + locale + "/blog/" + p.Slug + "/cover.jpg"
	}
	return s
}

func (a *App) homeAlternates() []views.Alternate {
	alts := make([]views.Alternate, 0, len(a.locales.locales))
	for _, loc := range a.locales.locales {
		alts = append(alts, views.Alternate{Locale: loc, URL: views.BuildURL(a.Config.URL, loc)})
	}
	return alts
}

func (a *App) postAlternates(p PostRecord) []views.Alternate {
	alts := make([]views.Alternate, 0, len(a.locales.locales))
	for _, loc := range a.locales.locales {
		alts = append(alts, views.Alternate{Locale: loc, URL: views.PostURL(a.Config.URL, loc, p.SlugFor(loc))})
	}
	return alts
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if code >= http.StatusInternalServerError {
		a.Logger.Error("Server error",
			logfields.Error(err),
			logfields.RequestID(c.Response().Header().Get(echo.HeaderXRequestID)))
		msg = http.StatusText(code)
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, views.ErrorBody{Error: msg})
}

package blogcatalog

import (
	"encoding/xml"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blogcatalog/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string        `xml:"loc"`
	LastMod    string        `xml:"lastmod,omitempty"`
	Alternates []sitemapLink `xml:"xhtml:link"`
}

type sitemapLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

func alternateLinks(alts []views.Alternate, def string) []sitemapLink {
	links := make([]sitemapLink, 0, len(alts)+1)
	for _, alt := range alts {
		links = append(links, sitemapLink{Rel: "alternate", Hreflang: alt.Locale, Href: alt.URL})
		if alt.Locale == def {
			links = append(links, sitemapLink{Rel: "alternate", Hreflang: "x-default", Href: alt.URL})
		}
	}
	return links
}

// buildSitemap lists every locale's home and posts, each with hreflang
// links to its translations. Undated posts have no lastmod.
func (a *App) buildSitemap(catalogs map[string]*Catalog) sitemapURLSet {
	def := a.Config.DefaultLocale
	home := alternateLinks(a.homeAlternates(), def)
	var urls []sitemapURL
	for _, loc := range a.locales.locales {
		cat, ok := catalogs[loc]
		if !ok {
			continue
		}
		urls = append(urls, sitemapURL{Loc: views.BuildURL(a.Config.URL, loc), Alternates: home})
		for _, p := range SortedPosts(cat.Posts) {
			u := sitemapURL{
				Loc:        views.PostURL(a.Config.URL, loc, p.Slug),
				Alternates: alternateLinks(a.postAlternates(p), def),
			}
			if p.HasDate() {
				u.LastMod = p.PublishedAt.Format(dateLayout)
			}
			urls = append(urls, u)
		}
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		XHTML: "http://www.w3.org/1999/xhtml",
		URLs:  urls,
	}
}

func (a *App) renderSitemap(c echo.Context, catalogs map[string]*Catalog) error {
	return renderXML(c, "application/xml; charset=utf-8", a.buildSitemap(catalogs))
}

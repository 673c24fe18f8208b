package blogcatalog

import (
	"encoding/xml"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blogcatalog/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
}

func (a *App) buildRSS(cat *Catalog) rssXML {
	posts := SortedPosts(cat.Posts)
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if p.HasDate() {
			pubDate = p.PublishedAt.Format(time.RFC1123Z)
		}
		postURL := views.PostURL(a.Config.URL, cat.Locale, p.Slug)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Description,
			Categories:  p.Tags,
			PubDate:     pubDate,
			GUID:        postURL,
		})
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        views.BuildURL(a.Config.URL, cat.Locale),
			Description: a.Config.Description,
			Language:    cat.Locale,
			Items:       items,
		},
	}
}

func (a *App) renderRSS(c echo.Context, cat *Catalog) error {
	return renderXML(c, "application/rss+xml; charset=utf-8", a.buildRSS(cat))
}

// Package views holds the JSON shapes served by the catalog API and the
// structured-data helpers used to describe them.
package views

// SiteConfig holds the site-wide settings every response is built from.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page SEO metadata for clients that render <head>.
type PageMeta struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	URL         string      `json:"url"`    // canonical + og:url
	OGType      string      `json:"ogType"` // "website" or "article"
	Locale      string      `json:"locale"`
	Alternates  []Alternate `json:"alternates,omitempty"`
}

// Alternate points at the same page in another locale.
type Alternate struct {
	Locale string `json:"locale"`
	URL    string `json:"url"`
}

// PostSummary is a post as listed, without its body.
type PostSummary struct {
	Slug        string   `json:"slug"`
	DefaultSlug string   `json:"defaultSlug"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date,omitempty"`
	Archive     string   `json:"archive,omitempty"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
	CoverURL    string   `json:"coverUrl,omitempty"`
	Localized   bool     `json:"localized"`
}

// PostDetail is a single post with rendered HTML and related content.
type PostDetail struct {
	PostSummary
	HTML    string        `json:"html"`
	Related []PostSummary `json:"related"`
	JSONLD  string        `json:"jsonLd"`
	Meta    PageMeta      `json:"meta"`
}

// Filters echoes the filters that were applied to a listing.
type Filters struct {
	Search string `json:"search,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Date   string `json:"date,omitempty"`
}

// Listing is one page of posts.
type Listing struct {
	Locale     string        `json:"locale"`
	Posts      []PostSummary `json:"posts"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
	Total      int           `json:"total"`
	Filters    Filters       `json:"filters"`
	Meta       PageMeta      `json:"meta"`
}

// Facets lists the values a listing can be narrowed by.
type Facets struct {
	Locale    string         `json:"locale"`
	Tags      []string       `json:"tags"`
	Archives  []string       `json:"archives"`
	TagCounts map[string]int `json:"tagCounts"`
}

// ErrorBody is the JSON body of every API error.
type ErrorBody struct {
	Error string `json:"error"`
}

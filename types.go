package blogcatalog

import "time"

// PostRecord is one blog post as materialized for a single locale.
type PostRecord struct {
	Slug        string            // effective slug for the catalog's locale
	DefaultSlug string            // directory name, the default-locale slug
	LocaleSlugs map[string]string // per-locale slug overrides from front matter
	Title       string
	Description string
	Date        string    // as written in front matter
	PublishedAt time.Time // zero when Date does not parse
	Tags        []string
	Body        string
	Localized   bool   // a locale-specific variant existed
	Cover       string // cover image file name next to the document, if any
}

// HasDate reports whether the post's date parsed to a calendar date.
func (p PostRecord) HasDate() bool {
	return !p.PublishedAt.IsZero()
}

// Archive returns the post's YYYY-MM bucket, or "" without a valid date.
func (p PostRecord) Archive() string {
	if !p.HasDate() {
		return ""
	}
	return p.PublishedAt.Format(archiveLayout)
}

// SlugFor returns the slug the post uses in locale.
func (p PostRecord) SlugFor(locale string) string {
	if s, ok := p.LocaleSlugs[locale]; ok && s != "" {
		return s
	}
	return p.DefaultSlug
}

// HasTag reports exact, case-sensitive tag membership.
func (p PostRecord) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Catalog is an immutable snapshot of every post for one locale.
type Catalog struct {
	Locale string
	Posts  []PostRecord
	Report LoadReport
}

// FilterSpec selects and pages a listing. Empty strings mean "not applied".
type FilterSpec struct {
	Search   string
	Tag      string
	Date     string // YYYY-MM
	Page     int
	PageSize int
}

// IsFiltered reports whether any filter field is set.
func (f FilterSpec) IsFiltered() bool {
	return f.Search != "" || f.Tag != "" || f.Date != ""
}

// QueryResult is one page of a filtered, sorted listing.
type QueryResult struct {
	Posts      []PostRecord
	TotalPages int
	Page       int
	Total      int
}

package blogcatalog

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// DefaultPageSize is used by Query when FilterSpec.PageSize is zero.
const DefaultPageSize = 10

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = errors.New("post not found")

var reArchive = regexp.MustCompile(`^\d{4}-\d{2}$`)

// FilterAndSort returns the posts matching every applied filter, newest
// first. Posts without a valid date sort last in their original order.
// The input slice is not modified.
func FilterAndSort(posts []PostRecord, spec FilterSpec) []PostRecord {
	search := strings.TrimSpace(spec.Search)
	tag := strings.TrimSpace(spec.Tag)
	month, hasMonth := parseArchive(spec.Date)

	var folder cases.Caser
	if search != "" {
		folder = cases.Fold()
		search = folder.String(search)
	}

	out := make([]PostRecord, 0, len(posts))
	for _, p := range posts {
		if search != "" &&
			!strings.Contains(folder.String(p.Title), search) &&
			!strings.Contains(folder.String(p.Description), search) {
			continue
		}
		if tag != "" && !p.HasTag(tag) {
			continue
		}
		if hasMonth && (!p.HasDate() || p.Archive() != month) {
			continue
		}
		out = append(out, p)
	}
	SortByDate(out)
	return out
}

// SortByDate sorts posts in place, newest first, undated posts last.
func SortByDate(posts []PostRecord) {
	slices.SortStableFunc(posts, func(a, b PostRecord) int {
		switch {
		case a.HasDate() && b.HasDate():
			return b.PublishedAt.Compare(a.PublishedAt)
		case a.HasDate():
			return -1
		case b.HasDate():
			return 1
		default:
			return 0
		}
	})
}

// parseArchive validates a YYYY-MM bucket. Anything else is ignored by
// the date filter.
func parseArchive(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !reArchive.MatchString(s) {
		return "", false
	}
	if _, err := time.Parse(archiveLayout, s); err != nil {
		return "", false
	}
	return s, true
}

// Query filters, sorts and pages a catalog in one call.
func Query(c *Catalog, spec FilterSpec) QueryResult {
	if c == nil {
		return Paginate(nil, spec.Page, spec.PageSize)
	}
	size := spec.PageSize
	if size == 0 {
		size = DefaultPageSize
	}
	return Paginate(FilterAndSort(c.Posts, spec), spec.Page, size)
}

// FindBySlug returns the post whose effective slug is slug.
func FindBySlug(posts []PostRecord, slug string) (PostRecord, error) {
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return PostRecord{}, ErrNotFound
}

// FindByDefaultSlug returns the post stored in directory slug.
func FindByDefaultSlug(posts []PostRecord, slug string) (PostRecord, error) {
	for _, p := range posts {
		if p.DefaultSlug == slug {
			return p, nil
		}
	}
	return PostRecord{}, ErrNotFound
}

// RelatedPosts returns up to limit posts sharing at least one tag with
// current, in the order they appear in posts. limit <= 0 means no limit.
func RelatedPosts(current PostRecord, posts []PostRecord, limit int) []PostRecord {
	tagSet := make(map[string]struct{}, len(current.Tags))
	for _, t := range current.Tags {
		tagSet[t] = struct{}{}
	}
	var related []PostRecord
	for _, p := range posts {
		if p.DefaultSlug == current.DefaultSlug {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := tagSet[t]; ok {
				related = append(related, p)
				break
			}
		}
		if limit > 0 && len(related) == limit {
			break
		}
	}
	return related
}

// SortedPosts returns a date-sorted copy of posts.
func SortedPosts(posts []PostRecord) []PostRecord {
	return FilterAndSort(posts, FilterSpec{})
}

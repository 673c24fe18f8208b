package blogcatalog

import "strings"

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// NonCanonicalSlugs returns the effective slugs in posts that Slugify would
// change, in input order.
func NonCanonicalSlugs(posts []PostRecord) []string {
	var out []string
	for _, p := range posts {
		if p.Slug != Slugify(p.Slug) {
			out = append(out, p.Slug)
		}
	}
	return out
}

package blogcatalog

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	dateLayout    = "2006-01-02"
	archiveLayout = "2006-01"
)

var dateLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// localeVariant holds the per-locale overrides a document may carry.
type localeVariant struct {
	Title       string
	Description string
	Slug        string
	Body        string
}

func (v localeVariant) empty() bool {
	return v.Title == "" && v.Description == "" && v.Slug == "" && v.Body == ""
}

// document is the validated, typed form of one content entry.
type document struct {
	Title       string
	Description string
	Date        string
	PublishedAt time.Time
	Tags        []string
	Draft       bool
	Body        string
	Variants    map[string]localeVariant
}

// variantFields maps flat front matter prefixes (title_es, content_es, ...)
// to the variant field they set.
var variantFields = map[string]string{
	"title":       "title",
	"description": "description",
	"slug":        "slug",
	"body":        "body",
	"content":     "body",
}

// variantKeyOrder fixes precedence when both body and content are present.
var variantKeyOrder = []string{"title", "description", "slug", "content", "body"}

// decodeDocument turns loosely typed front matter into a document. Type
// mismatches on known keys are errors; unknown keys are ignored.
func decodeDocument(fields map[string]any, body []byte, defaultLocale string) (document, error) {
	doc := document{
		Body:     string(body),
		Variants: make(map[string]localeVariant),
	}
	var err error
	if doc.Title, err = stringField(fields, "title"); err != nil {
		return doc, err
	}
	if strings.TrimSpace(doc.Title) == "" {
		return doc, fmt.Errorf("title is required")
	}
	if doc.Description, err = stringField(fields, "description"); err != nil {
		return doc, err
	}
	if doc.Date, doc.PublishedAt, err = dateField(fields["date"]); err != nil {
		return doc, err
	}
	if doc.Tags, err = tagsField(fields["tags"]); err != nil {
		return doc, err
	}
	if v, ok := fields["draft"]; ok {
		b, isBool := v.(bool)
		if !isBool {
			return doc, fmt.Errorf("draft: expected boolean, got %T", v)
		}
		doc.Draft = b
	}

	switch v := fields["slug"].(type) {
	case nil:
	case string:
		if s := strings.TrimSpace(v); s != "" {
			doc.setVariant(defaultLocale, "slug", s)
		}
	case map[string]any:
		for loc, raw := range v {
			s, ok := raw.(string)
			if !ok {
				return doc, fmt.Errorf("slug.%s: expected string, got %T", loc, raw)
			}
			doc.setVariant(loc, "slug", strings.TrimSpace(s))
		}
	default:
		return doc, fmt.Errorf("slug: expected string or mapping, got %T", v)
	}

	if raw, ok := fields["locales"]; ok && raw != nil {
		locales, ok := raw.(map[string]any)
		if !ok {
			return doc, fmt.Errorf("locales: expected mapping, got %T", raw)
		}
		for loc, rawVariant := range locales {
			vf, ok := rawVariant.(map[string]any)
			if !ok {
				return doc, fmt.Errorf("locales.%s: expected mapping, got %T", loc, rawVariant)
			}
			for _, key := range variantKeyOrder {
				field := variantFields[key]
				s, err := stringField(vf, key)
				if err != nil {
					return doc, fmt.Errorf("locales.%s.%w", loc, err)
				}
				if s != "" {
					doc.setVariant(loc, field, s)
				}
			}
		}
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		raw := fields[key]
		prefix, loc, ok := strings.Cut(key, "_")
		field, known := variantFields[prefix]
		if !ok || !known || loc == "" {
			continue
		}
		s, isString := raw.(string)
		if !isString {
			return doc, fmt.Errorf("%s: expected string, got %T", key, raw)
		}
		if field == "slug" {
			s = strings.TrimSpace(s)
		}
		if s != "" {
			doc.setVariant(loc, field, s)
		}
	}
	return doc, nil
}

func (d *document) setVariant(locale, field, value string) {
	v := d.Variants[locale]
	switch field {
	case "title":
		v.Title = value
	case "description":
		v.Description = value
	case "slug":
		v.Slug = value
	case "body":
		v.Body = value
	}
	d.Variants[locale] = v
}

// materialize resolves the document for locale, falling back to the
// default fields wherever the locale has no variant.
func (d document) materialize(defaultSlug, locale, cover string) PostRecord {
	slugs := make(map[string]string)
	for loc, v := range d.Variants {
		if v.Slug != "" {
			slugs[loc] = v.Slug
		}
	}
	v, ok := d.Variants[locale]
	p := PostRecord{
		DefaultSlug: defaultSlug,
		LocaleSlugs: slugs,
		Title:       firstNonEmpty(v.Title, d.Title),
		Description: firstNonEmpty(v.Description, d.Description),
		Date:        d.Date,
		PublishedAt: d.PublishedAt,
		Tags:        d.Tags,
		Body:        firstNonEmpty(v.Body, d.Body),
		Localized:   ok && !v.empty(),
		Cover:       cover,
	}
	p.Slug = p.SlugFor(locale)
	return p
}

func stringField(fields map[string]any, key string) (string, error) {
	switch v := fields[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case int, int64, float64, bool:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("%s: expected string, got %T", key, v)
	}
}

// dateField accepts strings in any of dateLayouts and time.Time values.
// An unparseable or missing date is not an error: the post keeps its raw
// date and a zero PublishedAt.
func dateField(v any) (string, time.Time, error) {
	switch d := v.(type) {
	case nil:
		return "", time.Time{}, nil
	case time.Time:
		return d.Format(dateLayout), d, nil
	case string:
		raw := strings.TrimSpace(d)
		return raw, parseDate(raw), nil
	case int, int64, float64:
		return fmt.Sprint(d), time.Time{}, nil
	default:
		return "", time.Time{}, fmt.Errorf("date: expected string, got %T", v)
	}
}

func parseDate(raw string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// tagsField accepts a YAML sequence or a comma separated string. Tags are
// trimmed and deduplicated but keep their case.
func tagsField(v any) ([]string, error) {
	var raw []string
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		raw = strings.Split(t, ",")
	case []any:
		for i, item := range t {
			switch s := item.(type) {
			case string:
				raw = append(raw, s)
			case int, int64, float64, bool:
				raw = append(raw, fmt.Sprint(s))
			default:
				return nil, fmt.Errorf("tags[%d]: expected string, got %T", i, item)
			}
		}
	default:
		return nil, fmt.Errorf("tags: expected list or string, got %T", v)
	}
	seen := make(map[string]struct{}, len(raw))
	var tags []string
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

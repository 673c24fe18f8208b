package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
)

// BuildURL joins path segments onto a base URL, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PostURL is the canonical page URL of slug in locale.
func PostURL(base, locale, slug string) string {
	return BuildURL(base, locale, "blog", slug)
}

// JoinTags formats a tag slice as a comma-separated string.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig, locale string) string {
	data := map[string]interface{}{
		"@context":   "https://schema.org",
		"@type":      "WebSite",
		"name":       cfg.Name,
		"url":        BuildURL(cfg.URL, locale),
		"inLanguage": locale,
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
// Undated posts omit datePublished.
func BlogPostingJsonLD(cfg SiteConfig, locale string, post PostSummary) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    post.Title,
		"description": post.Description,
		"url":         post.URL,
		"inLanguage":  locale,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   post.URL,
		},
	}
	if post.Archive != "" {
		data["datePublished"] = post.Date
	}
	if post.CoverURL != "" {
		data["image"] = post.CoverURL
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if len(post.Tags) > 0 {
		data["keywords"] = JoinTags(post.Tags)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

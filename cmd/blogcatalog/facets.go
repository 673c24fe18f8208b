package main

import (
	"fmt"
	"strings"

	"github.com/eringen/blogcatalog"
)

// FacetsCmd implements the 'facets' command.
type FacetsCmd struct {
	Locale string `short:"l" help:"Locale (default: the default locale)"`
}

func (f *FacetsCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	store, err := openContent(cfg, g)
	if err != nil {
		return err
	}
	locale := resolveLocale(cfg, f.Locale)
	cat, err := store.LoadCatalog(locale)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", locale, err)
	}

	counts := blogcatalog.TagCounts(cat.Posts)
	tags := blogcatalog.AllTags(cat.Posts)
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, fmt.Sprintf("%s (%d)", t, counts[t]))
	}
	fmt.Fprintf(g.Out, "tags: %s\n", strings.Join(parts, ", "))
	fmt.Fprintf(g.Out, "archives: %s\n", strings.Join(blogcatalog.ArchiveDates(cat.Posts), ", "))
	return nil
}

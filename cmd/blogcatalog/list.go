package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/eringen/blogcatalog"
	"github.com/eringen/blogcatalog/snapshot"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	Locale   string `short:"l" help:"Locale to list (default: the default locale)"`
	Search   string `short:"s" help:"Case-insensitive match on title or description"`
	Tag      string `short:"t" help:"Exact tag"`
	Date     string `short:"d" help:"Archive month, YYYY-MM"`
	Page     int    `short:"p" help:"Page number" default:"1"`
	PageSize int    `name:"page-size" help:"Posts per page (default: from config)"`
	Snapshot string `help:"Read from a SQLite snapshot instead of the content directory" type:"path"`
}

func (l *ListCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	locale := resolveLocale(cfg, l.Locale)

	var loader blogcatalog.CatalogLoader
	if l.Snapshot != "" {
		if _, err := os.Stat(l.Snapshot); err != nil {
			return fmt.Errorf("open snapshot: %w", err)
		}
		store, err := snapshot.NewStore(l.Snapshot)
		if err != nil {
			return fmt.Errorf("open snapshot: %w", err)
		}
		defer func() {
			_ = store.Close()
		}()
		loader = store
	} else {
		store, err := openContent(cfg, g)
		if err != nil {
			return err
		}
		loader = store
	}

	cat, err := loader.LoadCatalog(locale)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", locale, err)
	}
	size := l.PageSize
	if size <= 0 {
		size = cfg.PageSize
	}
	res := blogcatalog.Query(cat, blogcatalog.FilterSpec{
		Search:   l.Search,
		Tag:      l.Tag,
		Date:     l.Date,
		Page:     l.Page,
		PageSize: size,
	})

	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSLUG\tTITLE\tTAGS")
	for _, p := range res.Posts {
		date := p.Date
		if !p.HasDate() {
			date = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", date, p.Slug, p.Title, strings.Join(p.Tags, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "page %d of %d (%d posts)\n", res.Page, res.TotalPages, res.Total)
	return nil
}

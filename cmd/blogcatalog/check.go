package main

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/eringen/blogcatalog"
)

// errProblems makes check exit non-zero after printing its report.
var errProblems = errors.New("content has problems")

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Strict bool `help:"Treat drafts and non-canonical slugs as problems"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	store, err := openContent(cfg, g)
	if err != nil {
		return err
	}
	catalogs, err := store.LoadAll(context.Background(), cfg.Locales)
	if err != nil {
		return err
	}

	problems := 0
	for _, loc := range cfg.Locales {
		cat := catalogs[loc]
		fmt.Fprintf(g.Out, "[%s] %d posts, %d skipped\n", loc, len(cat.Posts), len(cat.Report.Skipped))
		for _, s := range cat.Report.Skipped {
			if s.Reason == blogcatalog.SkipDraft && !c.Strict {
				fmt.Fprintf(g.Out, "  draft    %s\n", s.Slug)
				continue
			}
			problems++
			if s.Err != nil {
				fmt.Fprintf(g.Out, "  skipped  %s: %s: %v\n", s.Slug, s.Reason, s.Err)
			} else {
				fmt.Fprintf(g.Out, "  skipped  %s: %s\n", s.Slug, s.Reason)
			}
		}

		dups := blogcatalog.FindDuplicateSlugs(cat.Posts)
		for _, slug := range sortedKeys(dups) {
			problems++
			fmt.Fprintf(g.Out, "  duplicate slug %s: %v\n", slug, dups[slug])
		}
		for _, slug := range blogcatalog.NonCanonicalSlugs(cat.Posts) {
			if c.Strict {
				problems++
			}
			fmt.Fprintf(g.Out, "  slug %q is not canonical, want %q\n", slug, blogcatalog.Slugify(slug))
		}
	}
	if problems > 0 {
		return fmt.Errorf("%w: %d found", errProblems, problems)
	}
	return nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

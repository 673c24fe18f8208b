package main

import (
	"fmt"

	"github.com/eringen/blogcatalog"
	"github.com/eringen/blogcatalog/snapshot"
)

// loadConfig reads the config file and environment. Offline commands do not
// need a session secret, so only serve validates.
func loadConfig(root *CLI) (blogcatalog.SiteConfig, error) {
	cfg, err := blogcatalog.LoadConfig(root.Config)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func openContent(cfg blogcatalog.SiteConfig, g *Global) (*blogcatalog.ContentStore, error) {
	store, err := blogcatalog.OpenContentStore(cfg.ContentDir,
		blogcatalog.WithDefaultLocale(cfg.DefaultLocale),
		blogcatalog.WithDrafts(cfg.IncludeDrafts),
		blogcatalog.WithLogger(g.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	return store, nil
}

// exportSnapshot writes one catalog per locale into the SQLite file at path.
func exportSnapshot(path string, loader blogcatalog.CatalogLoader, locales []string, g *Global) error {
	store, err := snapshot.NewStore(path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()
	for _, loc := range locales {
		cat, err := loader.LoadCatalog(loc)
		if err != nil {
			return fmt.Errorf("load catalog %s: %w", loc, err)
		}
		if err := store.Save(cat); err != nil {
			return fmt.Errorf("save catalog %s: %w", loc, err)
		}
		g.Logger.Info("Snapshot written", "locale", loc, "posts", len(cat.Posts), "path", path)
	}
	return nil
}

// resolveLocale picks the requested locale or the configured default.
func resolveLocale(cfg blogcatalog.SiteConfig, locale string) string {
	if locale == "" {
		return cfg.DefaultLocale
	}
	return locale
}

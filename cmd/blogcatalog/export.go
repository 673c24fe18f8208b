package main

import "errors"

var errNoSnapshotPath = errors.New("no snapshot path: pass --output or set snapshotPath")

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	Output string `short:"o" help:"Snapshot file (default: snapshotPath from config)" type:"path"`
}

func (e *ExportCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	path := e.Output
	if path == "" {
		path = cfg.SnapshotPath
	}
	if path == "" {
		return errNoSnapshotPath
	}
	store, err := openContent(cfg, g)
	if err != nil {
		return err
	}
	return exportSnapshot(path, store, cfg.Locales, g)
}

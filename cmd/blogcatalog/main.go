// Command blogcatalog serves and inspects a multi-locale blog catalog.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/eringen/blogcatalog"
)

// version is set at build time via ldflags.
var version = "dev"

// Global is shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (YAML)" type:"path"`
	EnvFile   []string         `name:"env-file" help:"Dotenv files loaded before the config" default:".env"`
	LogLevel  string           `name:"log-level" help:"debug, info, warn or error" default:"info" env:"BLOG_LOG_LEVEL"`
	LogFormat string           `name:"log-format" help:"text or json" default:"text" enum:"text,json" env:"BLOG_LOG_FORMAT"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve  ServeCmd  `cmd:"" help:"Serve the catalog API"`
	List   ListCmd   `cmd:"" help:"Print one page of a locale's listing"`
	Facets FacetsCmd `cmd:"" help:"Print a locale's tags and archive months"`
	Check  CheckCmd  `cmd:"" help:"Report skipped entries and slug problems"`
	Export ExportCmd `cmd:"" help:"Write every locale's catalog to a SQLite snapshot"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply(g *Global) error {
	blogcatalog.LoadDotEnv(c.EnvFile...)
	g.Logger = blogcatalog.SetupLogging(os.Stderr, c.LogLevel, c.LogFormat)
	return nil
}

func main() {
	g := &Global{Out: os.Stdout}
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blogcatalog"),
		kong.Description("Multi-locale blog content catalog"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Bind(g),
	)
	err := ctx.Run(g, &cli)
	ctx.FatalIfErrorf(err)
}

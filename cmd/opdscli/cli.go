package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fwojciec/opdscli"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	// Global flags.
	Verbose bool
	Quiet   bool
	Catalog string // Overrides the default catalog when set.

	Catalogs opdscli.CatalogService
	Settings opdscli.SettingService
	Ranker   opdscli.Ranker

	// Fetcher makes unauthenticated requests, e.g. for feed discovery.
	Fetcher opdscli.Fetcher

	// Connect wires the engine for a catalog, crawling at most maxDepth levels.
	Connect func(catalog *opdscli.Catalog, maxDepth int) *Session
}

// Session holds the services bound to one catalog's credentials.
type Session struct {
	Finder     opdscli.EntryFinder
	Downloader opdscli.Downloader
}

// fail reports err on stderr and returns it.
func (d *Dependencies) fail(err error) error {
	fmt.Fprintf(d.Stderr, "error: %s\n", opdscli.ErrorMessage(err))
	return err
}

// infof prints non-essential output unless --quiet is set.
func (d *Dependencies) infof(format string, args ...any) {
	if !d.Quiet {
		fmt.Fprintf(d.Stdout, format, args...)
	}
}

// debugf prints diagnostics to stderr when --verbose is set.
func (d *Dependencies) debugf(format string, args ...any) {
	if d.Verbose {
		fmt.Fprintf(d.Stderr, format, args...)
	}
}

// selectCatalog returns the catalog named by --catalog, or the default.
func (d *Dependencies) selectCatalog() (*opdscli.Catalog, error) {
	if d.Catalog != "" {
		catalog, err := d.Catalogs.FindCatalogByName(d.Ctx, d.Catalog)
		if opdscli.ErrorCode(err) == opdscli.ENOTFOUND {
			return nil, opdscli.Errorf(opdscli.ENOTFOUND, "catalog %q not found. Use 'opdscli catalog list' to see configured catalogs", d.Catalog)
		}
		return catalog, err
	}

	catalog, err := d.Catalogs.FindDefaultCatalog(d.Ctx)
	if opdscli.ErrorCode(err) == opdscli.ENOTFOUND {
		return nil, opdscli.Errorf(opdscli.ENOTFOUND, "no catalog specified or default set. Use --catalog or set a default")
	}
	return catalog, err
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose  bool    `short:"v" help:"Increase output verbosity"`
	Quiet    bool    `short:"q" help:"Suppress non-essential output"`
	Catalog  string  `short:"c" env:"OPDSCLI_CATALOG" help:"Override the default catalog"`
	Rate     float64 `default:"0" help:"Max crawl requests per second per host (0 for no limit)"`
	Markdown bool    `help:"Render HTML summaries as Markdown instead of plain text"`

	Catalogs CatalogCmd  `cmd:"" name:"catalog" help:"Manage OPDS catalogs"`
	Config   ConfigCmd   `cmd:"" help:"Get or set settings"`
	Search   SearchCmd   `cmd:"" help:"Search for books in a catalog"`
	Latest   LatestCmd   `cmd:"" help:"Show latest additions to a catalog"`
	Download DownloadCmd `cmd:"" help:"Download a book by exact title"`
	Version  VersionCmd  `cmd:"" help:"Print version and exit"`
}

// CatalogCmd groups the catalog management subcommands.
type CatalogCmd struct {
	Add        CatalogAddCmd        `cmd:"" help:"Add a new catalog"`
	Remove     CatalogRemoveCmd     `cmd:"" help:"Remove a catalog"`
	List       CatalogListCmd       `cmd:"" help:"List all configured catalogs"`
	SetDefault CatalogSetDefaultCmd `cmd:"" name:"set-default" help:"Set the default catalog"`
	Import     CatalogImportCmd     `cmd:"" help:"Import catalogs and settings from an opdscli.yaml file"`
}

// CatalogAddCmd is the "catalog add" subcommand.
type CatalogAddCmd struct {
	Name     string `arg:"" help:"Name for the catalog"`
	URL      string `arg:"" help:"OPDS feed URL"`
	AuthType string `name:"auth-type" help:"Auth type: basic or bearer"`
	Username string `short:"u" help:"Username for basic auth"`
	Password string `env:"OPDSCLI_PASSWORD" help:"Password for basic auth"`
	Token    string `env:"OPDSCLI_TOKEN" help:"Token for bearer auth"`
	Default  bool   `help:"Make this the default catalog"`
	Discover bool   `help:"Treat URL as a web page and add the OPDS feed it advertises"`
}

// CatalogRemoveCmd is the "catalog remove" subcommand.
type CatalogRemoveCmd struct {
	Name string `arg:"" help:"Name of the catalog to remove"`
}

// CatalogListCmd is the "catalog list" subcommand.
type CatalogListCmd struct{}

// CatalogSetDefaultCmd is the "catalog set-default" subcommand.
type CatalogSetDefaultCmd struct {
	Name string `arg:"" help:"Name of the catalog to set as default"`
}

// CatalogImportCmd is the "catalog import" subcommand.
type CatalogImportCmd struct {
	Path string `arg:"" optional:"" type:"path" help:"Config file (default: $XDG_CONFIG_HOME/opdscli.yaml)"`
}

// ConfigCmd groups the settings subcommands.
type ConfigCmd struct {
	Get ConfigGetCmd `cmd:"" help:"Print a setting"`
	Set ConfigSetCmd `cmd:"" help:"Change a setting"`
}

// ConfigGetCmd is the "config get" subcommand.
type ConfigGetCmd struct {
	Key string `arg:"" help:"Setting name, e.g. default_format"`
}

// ConfigSetCmd is the "config set" subcommand.
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Setting name, e.g. default_format"`
	Value string `arg:"" help:"New value"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query   string `arg:"" help:"Search query"`
	Depth   int    `short:"d" default:"3" help:"Max crawl depth for local search"`
	Summary bool   `short:"s" help:"Show entry summaries"`
}

// LatestCmd is the "latest" subcommand.
type LatestCmd struct {
	Limit   int  `short:"l" default:"20" help:"Number of entries to show"`
	Summary bool `short:"s" help:"Show entry summaries"`
}

// DownloadCmd is the "download" subcommand.
type DownloadCmd struct {
	Title  string `arg:"" help:"Exact title of the book to download"`
	Format string `short:"f" help:"Preferred format (epub, pdf, mobi, cbz, cbr, html)"`
	Output string `short:"o" type:"path" default:"." help:"Output directory"`
	Depth  int    `short:"d" default:"3" help:"Max crawl depth when the catalog has no search"`
}

// VersionCmd is the "version" subcommand.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run(deps *Dependencies) error {
	fmt.Fprintf(deps.Stdout, "opdscli %s\n", opdscli.Version)
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/adrg/xdg"
	"github.com/alecthomas/kong"
	"github.com/fwojciec/opdscli"
	"github.com/fwojciec/opdscli/crawl"
	"github.com/fwojciec/opdscli/etree"
	"github.com/fwojciec/opdscli/goquery"
	"github.com/fwojciec/opdscli/htmltomarkdown"
	opdshttp "github.com/fwojciec/opdscli/http"
	"github.com/fwojciec/opdscli/levenshtein"
	opdsslog "github.com/fwojciec/opdscli/slog"
	"github.com/fwojciec/opdscli/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	CatalogService opdscli.CatalogService
	SettingService opdscli.SettingService

	// HTTPOptions are applied to every catalog fetcher.
	HTTPOptions []opdshttp.Option
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments. Errors are reported on
// stderr before being returned.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("opdscli"),
		kong.Description("A CLI tool to interact with OPDS 1.x ebook catalogs."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return deps.fail(opdscli.Errorf(opdscli.EINVALID, "no command specified. Run 'opdscli --help' to see available commands"))
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return deps.fail(err)
	}

	deps.Verbose = cli.Verbose
	deps.Quiet = cli.Quiet
	deps.Catalog = cli.Catalog

	if kongCtx.Command() == "version" {
		return kongCtx.Run(deps)
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set OPDSCLI_DB to use a different database path\n")
		return deps.fail(fmt.Errorf("failed to open database at %q: %w", m.DBPath, err))
	}
	defer m.Close()

	m.CatalogService = sqlite.NewCatalogService(m.DB)
	m.SettingService = sqlite.NewSettingService(m.DB)
	deps.Catalogs = m.CatalogService
	deps.Settings = m.SettingService
	deps.Ranker = levenshtein.NewRanker()

	var logger *slog.Logger
	if cli.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, nil))
	}

	var fetcher opdscli.Fetcher = opdshttp.NewFetcher(m.HTTPOptions...)
	if logger != nil {
		fetcher = opdsslog.NewLoggingFetcher(fetcher, logger)
	}
	deps.Fetcher = fetcher
	deps.Connect = m.connector(cli, logger, stderr)

	return kongCtx.Run(deps)
}

// connector returns the factory that wires the engine for one catalog.
func (m *Main) connector(cli *CLI, logger *slog.Logger, stderr io.Writer) func(*opdscli.Catalog, int) *Session {
	return func(catalog *opdscli.Catalog, maxDepth int) *Session {
		transport := opdshttp.NewCatalogFetcher(catalog, m.HTTPOptions...)

		var fetcher opdscli.Fetcher = transport
		var downloader opdscli.Downloader = transport
		if logger != nil {
			fetcher = opdsslog.NewLoggingFetcher(fetcher, logger)
			downloader = opdsslog.NewLoggingDownloader(downloader, logger)
		}

		parser := etree.NewParser(summaryConverter(cli.Markdown))

		crawler := &crawl.Crawler{
			Fetcher:     fetcher,
			Parser:      parser,
			RateLimiter: crawl.NewDomainLimiter(cli.Rate),
		}
		if cli.Verbose {
			crawler.Progress = crawlProgress(stderr)
		}
		searcher := &crawl.Searcher{
			Fetcher: fetcher,
			Parser:  parser,
		}

		var crawlSvc opdscli.CrawlService = crawler
		var searchSvc opdscli.SearchService = searcher
		if logger != nil {
			crawlSvc = opdsslog.NewLoggingCrawler(crawlSvc, logger)
			searchSvc = opdsslog.NewLoggingSearcher(searchSvc, logger)
		}

		finder := crawl.NewFinder(fetcher, parser, searchSvc, crawlSvc)
		finder.MaxDepth = maxDepth

		return &Session{
			Finder:     finder,
			Downloader: downloader,
		}
	}
}

// crawlProgress reports skipped pages and a closing crawl summary.
func crawlProgress(w io.Writer) crawl.ProgressFunc {
	return func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressFailed:
			fmt.Fprintf(w, "  skip %s: %s\n", crawl.TruncateURL(event.URL, 80), opdscli.ErrorMessage(event.Error))
		case crawl.ProgressFinished:
			if stats := event.Stats; stats != nil {
				fmt.Fprintf(w, "  Crawled %d pages (%d failed), %d entries, ~%d duplicates\n",
					stats.Pages, stats.Failed, stats.Entries, stats.Duplicates)
			}
		}
	}
}

// summaryConverter selects how HTML summaries are rendered.
func summaryConverter(markdown bool) opdscli.Converter {
	if markdown {
		return htmltomarkdown.NewConverter()
	}
	return goquery.NewTextConverter()
}

func defaultDBPath() string {
	if path := os.Getenv("OPDSCLI_DB"); path != "" {
		return path
	}
	path, err := xdg.DataFile("opdscli/opdscli.db")
	if err != nil {
		return "opdscli.db"
	}
	return path
}

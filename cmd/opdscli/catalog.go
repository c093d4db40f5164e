package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fwojciec/opdscli"
	"github.com/fwojciec/opdscli/goquery"
	"github.com/fwojciec/opdscli/yaml"
)

// Run executes the catalog add command.
func (c *CatalogAddCmd) Run(deps *Dependencies) error {
	feedURL := c.URL
	if c.Discover {
		found, err := discoverFeed(deps, c.URL)
		if err != nil {
			return deps.fail(err)
		}
		deps.debugf("Discovered feed %s\n", found)
		feedURL = found
	}

	catalog := &opdscli.Catalog{
		Name:    c.Name,
		URL:     feedURL,
		Default: c.Default,
	}
	if c.AuthType != "" {
		catalog.Auth = &opdscli.Auth{
			Type:     c.AuthType,
			Username: c.Username,
			Password: c.Password,
			Token:    c.Token,
		}
	}

	if err := deps.Catalogs.CreateCatalog(deps.Ctx, catalog); err != nil {
		return deps.fail(err)
	}

	deps.infof("Added catalog %q (%s)\n", c.Name, feedURL)
	return nil
}

// discoverFeed fetches pageURL and returns the first OPDS feed it advertises.
func discoverFeed(deps *Dependencies, pageURL string) (string, error) {
	page, err := deps.Fetcher.Fetch(deps.Ctx, pageURL)
	if err != nil {
		return "", err
	}
	feeds, err := goquery.DiscoverFeeds(page, pageURL)
	if err != nil {
		return "", err
	}
	if len(feeds) == 0 {
		return "", opdscli.Errorf(opdscli.ENOTFOUND, "no OPDS feed advertised at %s", pageURL)
	}
	return feeds[0], nil
}

// Run executes the catalog remove command.
func (c *CatalogRemoveCmd) Run(deps *Dependencies) error {
	if err := deps.Catalogs.DeleteCatalog(deps.Ctx, c.Name); err != nil {
		return deps.fail(err)
	}
	deps.infof("Removed catalog %q\n", c.Name)
	return nil
}

// Run executes the catalog list command.
func (c *CatalogListCmd) Run(deps *Dependencies) error {
	catalogs, err := deps.Catalogs.FindCatalogs(deps.Ctx)
	if err != nil {
		return deps.fail(err)
	}

	if len(catalogs) == 0 {
		fmt.Fprintln(deps.Stdout, "No catalogs configured. Use 'opdscli catalog add' to add one.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tURL\tAUTH\tDEFAULT")
	for _, cat := range catalogs {
		auth := "none"
		if cat.Auth != nil {
			auth = cat.Auth.Type
		}
		def := ""
		if cat.Default {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cat.Name, cat.URL, auth, def)
	}
	return w.Flush()
}

// Run executes the catalog set-default command.
func (c *CatalogSetDefaultCmd) Run(deps *Dependencies) error {
	if err := deps.Catalogs.SetDefaultCatalog(deps.Ctx, c.Name); err != nil {
		return deps.fail(err)
	}
	deps.infof("Default catalog set to %q\n", c.Name)
	return nil
}

// Run executes the catalog import command.
func (c *CatalogImportCmd) Run(deps *Dependencies) error {
	path := c.Path
	if path == "" {
		path = yaml.DefaultPath()
	}

	cfg, err := yaml.LoadFile(path)
	if err != nil {
		return deps.fail(err)
	}
	if cfg.WorldReadable {
		fmt.Fprintf(deps.Stderr, "warning: %s is world-readable. Run 'chmod 600 %s' to restrict access.\n", path, path)
	}

	importer := &yaml.Importer{Catalogs: deps.Catalogs, Settings: deps.Settings}
	result, err := importer.Import(deps.Ctx, cfg)
	if err != nil {
		return deps.fail(err)
	}

	for _, name := range result.Skipped {
		deps.debugf("Skipped existing catalog %q\n", name)
	}
	deps.infof("Imported %d catalogs (%d skipped) and %d settings from %s\n",
		len(result.Imported), len(result.Skipped), len(result.Settings), path)
	return nil
}

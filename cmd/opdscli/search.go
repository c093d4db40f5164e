package main

import (
	"fmt"

	"github.com/fwojciec/opdscli"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	catalog, err := deps.selectCatalog()
	if err != nil {
		return deps.fail(err)
	}

	deps.debugf("Searching catalog %q for %q...\n", catalog.Name, c.Query)

	session := deps.Connect(catalog, c.Depth)
	entries, strategy, err := session.Finder.Search(deps.Ctx, catalog.URL, c.Query)
	if err != nil {
		return deps.fail(err)
	}

	if strategy == opdscli.StrategySearch {
		deps.debugf("Used server-side OpenSearch.\n")
	} else {
		deps.debugf("No OpenSearch. Crawled locally (depth=%d).\n", c.Depth)
	}

	if len(entries) == 0 {
		fmt.Fprintln(deps.Stdout, "No results found.")
		return nil
	}
	return writeEntries(deps.Stdout, entries, c.Summary)
}

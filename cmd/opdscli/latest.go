package main

import (
	"fmt"

	"github.com/fwojciec/opdscli"
)

// Run executes the latest command.
func (c *LatestCmd) Run(deps *Dependencies) error {
	catalog, err := deps.selectCatalog()
	if err != nil {
		return deps.fail(err)
	}

	deps.debugf("Fetching latest from %q...\n", catalog.Name)

	session := deps.Connect(catalog, opdscli.DefaultMaxDepth)
	entries, err := session.Finder.Latest(deps.Ctx, catalog.URL, c.Limit)
	if err != nil {
		return deps.fail(err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(deps.Stdout, "No entries found.")
		return nil
	}
	return writeEntries(deps.Stdout, entries, c.Summary)
}

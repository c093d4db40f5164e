package main

import (
	"fmt"
	"path/filepath"

	"github.com/fwojciec/opdscli"
	"github.com/fwojciec/opdscli/crawl"
	"github.com/fwojciec/opdscli/fs"
)

// Run executes the download command.
func (c *DownloadCmd) Run(deps *Dependencies) error {
	catalog, err := deps.selectCatalog()
	if err != nil {
		return deps.fail(err)
	}

	format, err := c.preferredFormat(deps)
	if err != nil {
		return deps.fail(err)
	}

	deps.debugf("Searching catalog %q for %q...\n", catalog.Name, c.Title)

	session := deps.Connect(catalog, c.Depth)
	entries, _, err := session.Finder.Collect(deps.Ctx, catalog.URL, c.Title)
	if err != nil {
		return deps.fail(err)
	}

	match := opdscli.FindByTitle(entries, c.Title)
	if match == nil {
		err := deps.fail(opdscli.Errorf(opdscli.ENOTFOUND, "book %q not found", c.Title))
		c.suggest(deps, entries)
		return err
	}

	href, tag, ok := opdscli.SelectAcquisitionLink(match, format)
	if !ok {
		return deps.fail(opdscli.Errorf(opdscli.ENOTFOUND, "no downloadable format for %q", match.Title))
	}

	name := fs.BookFilename(match.Title, tag)
	deps.debugf("Downloading %s -> %s\n", href, filepath.Join(c.Output, name))

	file, err := fs.Create(c.Output, name)
	if err != nil {
		return deps.fail(err)
	}

	var progress opdscli.DownloadProgressFunc
	if !deps.Quiet {
		progress = func(p opdscli.DownloadProgress) {
			fmt.Fprintf(deps.Stderr, "\rDownloading %s  %s", match.Title, crawl.FormatProgress(p.Received, p.Total))
		}
	}

	_, err = session.Downloader.Download(deps.Ctx, href, file, progress)
	if progress != nil {
		fmt.Fprintln(deps.Stderr)
	}
	if err != nil {
		_ = file.Abort()
		return deps.fail(err)
	}
	if err := file.Commit(); err != nil {
		return deps.fail(err)
	}

	deps.debugf("Wrote %s (xxh64 %s)\n", crawl.FormatBytes(file.Size()), file.Checksum())
	deps.infof("Saved to %s\n", file.Path())
	return nil
}

// preferredFormat returns --format, else the default_format setting, else epub.
func (c *DownloadCmd) preferredFormat(deps *Dependencies) (string, error) {
	if c.Format != "" {
		return c.Format, nil
	}
	value, err := deps.Settings.Setting(deps.Ctx, opdscli.SettingDefaultFormat)
	if opdscli.ErrorCode(err) == opdscli.ENOTFOUND || (err == nil && value == "") {
		return opdscli.DefaultFormat, nil
	}
	return value, err
}

// suggest lists near matches for a title that was not found.
func (c *DownloadCmd) suggest(deps *Dependencies, entries []*opdscli.Entry) {
	if deps.Ranker == nil {
		return
	}
	suggestions := deps.Ranker.Rank(c.Title, entries)
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintln(deps.Stderr, "\nDid you mean:")
	for _, s := range suggestions {
		fmt.Fprintf(deps.Stderr, "  - %s (%s)\n", s.Title, s.Author)
	}
}

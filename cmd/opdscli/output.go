package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fwojciec/opdscli"
)

// writeEntries prints entries as a title/author/format table, followed by
// their summaries when summary is set.
func writeEntries(w io.Writer, entries []*opdscli.Entry, summary bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tAUTHOR\tFORMAT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", oneLine(e.Title), oneLine(e.Author), formatList(e))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !summary {
		return nil
	}
	for _, e := range entries {
		if e.Summary == "" {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", e.Title)
		for _, line := range strings.Split(e.Summary, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	return nil
}

func formatList(e *opdscli.Entry) string {
	if len(e.Formats) == 0 {
		return "unknown"
	}
	return strings.Join(e.Formats, ", ")
}

// oneLine collapses whitespace so a value fits in a table cell.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

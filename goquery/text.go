// Package goquery turns HTML served alongside catalogs into plain data:
// entry summaries into display text, and web pages into the OPDS feeds
// they advertise.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/opdscli"
)

// Ensure TextConverter implements opdscli.Converter at compile time.
var _ opdscli.Converter = (*TextConverter)(nil)

// blockSelector matches elements rendered on their own line.
const blockSelector = "p, div, li, blockquote, h1, h2, h3, h4, h5, h6, tr, dt, dd"

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// TextConverter reduces HTML summaries to plain text, one line per block.
type TextConverter struct{}

// NewTextConverter creates a new TextConverter.
func NewTextConverter() *TextConverter {
	return &TextConverter{}
}

// Convert strips markup from html. Blank input yields an empty result.
func (c *TextConverter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	// Source line breaks are insignificant; only block boundaries break lines.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(flatten.Replace(html)))
	if err != nil {
		return "", opdscli.Errorf(opdscli.EINVALID, "failed to parse HTML: %v", err)
	}

	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").PrependHtml("- ")
	doc.Find(blockSelector).AppendHtml("\n")

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			lines = append(lines, strings.Join(fields, " "))
		}
	}
	return strings.Join(lines, "\n"), nil
}

package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/opdscli"
)

// feedSelectors match elements that advertise an OPDS or Atom feed, most
// specific first.
var feedSelectors = []string{
	`link[type*="opds-catalog"][href]`,
	`link[rel~="alternate"][type*="application/atom+xml"][href]`,
	`a[type*="opds-catalog"][href]`,
}

// DiscoverFeeds returns the catalog feeds a web page advertises, resolved
// against baseURL, in selector priority then document order without duplicates.
func DiscoverFeeds(html string, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, opdscli.Errorf(opdscli.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, opdscli.Errorf(opdscli.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]bool)
	var feeds []string
	for _, selector := range feedSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			if isNonHTTPLink(href) {
				return
			}
			resolved := resolveURL(base, href)
			if resolved == "" || seen[resolved] {
				return
			}
			seen[resolved] = true
			feeds = append(feeds, resolved)
		})
	}
	return feeds, nil
}

// resolveURL resolves a relative URL against a base URL with the fragment
// stripped. Returns empty string if the href cannot be parsed or is not http(s).
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "data:")
}

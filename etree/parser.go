// Package etree parses OPDS Atom feeds and OpenSearch description documents
// using github.com/beevik/etree.
package etree

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/opdscli"
	"golang.org/x/net/html/charset"
)

// XML namespaces recognized in catalog documents.
const (
	AtomNS       = "http://www.w3.org/2005/Atom"
	OPDSNS       = "http://opds-spec.org/2010/catalog"
	OpenSearchNS = "http://a9.com/-/spec/opensearch/1.1/"
	DublinCoreNS = "http://purl.org/dc/terms/"
)

// Ensure Parser implements opdscli.FeedParser at compile time.
var _ opdscli.FeedParser = (*Parser)(nil)

// Parser parses OPDS 1.x catalog documents.
type Parser struct {
	// Converter, if set, turns html and xhtml summaries into display text.
	Converter opdscli.Converter
}

// NewParser creates a new Parser. The converter may be nil.
func NewParser(converter opdscli.Converter) *Parser {
	return &Parser{Converter: converter}
}

// Parse parses an Atom feed into book entries, navigation links, the next
// page and the OpenSearch description link. Every href is resolved against
// baseURL; an empty baseURL leaves relative hrefs untouched.
func (p *Parser) Parse(doc string, baseURL string) (*opdscli.Feed, error) {
	root, err := readDocument(doc)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, opdscli.Errorf(opdscli.EINVALID, "invalid base URL %q: %v", baseURL, err)
	}
	r := resolver{base: base, empty: baseURL == ""}

	feed := &opdscli.Feed{}
	for _, child := range root.ChildElements() {
		switch {
		case isAtom(child, "entry"):
			parsed := p.parseEntry(child, r)
			switch parsed.kind {
			case kindBook:
				feed.Entries = append(feed.Entries, parsed.book)
			case kindNavigation:
				feed.Navigation = append(feed.Navigation, parsed.navigation...)
			}

		case isAtom(child, "link"):
			rel := child.SelectAttrValue("rel", "")
			typ := child.SelectAttrValue("type", "")
			href := strings.TrimSpace(child.SelectAttrValue("href", ""))
			if href == "" {
				continue
			}
			switch {
			case rel == opdscli.RelNext && feed.Next == "":
				if resolved, ok := r.resolve(href); ok {
					feed.Next = resolved
				}
			case rel == opdscli.RelSearch && strings.Contains(typ, "opensearchdescription") && feed.SearchDescription == "":
				if resolved, ok := r.resolve(href); ok {
					feed.SearchDescription = resolved
				}
			}
		}
	}

	return feed, nil
}

// ParseSearchDescription returns the query URL template from an OpenSearch
// description. A Url whose type mentions atom+xml is preferred; otherwise
// the first Url with a template wins.
func (p *Parser) ParseSearchDescription(doc string) (string, error) {
	root, err := readDocument(doc)
	if err != nil {
		return "", err
	}

	// Url elements are matched by local name, with or without a namespace.
	var urls []*etree.Element
	for _, child := range root.ChildElements() {
		if child.Tag == "Url" {
			urls = append(urls, child)
		}
	}

	for _, u := range urls {
		if !strings.Contains(u.SelectAttrValue("type", ""), "atom+xml") {
			continue
		}
		if template := strings.TrimSpace(u.SelectAttrValue("template", "")); template != "" {
			return template, nil
		}
	}
	for _, u := range urls {
		if template := strings.TrimSpace(u.SelectAttrValue("template", "")); template != "" {
			return template, nil
		}
	}

	return "", opdscli.Errorf(opdscli.ENOTFOUND, "no query template in OpenSearch description")
}

// entryKind tags the outcome of classifying one Atom entry.
type entryKind int

const (
	kindNavigation entryKind = iota
	kindBook
)

// parsedEntry is either a book (kindBook) or the navigation links of a
// placeholder entry (kindNavigation), never both.
type parsedEntry struct {
	kind       entryKind
	book       *opdscli.Entry
	navigation []opdscli.NavigationLink
}

func (p *Parser) parseEntry(el *etree.Element, r resolver) parsedEntry {
	entry := &opdscli.Entry{
		Title:   childText(el, AtomNS, "title"),
		ID:      childText(el, AtomNS, "id"),
		Updated: childText(el, AtomNS, "updated"),
	}
	if entry.ID == "" {
		entry.ID = childText(el, DublinCoreNS, "identifier")
	}

	var authors []string
	for _, author := range children(el, AtomNS, "author") {
		if name := childText(author, AtomNS, "name"); name != "" {
			authors = append(authors, name)
		}
	}
	entry.Author = strings.Join(authors, ", ")

	if summary := firstChild(el, AtomNS, "summary"); summary != nil {
		entry.Summary = p.textContent(summary)
	}
	if entry.Summary == "" {
		if content := firstChild(el, AtomNS, "content"); content != nil {
			entry.Summary = p.textContent(content)
		}
	}

	links := children(el, AtomNS, "link")
	for _, link := range links {
		rel := link.SelectAttrValue("rel", "")
		if rel != "" && !strings.HasPrefix(rel, opdscli.RelAcquisitionPrefix) {
			continue
		}
		href := strings.TrimSpace(link.SelectAttrValue("href", ""))
		if href == "" {
			continue
		}
		resolved, ok := r.resolve(href)
		if !ok {
			continue
		}
		entry.AddAcquisitionLink(opdscli.AcquisitionLink{
			Href: resolved,
			Type: link.SelectAttrValue("type", ""),
			Rel:  rel,
		})
	}

	if entry.IsBook() {
		return parsedEntry{kind: kindBook, book: entry}
	}

	var navigation []opdscli.NavigationLink
	for _, link := range links {
		rel := link.SelectAttrValue("rel", "")
		href := strings.TrimSpace(link.SelectAttrValue("href", ""))
		if href == "" || !isFeedLink(rel, link.SelectAttrValue("type", "")) {
			continue
		}
		resolved, ok := r.resolve(href)
		if !ok {
			continue
		}
		navigation = append(navigation, opdscli.NavigationLink{
			Href:  resolved,
			Title: entry.Title,
			Rel:   rel,
		})
	}
	return parsedEntry{kind: kindNavigation, navigation: navigation}
}

// isFeedLink reports whether a link of a placeholder entry points at another catalog page.
func isFeedLink(rel, typ string) bool {
	t := strings.ToLower(typ)
	switch {
	case strings.Contains(t, "navigation"), strings.Contains(t, "acquisition"):
		return true
	case strings.Contains(t, "profile=opds-catalog"):
		return true
	case opdscli.MediaType(t) == "application/atom+xml":
		return true
	}
	switch rel {
	case opdscli.RelSubsection, opdscli.RelSortNew, opdscli.RelSortPopular:
		return true
	}
	return false
}

// textContent returns the display text of an Atom text construct.
func (p *Parser) textContent(el *etree.Element) string {
	var markup, plain string
	switch strings.ToLower(el.SelectAttrValue("type", "text")) {
	case "xhtml":
		markup = innerXML(el)
		plain = strings.Join(strings.Fields(allText(el)), " ")
	case "html", "text/html":
		markup = el.Text()
		plain = strings.TrimSpace(markup)
	default:
		return strings.TrimSpace(el.Text())
	}

	if p.Converter == nil {
		return plain
	}
	converted, err := p.Converter.Convert(markup)
	if err != nil || strings.TrimSpace(converted) == "" {
		return plain
	}
	return strings.TrimSpace(converted)
}

// readDocument parses doc strictly, decoding non-UTF-8 charsets.
func readDocument(doc string) (*etree.Element, error) {
	d := etree.NewDocument()
	d.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := d.ReadFromString(doc); err != nil {
		return nil, &opdscli.Error{
			Code:    opdscli.EMALFORMED,
			Message: fmt.Sprintf("invalid XML: %v", err),
			Err:     err,
		}
	}
	var root *etree.Element
	for _, tok := range d.Child {
		switch t := tok.(type) {
		case *etree.Element:
			if root != nil {
				return nil, opdscli.Errorf(opdscli.EMALFORMED, "invalid XML: extra content at the end of the document")
			}
			root = t
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				return nil, opdscli.Errorf(opdscli.EMALFORMED, "invalid XML: text outside the root element")
			}
		}
	}
	if root == nil {
		return nil, opdscli.Errorf(opdscli.EMALFORMED, "invalid XML: no root element")
	}
	return root, nil
}

// resolver joins hrefs against a base URL per RFC 3986.
type resolver struct {
	base  *url.URL
	empty bool
}

func (r resolver) resolve(href string) (string, bool) {
	if r.empty {
		return href, true
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return r.base.ResolveReference(ref).String(), true
}

// isAtom matches an element in the Atom namespace. Documents that omit the
// namespace declaration are accepted as Atom.
func isAtom(el *etree.Element, tag string) bool {
	return isElement(el, AtomNS, tag)
}

func isElement(el *etree.Element, ns, tag string) bool {
	if el.Tag != tag {
		return false
	}
	uri := el.NamespaceURI()
	return uri == ns || (ns == AtomNS && uri == "")
}

func children(el *etree.Element, ns, tag string) []*etree.Element {
	var matched []*etree.Element
	for _, child := range el.ChildElements() {
		if isElement(child, ns, tag) {
			matched = append(matched, child)
		}
	}
	return matched
}

func firstChild(el *etree.Element, ns, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if isElement(child, ns, tag) {
			return child
		}
	}
	return nil
}

func childText(el *etree.Element, ns, tag string) string {
	child := firstChild(el, ns, tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}

// innerXML serializes the children of el.
func innerXML(el *etree.Element) string {
	var b strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			d := etree.NewDocument()
			d.SetRoot(t.Copy())
			s, err := d.WriteToString()
			if err == nil {
				b.WriteString(s)
			}
		}
	}
	return b.String()
}

// allText concatenates all character data beneath el.
func allText(el *etree.Element) string {
	var b strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
			b.WriteByte(' ')
		case *etree.Element:
			b.WriteString(allText(t))
		}
	}
	return b.String()
}

package opdscli

import "strings"

// DefaultFormat is the preferred format when neither a flag nor a setting names one.
const DefaultFormat = "epub"

// FallbackFormat is reported for acquisition links whose media type has no short tag.
const FallbackFormat = "bin"

// formatsByMediaType maps acquisition media types to short format tags.
// A link is an acquisition candidate only if its media type appears here.
var formatsByMediaType = map[string]string{
	"application/epub+zip":           "epub",
	"application/pdf":                "pdf",
	"application/x-mobipocket-ebook": "mobi",
	"application/x-cbz":              "cbz",
	"application/x-cbr":              "cbr",
	"text/html":                      "html",
}

var mediaTypesByFormat = func() map[string]string {
	m := make(map[string]string, len(formatsByMediaType))
	for mediaType, format := range formatsByMediaType {
		m[format] = mediaType
	}
	return m
}()

// MediaType returns the lowercased media type of a type attribute with any
// parameters stripped, e.g. "application/atom+xml;profile=opds-catalog"
// becomes "application/atom+xml".
func MediaType(typ string) string {
	if i := strings.IndexByte(typ, ';'); i >= 0 {
		typ = typ[:i]
	}
	return strings.ToLower(strings.TrimSpace(typ))
}

// FormatForMediaType returns the short format tag for a type attribute.
func FormatForMediaType(typ string) (string, bool) {
	format, ok := formatsByMediaType[MediaType(typ)]
	return format, ok
}

// MediaTypeForFormat returns the media type for a short format tag.
func MediaTypeForFormat(format string) (string, bool) {
	mediaType, ok := mediaTypesByFormat[strings.ToLower(format)]
	return mediaType, ok
}

// SelectAcquisitionLink picks the download link for the preferred format.
//
// The first acquisition link whose type contains the preferred media type wins.
// Otherwise the entry's first acquisition link is returned together with the
// format implied by its media type, or FallbackFormat if that type has no tag.
// A known preferred tag is returned in canonical lowercase form; an unknown
// one is matched against link types verbatim.
// The bool result is false only when the entry has no acquisition links.
func SelectAcquisitionLink(entry *Entry, preferred string) (href, format string, ok bool) {
	if entry == nil || len(entry.AcquisitionLinks) == 0 {
		return "", preferred, false
	}

	want, known := MediaTypeForFormat(preferred)
	tag := preferred
	if known {
		tag = formatsByMediaType[want]
	} else {
		want = preferred
	}
	if want != "" {
		for _, link := range entry.AcquisitionLinks {
			if strings.Contains(link.Type, want) {
				return link.Href, tag, true
			}
		}
	}

	first := entry.AcquisitionLinks[0]
	format, known = FormatForMediaType(first.Type)
	if !known {
		format = FallbackFormat
	}
	return first.Href, format, true
}

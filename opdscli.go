// Package opdscli provides a CLI-based client for OPDS 1.x ebook catalogs.
// It discovers book entries by delegating to a catalog's OpenSearch endpoint
// when one is advertised, and otherwise by crawling the catalog's navigation
// graph, then selects and downloads a book in the preferred format.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, etree/, http/).
package opdscli

// Version is the client version reported in the User-Agent header.
var Version = "dev"

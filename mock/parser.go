package mock

import "github.com/fwojciec/opdscli"

var _ opdscli.FeedParser = (*FeedParser)(nil)

// FeedParser is a mock implementation of opdscli.FeedParser.
type FeedParser struct {
	ParseFn                  func(doc string, baseURL string) (*opdscli.Feed, error)
	ParseSearchDescriptionFn func(doc string) (string, error)
}

func (p *FeedParser) Parse(doc string, baseURL string) (*opdscli.Feed, error) {
	return p.ParseFn(doc, baseURL)
}

func (p *FeedParser) ParseSearchDescription(doc string) (string, error) {
	return p.ParseSearchDescriptionFn(doc)
}

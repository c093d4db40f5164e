package mock

import "github.com/fwojciec/opdscli"

var _ opdscli.Converter = (*Converter)(nil)

// Converter is a mock implementation of opdscli.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

package mock

import "github.com/seoentity/seoentity"

var _ seoentity.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of seoentity.Extractor.
type Extractor struct {
	ExtractFn func(html string) string
	NameFn    func() string
}

func (e *Extractor) Extract(html string) string {
	return e.ExtractFn(html)
}

// Name returns "mock" unless NameFn is set.
func (e *Extractor) Name() string {
	if e.NameFn == nil {
		return "mock"
	}
	return e.NameFn()
}

package resume

import (
	"net/url"
	"sync"
)

// ResumeParam is the query parameter carrying a resume token.
const ResumeParam = "resume"

// Location is the address of the form page. Replace swaps the current
// address without navigating.
type Location interface {
	URL() *url.URL
	Replace(u *url.URL)
}

// PageLocation is an in-process Location.
type PageLocation struct {
	mu sync.Mutex
	u  url.URL
}

// NewPageLocation parses raw as the initial page address.
func NewPageLocation(raw string) (*PageLocation, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &PageLocation{u: *u}, nil
}

// URL returns a copy of the current address.
func (p *PageLocation) URL() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()
	u := p.u
	return &u
}

// Replace sets the current address.
func (p *PageLocation) Replace(u *url.URL) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.u = *u
}

func resumeToken(loc Location) string {
	return loc.URL().Query().Get(ResumeParam)
}

func stripResumeToken(loc Location) {
	u := loc.URL()
	q := u.Query()
	if !q.Has(ResumeParam) {
		return
	}
	q.Del(ResumeParam)
	u.RawQuery = q.Encode()
	loc.Replace(u)
}

package crawl

import (
	"net/url"
	"strings"
)

// Item is a pending crawl target.
type Item struct {
	URL   string
	Depth int
}

// Frontier is the worklist of a single crawl: a LIFO stack of pending items
// plus the set of canonical URLs already visited.
// It is owned by one crawl and is not safe for concurrent use.
type Frontier struct {
	stack   []Item
	visited map[string]struct{}
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{visited: make(map[string]struct{})}
}

// Push adds an item to the top of the stack.
func (f *Frontier) Push(rawURL string, depth int) {
	f.stack = append(f.stack, Item{URL: rawURL, Depth: depth})
}

// Pop removes and returns the most recently pushed item.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (Item, bool) {
	if len(f.stack) == 0 {
		return Item{}, false
	}
	item := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return item, true
}

// Len returns the number of pending items.
func (f *Frontier) Len() int {
	return len(f.stack)
}

// Visit marks rawURL as visited.
// Returns false if its canonical form was already visited.
func (f *Frontier) Visit(rawURL string) bool {
	key := Canonicalize(rawURL)
	if _, ok := f.visited[key]; ok {
		return false
	}
	f.visited[key] = struct{}{}
	return true
}

// Visited returns the number of distinct URLs visited.
func (f *Frontier) Visited() int {
	return len(f.visited)
}

// Canonicalize returns the form of rawURL used for visited-set membership:
// scheme and host lowercased, fragment removed, and an empty path replaced
// by "/". Query strings are kept since catalogs page with them.
func Canonicalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if i := strings.IndexByte(rawURL, '#'); i >= 0 {
			return rawURL[:i]
		}
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" && u.Opaque == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	return u.String()
}

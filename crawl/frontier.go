package crawl

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/doclens"
)

// Link is a queued URL and its distance from the seed.
type Link struct {
	URL   string
	Depth int
}

// Frontier is a breadth-first URL queue with deduplication by normalized
// URL. A Bloom filter answers "never seen" without touching the exact
// visited set, which resolves the filter's false positives.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu      sync.Mutex
	seen    *bloom.BloomFilter
	visited map[string]struct{}
	queue   []Link
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for the Bloom pre-check.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		seen:    bloom.NewWithEstimates(n, fpRate),
		visited: make(map[string]struct{}),
	}
}

// Push adds a link to the back of the queue.
// Returns false if the normalized URL has already been pushed or is invalid.
func (f *Frontier) Push(link Link) bool {
	url, err := doclens.NormalizeURL(link.URL)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen.TestString(url) {
		if _, ok := f.visited[url]; ok {
			return false
		}
	}
	f.seen.AddString(url)
	f.visited[url] = struct{}{}

	link.URL = url
	f.queue = append(f.queue, link)
	return true
}

// Pop returns the oldest queued link.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (Link, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return Link{}, false
	}
	link := f.queue[0]
	f.queue[0] = Link{}
	f.queue = f.queue[1:]
	return link, true
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the URL has been queued, even if already popped.
// Fragments and query strings are ignored.
func (f *Frontier) Seen(rawURL string) bool {
	url, err := doclens.NormalizeURL(rawURL)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.seen.TestString(url) {
		return false
	}
	_, ok := f.visited[url]
	return ok
}

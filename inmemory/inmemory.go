// Package inmemory provides an hnsearch.Transport that serves stories from an
// in-process collection. It backs offline demos and tests.
package inmemory

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/letmevibethatforyou/hnsearch"
)

// DefaultHitsPerPage matches the page size of the public search API.
const DefaultHitsPerPage = 20

// Transport implements hnsearch.Transport over an in-memory story set.
type Transport struct {
	mu      sync.RWMutex
	items   []hnsearch.Item
	idIndex map[string]int // maps item ID to index in items slice

	hitsPerPage int
	latency     time.Duration
}

// Option configures a Transport.
type Option func(*Transport)

// WithHitsPerPage sets the page size. Non-positive values are ignored.
func WithHitsPerPage(n int) Option {
	return func(t *Transport) {
		if n > 0 {
			t.hitsPerPage = n
		}
	}
}

// WithLatency delays every fetch by d, simulating a remote API.
func WithLatency(d time.Duration) Option {
	return func(t *Transport) {
		t.latency = d
	}
}

// New creates a new in-memory transport.
// The transport is ready to use and is safe for concurrent operations.
func New(opts ...Option) *Transport {
	t := &Transport{
		items:       make([]hnsearch.Item, 0),
		idIndex:     make(map[string]int),
		hitsPerPage: DefaultHitsPerPage,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Add stores items. An item whose ID already exists replaces the stored one
// in place.
func (t *Transport) Add(items ...hnsearch.Item) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, item := range items {
		if idx, exists := t.idIndex[item.ID]; exists {
			t.items[idx] = item
			continue
		}
		t.idIndex[item.ID] = len(t.items)
		t.items = append(t.items, item)
	}
}

// Size returns the number of stored items.
func (t *Transport) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// Fetch implements hnsearch.Transport.
func (t *Transport) Fetch(ctx context.Context, url string) (hnsearch.Page, error) {
	q, err := hnsearch.ParseURL(url)
	if err != nil {
		return hnsearch.Page{}, err
	}

	if t.latency > 0 {
		timer := time.NewTimer(t.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return hnsearch.Page{}, hnsearch.ContextError(ctx.Err())
		case <-timer.C:
		}
	}

	select {
	case <-ctx.Done():
		return hnsearch.Page{}, hnsearch.ContextError(ctx.Err())
	default:
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var matches []scoredItem
	for _, item := range t.items {
		if score := scoreItem(item, q.Term); score > 0 {
			matches = append(matches, scoredItem{item: item, score: score})
		}
	}

	// Stable so equally scored items keep insertion order.
	slices.SortStableFunc(matches, func(a, b scoredItem) int {
		return cmp.Compare(b.score, a.score)
	})

	nbPages := (len(matches) + t.hitsPerPage - 1) / t.hitsPerPage
	page := hnsearch.Page{
		Items:   []hnsearch.Item{},
		Page:    q.Page,
		NbPages: nbPages,
	}
	// Pages past the end are empty; checked before multiplying so a huge page
	// cannot overflow the offset.
	if q.Page >= nbPages {
		return page, nil
	}

	start := q.Page * t.hitsPerPage
	end := min(start+t.hitsPerPage, len(matches))
	for _, m := range matches[start:end] {
		page.Items = append(page.Items, m.item)
	}

	return page, nil
}

type scoredItem struct {
	item  hnsearch.Item
	score float64
}

// scoreItem calculates the relevance score for an item based on the term.
// Every whitespace-separated word scores once per matching field; items
// matching all words get a boost.
func scoreItem(item hnsearch.Item, term string) float64 {
	words := strings.Fields(strings.ToLower(term))
	if len(words) == 0 {
		return 1.0 // All items match an empty term
	}

	fields := []string{
		strings.ToLower(item.Title),
		strings.ToLower(item.Author),
		strings.ToLower(item.URL),
		strconv.Itoa(item.Score),
	}

	score := 0.0
	matchedWords := 0
	for _, word := range words {
		matched := false
		for _, field := range fields {
			if strings.Contains(field, word) {
				matched = true
				score += 1.0
			}
		}
		if matched {
			matchedWords++
		}
	}

	if matchedWords == 0 {
		return 0
	}
	if matchedWords == len(words) {
		score *= 1.5
	}
	return score
}

// Stories returns the sample stories the demo mode starts with.
func Stories() []hnsearch.Item {
	return []hnsearch.Item{
		{
			ID:           "0",
			Title:        "React",
			URL:          "https://reactjs.org",
			Author:       "Jordan Walke",
			CommentCount: 3,
			Score:        4,
		},
		{
			ID:           "1",
			Title:        "Redux",
			URL:          "https://redux.js.org",
			Author:       "Dan Abramov, Andrew Clark",
			CommentCount: 2,
			Score:        5,
		},
		{
			ID:           "2",
			Title:        "PHP",
			URL:          "https://php.net",
			Author:       "Rasmus Lerdorf",
			CommentCount: 10,
			Score:        10,
		},
	}
}

var _ hnsearch.Transport = (*Transport)(nil)

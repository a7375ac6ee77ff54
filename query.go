package hnsearch

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultBaseURL is the Hacker News search API root.
const DefaultBaseURL = "https://hn.algolia.com/api/v1"

const (
	searchPath = "/search"
	paramQuery = "?query="
	paramPage  = "&page="
)

// Query is one issued search request: a trimmed term and a zero-based page.
type Query struct {
	Term string `json:"term"`
	Page int    `json:"page"`
}

// URL encodes the query against base.
func (q Query) URL(base string) string {
	return EncodeURL(base, q.Term, q.Page)
}

// EncodeURL builds <base>/search?query=<term>&page=<page>. The term is trimmed
// but not escaped; transports escape on the wire.
func EncodeURL(base, term string, page int) string {
	if page < 0 {
		page = 0
	}
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	b.WriteString(searchPath)
	b.WriteString(paramQuery)
	b.WriteString(strings.TrimSpace(term))
	b.WriteString(paramPage)
	b.WriteString(strconv.Itoa(page))
	return b.String()
}

// ParseURL decodes a URL produced by EncodeURL. The term runs from the first
// "?query=" to the last "&page=", so terms containing '&', '?' or even
// "&page=" round-trip.
func ParseURL(rawURL string) (Query, error) {
	start := strings.Index(rawURL, searchPath+paramQuery)
	if start < 0 {
		return Query{}, errors.Wrapf(ErrMalformedQuery, "missing query parameter in %q", rawURL)
	}
	rest := rawURL[start+len(searchPath)+len(paramQuery):]

	end := strings.LastIndex(rest, paramPage)
	if end < 0 {
		return Query{}, errors.Wrapf(ErrMalformedQuery, "missing page parameter in %q", rawURL)
	}

	page, err := strconv.Atoi(rest[end+len(paramPage):])
	if err != nil || page < 0 {
		return Query{}, errors.Wrapf(ErrMalformedQuery, "invalid page in %q", rawURL)
	}

	return Query{Term: strings.TrimSpace(rest[:end]), Page: page}, nil
}

// DecodeURL extracts the search term from rawURL, or "" when it is malformed.
func DecodeURL(rawURL string) string {
	q, err := ParseURL(rawURL)
	if err != nil {
		return ""
	}
	return q.Term
}

package hnsearch

import "context"

// Transport fetches one page of results for a query URL built by EncodeURL.
type Transport interface {
	// Fetch retrieves the page the URL names.
	Fetch(ctx context.Context, url string) (Page, error)
}

// TransportFunc is a function type that implements the Transport interface.
// This allows using a function as a Transport, similar to http.HandlerFunc.
type TransportFunc func(context.Context, string) (Page, error)

// Fetch implements the Transport interface for TransportFunc.
func (f TransportFunc) Fetch(ctx context.Context, url string) (Page, error) {
	return f(ctx, url)
}

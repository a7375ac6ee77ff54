package algolia

import (
	"context"
	"fmt"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hnsearch"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultHitsPerPage is used when no page size is configured.
const DefaultHitsPerPage = 20

// Transport implements hnsearch.Transport by querying an Algolia index with
// the official client.
type Transport struct {
	client      *Client
	indexName   string
	hitsPerPage int
	getIndex    func() (searchIndex, error)
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithHitsPerPage sets the page size. Non-positive values are ignored.
func WithHitsPerPage(n int) TransportOption {
	return func(t *Transport) {
		if n > 0 {
			t.hitsPerPage = n
		}
	}
}

// NewTransport creates a transport for the specified index.
func NewTransport(client *Client, indexName string, opts ...TransportOption) *Transport {
	t := &Transport{
		client:      client,
		indexName:   indexName,
		hitsPerPage: DefaultHitsPerPage,
	}
	t.getIndex = func() (searchIndex, error) {
		return client.index(indexName)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Fetch implements hnsearch.Transport.
func (t *Transport) Fetch(ctx context.Context, url string) (hnsearch.Page, error) {
	q, err := hnsearch.ParseURL(url)
	if err != nil {
		return hnsearch.Page{}, err
	}

	ctx, span := t.client.tracer.Start(ctx, "algolia.search",
		trace.WithAttributes(
			attribute.String("algolia.index_name", t.indexName),
			attribute.String("hnsearch.term", q.Term),
			attribute.Int("hnsearch.page", q.Page),
		),
	)
	defer span.End()

	select {
	case <-ctx.Done():
		return hnsearch.Page{}, hnsearch.ContextError(ctx.Err())
	default:
	}

	index, err := t.getIndex()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return hnsearch.Page{}, errors.WithSecondaryError(
			hnsearch.ErrBackendUnavailable,
			errors.Wrapf(err, "failed to get Algolia client"),
		)
	}

	res, err := index.Search(q.Term, buildSearchParams(ctx, q, t.hitsPerPage)...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("search failed on index %s", t.indexName))
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return hnsearch.Page{}, hnsearch.ContextError(err)
		}
		return hnsearch.Page{}, errors.WithSecondaryError(
			hnsearch.ErrBackendUnavailable,
			errors.Wrapf(err, "Algolia search failed"),
		)
	}

	page, err := convertResponse(res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode hits")
		return hnsearch.Page{}, err
	}

	span.SetAttributes(attribute.Int("hnsearch.item_count", len(page.Items)))
	span.SetStatus(codes.Ok, "search succeeded")
	return page, nil
}

// buildSearchParams converts a query into Algolia search parameters. The
// client takes ctx as a request option and cancels the HTTP call with it.
func buildSearchParams(ctx context.Context, q hnsearch.Query, hitsPerPage int) []interface{} {
	return []interface{}{
		ctx,
		opt.HitsPerPage(hitsPerPage),
		opt.Page(q.Page),
	}
}

// algoliaHit mirrors the stored story record.
type algoliaHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
}

// convertResponse converts an Algolia response into a result page, skipping
// hits without an objectID.
func convertResponse(res search.QueryRes) (hnsearch.Page, error) {
	var hits []algoliaHit
	if err := res.UnmarshalHits(&hits); err != nil {
		return hnsearch.Page{}, errors.Wrap(err, "failed to unmarshal Algolia hits")
	}

	items := make([]hnsearch.Item, 0, len(hits))
	for _, h := range hits {
		if h.ObjectID == "" {
			continue
		}
		items = append(items, hnsearch.Item{
			ID:           h.ObjectID,
			Title:        h.Title,
			URL:          h.URL,
			Author:       h.Author,
			CommentCount: max(h.NumComments, 0),
			Score:        max(h.Points, 0),
		})
	}

	return hnsearch.Page{
		Items:   items,
		Page:    res.Page,
		NbPages: res.NbPages,
	}, nil
}

var _ hnsearch.Transport = (*Transport)(nil)

// Package httpapi implements hnsearch.Transport against the public Hacker News
// search API over plain HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hnsearch"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "hnsearch/1.0"
)

// Client fetches result pages from the search API.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	tracer      trace.Tracer
	userAgent   string
	hitsPerPage int
	tags        string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit caps the request rate. The public API allows roughly 10,000
// requests per hour per IP.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithHitsPerPage sets the page size requested from the API. Zero keeps the
// server default.
func WithHitsPerPage(n int) Option {
	return func(c *Client) {
		c.hitsPerPage = n
	}
}

// WithTags restricts results to the given tag filter, e.g. "story".
func WithTags(tags string) Option {
	return func(c *Client) {
		c.tags = tags
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client. Query URLs carry their own API root, so the same
// client serves any base URL a session encodes against.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second/3), 3),
		tracer:     otel.Tracer("hnsearch-httpapi"),
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch implements hnsearch.Transport.
func (c *Client) Fetch(ctx context.Context, rawURL string) (hnsearch.Page, error) {
	q, err := hnsearch.ParseURL(rawURL)
	if err != nil {
		return hnsearch.Page{}, err
	}

	wireURL, err := c.wireURL(rawURL, q)
	if err != nil {
		return hnsearch.Page{}, err
	}

	ctx, span := c.tracer.Start(ctx, "httpapi.fetch",
		trace.WithAttributes(
			attribute.String("http.url", wireURL),
			attribute.String("hnsearch.term", q.Term),
			attribute.Int("hnsearch.page", q.Page),
		),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rate limiter")
		if ctx.Err() != nil {
			return hnsearch.Page{}, hnsearch.ContextError(ctx.Err())
		}
		return hnsearch.Page{}, errors.WithSecondaryError(hnsearch.ErrTimeout, errors.Wrap(err, "rate limiter"))
	}

	page, err := c.do(ctx, wireURL, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return hnsearch.Page{}, err
	}

	span.SetAttributes(attribute.Int("hnsearch.item_count", len(page.Items)))
	span.SetStatus(codes.Ok, "fetch succeeded")
	return page, nil
}

func (c *Client) do(ctx context.Context, wireURL string, span trace.Span) (hnsearch.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wireURL, nil)
	if err != nil {
		return hnsearch.Page{}, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return hnsearch.Page{}, hnsearch.ContextError(ctx.Err())
		}
		return hnsearch.Page{}, errors.WithSecondaryError(
			hnsearch.ErrBackendUnavailable,
			errors.Wrapf(err, "GET %s failed", wireURL),
		)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return hnsearch.Page{}, errors.WithSecondaryError(
			hnsearch.ErrBackendUnavailable,
			errors.Newf("GET %s: status %d", wireURL, resp.StatusCode),
		)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return hnsearch.Page{}, errors.Wrap(err, "failed to decode search response")
	}

	return sr.page(), nil
}

// wireURL rebuilds the query URL with proper escaping. The canonical query
// URL keeps the term unescaped, which is not a valid request URL for terms
// containing spaces or reserved characters.
func (c *Client) wireURL(rawURL string, q hnsearch.Query) (string, error) {
	base := rawURL[:strings.Index(rawURL, "/search?")]
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "invalid base URL %q", base), hnsearch.ErrMalformedQuery)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/search"

	params := url.Values{}
	params.Set("query", q.Term)
	params.Set("page", strconv.Itoa(q.Page))
	if c.hitsPerPage > 0 {
		params.Set("hitsPerPage", strconv.Itoa(c.hitsPerPage))
	}
	if c.tags != "" {
		params.Set("tags", c.tags)
	}
	u.RawQuery = params.Encode()

	return u.String(), nil
}

var _ hnsearch.Transport = (*Client)(nil)

package hnsearch

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Session is one user's interactive search state: the search term being
// edited, the log of issued queries and the accumulated results.
//
// A Session is not safe for concurrent use. All intents and Settle must be
// called from the same goroutine; only Fetch.Do may run elsewhere.
type Session struct {
	id        ksuid.KSUID
	transport Transport
	cfg       SessionConfig

	term    string
	log     []Query
	results *Accumulator
	sort    SortSpec

	// lastSettled is the log index of the most recently settled fetch, or -1.
	lastSettled int
}

// View is the plain data handed to a renderer.
type View struct {
	SearchTerm string
	Items      []Item
	History    []string
	IsLoading  bool
	IsError    bool
	Err        error
	HasMore    bool
	Page       int
	Sort       SortSpec
}

// NewSession creates a session fetching through transport. The search term
// is seeded from the configured Store.
func NewSession(ctx context.Context, transport Transport, opts ...SessionOption) (*Session, error) {
	if transport == nil {
		return nil, errors.New("hnsearch: transport is required")
	}

	cfg := SessionConfig{}
	for _, opt := range opts {
		opt.Apply(&cfg)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Store == nil {
		cfg.Store = &MapStore{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("hnsearch")
	}

	s := &Session{
		id:          ksuid.New(),
		transport:   transport,
		cfg:         cfg,
		log:         []Query{},
		results:     NewAccumulator(),
		lastSettled: -1,
	}
	s.cfg.Logger = cfg.Logger.With("session_id", s.id.String())

	term, ok, err := cfg.Store.LoadString(ctx, StoreKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load search term")
	}
	if ok {
		s.term = term
	}

	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() ksuid.KSUID {
	return s.id
}

// SearchTerm returns the term currently being edited.
func (s *Session) SearchTerm() string {
	return s.term
}

// Log returns a copy of the issued queries, oldest first.
func (s *Session) Log() []Query {
	return slices.Clone(s.log)
}

// State returns a copy of the accumulated result state.
func (s *Session) State() State {
	return s.results.State()
}

// SetSearchTerm updates the term being edited and persists it. It never
// triggers a fetch. A persistence failure is returned but the term is still
// updated.
func (s *Session) SetSearchTerm(ctx context.Context, text string) error {
	s.term = text

	ctx, span := s.cfg.Tracer.Start(ctx, "hnsearch.save_term",
		trace.WithAttributes(attribute.String("hnsearch.session_id", s.id.String())),
	)
	defer span.End()

	if err := s.cfg.Store.SaveString(ctx, StoreKey, text); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist search term")
		s.cfg.Logger.WarnContext(ctx, "failed to persist search term", "error", err)
		return errors.Wrap(err, "failed to persist search term")
	}
	return nil
}

// SubmitSearch issues a page-0 query for the current term. It returns nil
// without touching the log when the term is blank or when the query would
// repeat the most recent one.
func (s *Session) SubmitSearch() *Fetch {
	term := strings.TrimSpace(s.term)
	if term == "" {
		s.cfg.Logger.Debug("ignoring blank search")
		return nil
	}
	return s.issue(Query{Term: term, Page: 0})
}

// SelectHistory makes term the current term and submits it.
func (s *Session) SelectHistory(ctx context.Context, term string) (*Fetch, error) {
	err := s.SetSearchTerm(ctx, term)
	return s.SubmitSearch(), err
}

// LoadMore issues the next page for the most recent query. It returns nil
// while a fetch is in flight or before any search was issued.
func (s *Session) LoadMore() *Fetch {
	state := s.results.State()
	if state.IsLoading || len(s.log) == 0 {
		return nil
	}
	last := s.log[len(s.log)-1]
	term := DecodeURL(last.URL(s.cfg.BaseURL))
	return s.issue(Query{Term: term, Page: state.Page + 1})
}

// RemoveItem dismisses the item with id from the results.
func (s *Session) RemoveItem(id string) {
	s.results.Dispatch(RemoveItem{ID: id})
}

// SortBy selects key, or flips the direction when key is already selected.
func (s *Session) SortBy(key SortKey) {
	s.sort = ToggleSort(s.sort, key)
}

// History returns the previous-search shortcuts.
func (s *Session) History() []string {
	return History(s.log)
}

// View returns the render data for the current state.
func (s *Session) View() View {
	state := s.results.State()

	items := state.Items
	if s.cfg.TitleFilter {
		items = FilterByTitle(items, s.term)
	}

	return View{
		SearchTerm: s.term,
		Items:      ApplySort(items, s.sort),
		History:    s.History(),
		IsLoading:  state.IsLoading,
		IsError:    state.IsError,
		Err:        state.Err,
		HasMore:    state.HasMore(),
		Page:       state.Page,
		Sort:       s.sort,
	}
}

// FilterByTitle keeps the items whose title contains term, ignoring case.
func FilterByTitle(items []Item, term string) []Item {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return slices.Clone(items)
	}
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), term) {
			out = append(out, item)
		}
	}
	return out
}

// issue appends q to the log and starts the fetch lifecycle. A query whose
// URL equals the log tail is redundant unless the last fetch failed.
func (s *Session) issue(q Query) *Fetch {
	url := q.URL(s.cfg.BaseURL)
	if n := len(s.log); n > 0 && s.log[n-1].URL(s.cfg.BaseURL) == url && !s.results.State().IsError {
		s.cfg.Logger.Debug("ignoring redundant query", "url", url)
		return nil
	}

	s.log = append(s.log, q)
	s.results.Dispatch(FetchInit{})
	s.cfg.Logger.Info("issuing query", "term", q.Term, "page", q.Page)

	return &Fetch{
		Query:     q,
		URL:       url,
		seq:       len(s.log) - 1,
		sessionID: s.id.String(),
		transport: s.transport,
		tracer:    s.cfg.Tracer,
	}
}

// Settle applies the outcome of f. It reports false, leaving the state
// untouched, when f is no longer the most recent query or was already settled.
func (s *Session) Settle(f *Fetch, page Page, err error) bool {
	if f == nil {
		return false
	}
	if f.seq != len(s.log)-1 {
		s.cfg.Logger.Debug("dropping stale response", "url", f.URL)
		return false
	}
	if f.seq == s.lastSettled {
		return false
	}
	s.lastSettled = f.seq

	if err != nil {
		s.cfg.Logger.Warn("fetch failed", "url", f.URL, "error", err)
		s.results.Dispatch(FetchFailure{Err: err})
		return true
	}

	// The requested page decides replace or append. A transport echoing a
	// different page number must not turn a fresh search into an append.
	s.results.Dispatch(FetchSuccess{Items: page.Items, Page: f.Query.Page, NbPages: page.NbPages})
	s.cfg.Logger.Info("fetch settled", "term", f.Query.Term, "page", f.Query.Page, "items", len(page.Items))
	return true
}

// Run performs f and settles it. It is a convenience for callers that fetch
// synchronously; a nil f is a no-op. The fetch error, if any, is returned
// after the session recorded the failure.
func (s *Session) Run(ctx context.Context, f *Fetch) error {
	if f == nil {
		return nil
	}
	page, err := f.Do(ctx)
	s.Settle(f, page, err)
	return err
}

// Fetch is a request issued by a session for one query.
type Fetch struct {
	// Query is the query this fetch serves.
	Query Query
	// URL is the encoded query URL handed to the transport.
	URL string

	seq       int
	sessionID string
	transport Transport
	tracer    trace.Tracer
}

// Do calls the transport. It does not touch session state and may run on any
// goroutine. Failures are marked with ErrTransport.
func (f *Fetch) Do(ctx context.Context) (Page, error) {
	ctx, span := f.tracer.Start(ctx, "hnsearch.fetch",
		trace.WithAttributes(
			attribute.String("hnsearch.session_id", f.sessionID),
			attribute.String("hnsearch.term", f.Query.Term),
			attribute.Int("hnsearch.page", f.Query.Page),
		),
	)
	defer span.End()

	page, err := f.transport.Fetch(ctx, f.URL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return Page{}, errors.Mark(errors.Wrapf(ContextError(err), "fetch %s", f.URL), ErrTransport)
	}

	span.SetAttributes(attribute.Int("hnsearch.item_count", len(page.Items)))
	span.SetStatus(codes.Ok, "fetch succeeded")
	return page, nil
}

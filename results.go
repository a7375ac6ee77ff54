package hnsearch

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// Item is a single story returned by the search API. Items are immutable once
// received.
type Item struct {
	// ID is the unique identifier of the story.
	ID string `json:"objectID"`
	// Title is the story headline.
	Title string `json:"title"`
	// URL is the link the story points to. May be empty for text posts.
	URL string `json:"url"`
	// Author is the submitter's username.
	Author string `json:"author"`
	// CommentCount is the number of comments on the story.
	CommentCount int `json:"num_comments"`
	// Score is the number of points the story has.
	Score int `json:"points"`
}

// Page is one page of results as returned by a Transport.
type Page struct {
	// Items contains the stories on this page, in ranking order.
	Items []Item
	// Page is the zero-based page number that was served.
	Page int
	// NbPages is the total number of pages available, when known. Zero means unknown.
	NbPages int
}

// Status is the fetch lifecycle state derived from a State.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// State is the accumulated result list together with its fetch flags.
type State struct {
	Items     []Item
	Page      int
	NbPages   int
	IsLoading bool
	IsError   bool
	settled   bool

	// Err is the error of the last failed fetch, cleared by the next fetch.
	Err error
}

// Status reports where the state sits in the fetch lifecycle.
func (s State) Status() Status {
	switch {
	case s.IsLoading:
		return StatusLoading
	case s.IsError:
		return StatusFailure
	case s.settled:
		return StatusSuccess
	default:
		return StatusIdle
	}
}

// HasMore reports whether the last settled page advertised further pages.
func (s State) HasMore() bool {
	return s.NbPages > 0 && s.Page+1 < s.NbPages
}

// Action is a state transition request for Reduce.
type Action interface {
	action()
}

type baseAction struct{}

func (baseAction) action() {}

// FetchInit marks the start of a fetch.
type FetchInit struct {
	baseAction
}

// FetchSuccess delivers a page of results. Page 0 replaces the accumulated
// items, any later page appends to them.
type FetchSuccess struct {
	baseAction
	Items   []Item
	Page    int
	NbPages int
}

// FetchFailure settles a fetch as failed. Accumulated items are kept.
type FetchFailure struct {
	baseAction
	Err error
}

// RemoveItem drops the item with ID from the accumulated list.
type RemoveItem struct {
	baseAction
	ID string
}

// Reduce applies action to state and returns the new state. It panics with an
// error marked as ErrInvalidAction when given an action it does not know.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case FetchInit:
		state.IsLoading = true
		state.IsError = false
		state.Err = nil
		return state

	case FetchSuccess:
		state.IsLoading = false
		state.IsError = false
		state.Err = nil
		state.settled = true
		if a.Page == 0 {
			state.Items = slices.Clone(a.Items)
		} else {
			state.Items = append(slices.Clip(state.Items), a.Items...)
		}
		state.Page = a.Page
		state.NbPages = a.NbPages
		return state

	case FetchFailure:
		state.IsLoading = false
		state.IsError = true
		state.Err = a.Err
		state.settled = true
		return state

	case RemoveItem:
		state.Items = slices.DeleteFunc(slices.Clone(state.Items), func(item Item) bool {
			return item.ID == a.ID
		})
		return state

	default:
		panic(errors.Mark(errors.AssertionFailedf("hnsearch: unknown action %T", action), ErrInvalidAction))
	}
}

// Accumulator owns a State and is its only writer.
type Accumulator struct {
	state State
}

// NewAccumulator returns an idle accumulator with no items.
func NewAccumulator() *Accumulator {
	return &Accumulator{state: State{Items: []Item{}}}
}

// Dispatch applies action to the owned state.
func (a *Accumulator) Dispatch(action Action) {
	a.state = Reduce(a.state, action)
}

// State returns a copy of the current state.
func (a *Accumulator) State() State {
	s := a.state
	s.Items = slices.Clone(a.state.Items)
	return s
}

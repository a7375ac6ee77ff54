package hnsearch

import (
	"slices"
	"testing"

	"github.com/cockroachdb/errors"
)

var (
	itemX = Item{ID: "x", Title: "X", Author: "ax", CommentCount: 1, Score: 10}
	itemY = Item{ID: "y", Title: "Y", Author: "ay", CommentCount: 2, Score: 20}
	itemZ = Item{ID: "z", Title: "Z", Author: "az", CommentCount: 3, Score: 30}
)

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestReduce_FetchInit(t *testing.T) {
	state := State{Items: []Item{itemX}, Page: 2, IsError: true}

	got := Reduce(state, FetchInit{})

	if !got.IsLoading || got.IsError {
		t.Errorf("Expected loading without error, got loading=%v error=%v", got.IsLoading, got.IsError)
	}
	if got.Page != 2 || !slices.Equal(ids(got.Items), []string{"x"}) {
		t.Errorf("FetchInit must not touch items or page, got page=%d items=%v", got.Page, ids(got.Items))
	}
	if got.Status() != StatusLoading {
		t.Errorf("Expected status loading, got %s", got.Status())
	}
}

func TestReduce_FetchSuccess(t *testing.T) {
	tests := []struct {
		name     string
		prior    []Item
		payload  []Item
		page     int
		expected []string
	}{
		{
			name:     "page zero replaces",
			prior:    []Item{itemX, itemY},
			payload:  []Item{itemZ},
			page:     0,
			expected: []string{"z"},
		},
		{
			name:     "later page appends",
			prior:    []Item{itemX, itemY},
			payload:  []Item{itemZ},
			page:     1,
			expected: []string{"x", "y", "z"},
		},
		{
			name:     "duplicates across pages are kept",
			prior:    []Item{itemX},
			payload:  []Item{itemX},
			page:     1,
			expected: []string{"x", "x"},
		},
		{
			name:     "empty page zero clears",
			prior:    []Item{itemX},
			payload:  nil,
			page:     0,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := Reduce(State{Items: tt.prior}, FetchInit{})
			got := Reduce(state, FetchSuccess{Items: tt.payload, Page: tt.page})

			if !slices.Equal(ids(got.Items), tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, ids(got.Items))
			}
			if got.Page != tt.page {
				t.Errorf("Expected page %d, got %d", tt.page, got.Page)
			}
			if got.IsLoading || got.IsError {
				t.Errorf("Expected settled success, got loading=%v error=%v", got.IsLoading, got.IsError)
			}
			if got.Status() != StatusSuccess {
				t.Errorf("Expected status success, got %s", got.Status())
			}
		})
	}
}

func TestReduce_FetchSuccessDoesNotAliasPrior(t *testing.T) {
	prior := make([]Item, 1, 4)
	prior[0] = itemX
	state := State{Items: prior}

	a := Reduce(state, FetchSuccess{Items: []Item{itemY}, Page: 1})
	b := Reduce(state, FetchSuccess{Items: []Item{itemZ}, Page: 1})

	if a.Items[1].ID != "y" || b.Items[1].ID != "z" {
		t.Errorf("Appends share a backing array: a=%v b=%v", ids(a.Items), ids(b.Items))
	}
}

func TestReduce_FetchFailure(t *testing.T) {
	state := Reduce(State{Items: []Item{itemX, itemY}, Page: 1}, FetchInit{})

	got := Reduce(state, FetchFailure{Err: errors.New("boom")})

	if got.IsLoading || !got.IsError {
		t.Errorf("Expected settled failure, got loading=%v error=%v", got.IsLoading, got.IsError)
	}
	if got.Page != 1 || !slices.Equal(ids(got.Items), []string{"x", "y"}) {
		t.Errorf("Failure must keep stale items, got page=%d items=%v", got.Page, ids(got.Items))
	}
	if got.Status() != StatusFailure {
		t.Errorf("Expected status failure, got %s", got.Status())
	}
	if got.Err == nil || got.Err.Error() != "boom" {
		t.Errorf("Expected failure error to be kept, got %v", got.Err)
	}

	if retry := Reduce(got, FetchInit{}); retry.Err != nil {
		t.Errorf("FetchInit should clear the last error, got %v", retry.Err)
	}
	if ok := Reduce(got, FetchSuccess{Items: []Item{itemX}}); ok.Err != nil {
		t.Errorf("FetchSuccess should clear the last error, got %v", ok.Err)
	}
}

func TestReduce_RemoveItem(t *testing.T) {
	state := State{Items: []Item{itemX, itemY}, IsLoading: true}

	got := Reduce(state, RemoveItem{ID: "x"})
	if !slices.Equal(ids(got.Items), []string{"y"}) {
		t.Errorf("Expected [y], got %v", ids(got.Items))
	}
	if !got.IsLoading {
		t.Error("RemoveItem must not change loading flag")
	}
	if !slices.Equal(ids(state.Items), []string{"x", "y"}) {
		t.Errorf("RemoveItem mutated prior state: %v", ids(state.Items))
	}

	again := Reduce(got, RemoveItem{ID: "missing"})
	if !slices.Equal(ids(again.Items), []string{"y"}) {
		t.Errorf("Removing an absent id should be a no-op, got %v", ids(again.Items))
	}
}

type bogusAction struct {
	baseAction
}

func TestReduce_InvalidActionPanics(t *testing.T) {
	for _, action := range []Action{nil, bogusAction{}} {
		func() {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatalf("Expected panic for %T", action)
				}
				err, ok := r.(error)
				if !ok {
					t.Fatalf("Expected error panic value, got %T", r)
				}
				if !errors.Is(err, ErrInvalidAction) {
					t.Errorf("Expected ErrInvalidAction, got %v", err)
				}
				if !errors.IsAssertionFailure(err) {
					t.Errorf("Expected assertion failure, got %v", err)
				}
			}()
			Reduce(State{}, action)
		}()
	}
}

func TestStatus_Idle(t *testing.T) {
	acc := NewAccumulator()
	if got := acc.State().Status(); got != StatusIdle {
		t.Errorf("Expected idle, got %s", got)
	}
}

func TestAccumulator_StateIsCopy(t *testing.T) {
	acc := NewAccumulator()
	acc.Dispatch(FetchSuccess{Items: []Item{itemX}, Page: 0})

	s := acc.State()
	s.Items[0].Title = "mutated"

	if acc.State().Items[0].Title != "X" {
		t.Error("State() must return a copy of the items")
	}
}

func TestState_HasMore(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{name: "unknown page count", state: State{Page: 0, NbPages: 0}, expected: false},
		{name: "more pages", state: State{Page: 0, NbPages: 3}, expected: true},
		{name: "last page", state: State{Page: 2, NbPages: 3}, expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.HasMore(); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

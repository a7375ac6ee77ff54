package hnsearch

import (
	"slices"
	"strings"
	"testing"
)

func sortFixture() []Item {
	return []Item{
		{ID: "1", Title: "b", Author: "carol", CommentCount: 5, Score: 3},
		{ID: "2", Title: "a", Author: "alice", CommentCount: 2, Score: 0},
		{ID: "3", Title: "a", Author: "Bob", CommentCount: 9, Score: 1},
		{ID: "4", Title: "C", Author: "alice", CommentCount: 2, Score: 7},
	}
}

func TestApplySort(t *testing.T) {
	tests := []struct {
		name     string
		spec     SortSpec
		expected []string
	}{
		{
			name:     "none keeps arrival order",
			spec:     SortSpec{Key: SortNone},
			expected: []string{"1", "2", "3", "4"},
		},
		{
			name:     "none ignores reversed",
			spec:     SortSpec{Key: SortNone, Reversed: true},
			expected: []string{"1", "2", "3", "4"},
		},
		{
			name:     "title is stable and case sensitive",
			spec:     SortSpec{Key: SortTitle},
			expected: []string{"4", "2", "3", "1"},
		},
		{
			name:     "title reversed flips ties",
			spec:     SortSpec{Key: SortTitle, Reversed: true},
			expected: []string{"1", "3", "2", "4"},
		},
		{
			name:     "author",
			spec:     SortSpec{Key: SortAuthor},
			expected: []string{"3", "2", "4", "1"},
		},
		{
			name:     "comments numeric with ties",
			spec:     SortSpec{Key: SortComments},
			expected: []string{"2", "4", "1", "3"},
		},
		{
			name:     "comments reversed",
			spec:     SortSpec{Key: SortComments, Reversed: true},
			expected: []string{"3", "1", "4", "2"},
		},
		{
			name:     "score",
			spec:     SortSpec{Key: SortScore},
			expected: []string{"2", "3", "1", "4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := sortFixture()
			got := ApplySort(items, tt.spec)
			if !slices.Equal(ids(got), tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, ids(got))
			}
			if !slices.Equal(ids(items), []string{"1", "2", "3", "4"}) {
				t.Errorf("ApplySort mutated its input: %v", ids(items))
			}
		})
	}
}

func TestApplySort_ReverseIsNotDescendingComparator(t *testing.T) {
	items := []Item{
		{ID: "first", Title: "same"},
		{ID: "second", Title: "same"},
		{ID: "other", Title: "aaa"},
	}

	asc := ApplySort(items, SortSpec{Key: SortTitle})
	if !slices.Equal(ids(asc), []string{"other", "first", "second"}) {
		t.Fatalf("Unexpected ascending order %v", ids(asc))
	}

	desc := ApplySort(items, SortSpec{Key: SortTitle, Reversed: true})
	if !slices.Equal(ids(desc), []string{"second", "first", "other"}) {
		t.Errorf("Expected tie order to flip exactly once, got %v", ids(desc))
	}
}

func TestToggleSort(t *testing.T) {
	tests := []struct {
		name     string
		current  SortSpec
		key      SortKey
		expected SortSpec
	}{
		{
			name:     "new key starts ascending",
			current:  SortSpec{Key: SortNone},
			key:      SortTitle,
			expected: SortSpec{Key: SortTitle},
		},
		{
			name:     "same key flips",
			current:  SortSpec{Key: SortTitle},
			key:      SortTitle,
			expected: SortSpec{Key: SortTitle, Reversed: true},
		},
		{
			name:     "same key flips back",
			current:  SortSpec{Key: SortTitle, Reversed: true},
			key:      SortTitle,
			expected: SortSpec{Key: SortTitle},
		},
		{
			name:     "switching key resets direction",
			current:  SortSpec{Key: SortTitle, Reversed: true},
			key:      SortScore,
			expected: SortSpec{Key: SortScore},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToggleSort(tt.current, tt.key); got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		input    string
		expected SortKey
		wantErr  bool
	}{
		{input: "", expected: SortNone},
		{input: "none", expected: SortNone},
		{input: "Title", expected: SortTitle},
		{input: "author", expected: SortAuthor},
		{input: "comments", expected: SortComments},
		{input: "points", expected: SortScore},
		{input: "score", expected: SortScore},
		{input: "date", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSortKey(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
			if tt.input != "score" && tt.input != "" && got.String() != strings.ToLower(tt.input) {
				t.Errorf("String() = %q does not round-trip %q", got.String(), tt.input)
			}
		})
	}
}

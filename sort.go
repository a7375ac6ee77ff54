package hnsearch

import (
	"cmp"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// SortKey names the field results are ordered by.
type SortKey int

const (
	SortNone SortKey = iota
	SortTitle
	SortAuthor
	SortComments
	SortScore
)

var sortKeyNames = map[SortKey]string{
	SortNone:     "none",
	SortTitle:    "title",
	SortAuthor:   "author",
	SortComments: "comments",
	SortScore:    "points",
}

func (k SortKey) String() string {
	if name, ok := sortKeyNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseSortKey parses the names produced by SortKey.String. "score" is
// accepted as an alias for "points".
func ParseSortKey(name string) (SortKey, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		return SortNone, nil
	case "score":
		return SortScore, nil
	}
	for k, n := range sortKeyNames {
		if n == name {
			return k, nil
		}
	}
	return SortNone, errors.Newf("hnsearch: unknown sort key %q", name)
}

// SortSpec selects a sort key and direction.
type SortSpec struct {
	Key      SortKey
	Reversed bool
}

// ApplySort returns a new slice ordered by spec. Sorting is a stable ascending
// sort followed by reversing the whole output, so under Reversed the relative
// order of equal keys flips too. Strings compare case-sensitively.
func ApplySort(items []Item, spec SortSpec) []Item {
	out := slices.Clone(items)
	if spec.Key == SortNone {
		return out
	}

	slices.SortStableFunc(out, compareBy(spec.Key))
	if spec.Reversed {
		slices.Reverse(out)
	}
	return out
}

// ToggleSort flips the direction when key is already selected, otherwise it
// selects key in ascending order.
func ToggleSort(current SortSpec, key SortKey) SortSpec {
	if current.Key == key {
		return SortSpec{Key: key, Reversed: !current.Reversed}
	}
	return SortSpec{Key: key}
}

func compareBy(key SortKey) func(a, b Item) int {
	switch key {
	case SortTitle:
		return func(a, b Item) int { return strings.Compare(a.Title, b.Title) }
	case SortAuthor:
		return func(a, b Item) int { return strings.Compare(a.Author, b.Author) }
	case SortComments:
		return func(a, b Item) int { return cmp.Compare(a.CommentCount, b.CommentCount) }
	case SortScore:
		return func(a, b Item) int { return cmp.Compare(a.Score, b.Score) }
	default:
		return func(a, b Item) int { return 0 }
	}
}

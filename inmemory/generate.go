package inmemory

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/letmevibethatforyou/hnsearch"
	"github.com/segmentio/ksuid"
)

var (
	subjects = map[string][]string{
		"Go":         {"generics", "the scheduler", "error handling", "modules", "iterators"},
		"Rust":       {"the borrow checker", "async", "embedded targets", "compile times"},
		"PostgreSQL": {"vacuum", "logical replication", "JSONB", "query planning"},
		"SQLite":     {"WAL mode", "the query planner", "full-text search", "backups"},
		"Kubernetes": {"operators", "autoscaling", "networking", "cost"},
		"WebAssembly": {
			"the component model", "garbage collection", "server-side runtimes",
		},
	}

	formats = []string{
		"Show HN: A tiny tool for %s %s",
		"Ask HN: How do you handle %s %s?",
		"Lessons learned from %s %s",
		"Understanding %s %s",
		"%s and %s in production",
	}

	authors = []string{
		"pg", "dang", "tptacek", "patio11", "jacquesm", "rayiner", "kens", "ingve",
	}
)

// Generate returns n random stories drawn from r. IDs are unique ksuids.
func Generate(n int, r *rand.Rand) []hnsearch.Item {
	names := make([]string, 0, len(subjects))
	for name := range subjects {
		names = append(names, name)
	}
	// Map order is random; sort so r alone decides the output.
	slices.Sort(names)

	items := make([]hnsearch.Item, 0, max(n, 0))
	for range n {
		name := names[r.IntN(len(names))]
		topics := subjects[name]
		topic := topics[r.IntN(len(topics))]
		title := fmt.Sprintf(formats[r.IntN(len(formats))], name, topic)

		items = append(items, hnsearch.Item{
			ID:           ksuid.New().String(),
			Title:        title,
			URL:          "https://example.com/" + slug(title),
			Author:       authors[r.IntN(len(authors))],
			CommentCount: r.IntN(500),
			Score:        r.IntN(1000) + 1,
		})
	}
	return items
}

func slug(title string) string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	return strings.Join(fields, "-")
}

package inmemory

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/letmevibethatforyou/hnsearch"
)

func TestGenerate(t *testing.T) {
	items := Generate(25, rand.New(rand.NewPCG(1, 2)))
	if len(items) != 25 {
		t.Fatalf("expected 25 items, got %d", len(items))
	}

	seen := make(map[string]bool)
	for _, item := range items {
		if seen[item.ID] {
			t.Errorf("duplicate id %s", item.ID)
		}
		seen[item.ID] = true

		if item.Title == "" || item.Author == "" {
			t.Errorf("incomplete item %+v", item)
		}
		if !strings.HasPrefix(item.URL, "https://example.com/") {
			t.Errorf("unexpected url %q", item.URL)
		}
		if item.Score < 1 || item.CommentCount < 0 {
			t.Errorf("counts out of range in %+v", item)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(10, rand.New(rand.NewPCG(7, 7)))
	b := Generate(10, rand.New(rand.NewPCG(7, 7)))

	for i := range a {
		if a[i].Title != b[i].Title || a[i].Author != b[i].Author || a[i].Score != b[i].Score {
			t.Errorf("item %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerate_Searchable(t *testing.T) {
	transport := New()
	transport.Add(Generate(50, rand.New(rand.NewPCG(3, 4)))...)

	page, err := transport.Fetch(context.Background(), hnsearch.EncodeURL(hnsearch.DefaultBaseURL, "", 0))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if page.NbPages != 3 {
		t.Errorf("expected 3 pages of 20, got %d", page.NbPages)
	}
}

func TestSlug(t *testing.T) {
	if got := slug("Ask HN: How do you handle Go generics?"); got != "ask-hn-how-do-you-handle-go-generics" {
		t.Errorf("unexpected slug %q", got)
	}
}

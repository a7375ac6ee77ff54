package algolia

import (
	"context"
	"fmt"
	"testing"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hnsearch"
)

type fakeWriteIndex struct {
	saved    []algoliaHit
	deleted  []string
	err      error
	lastOpts []interface{}
}

func (f *fakeWriteIndex) SaveObjects(objects interface{}, opts ...interface{}) (search.GroupBatchRes, error) {
	f.lastOpts = opts
	if f.err != nil {
		return search.GroupBatchRes{}, f.err
	}
	f.saved = append(f.saved, objects.([]algoliaHit)...)
	return search.GroupBatchRes{}, nil
}

func (f *fakeWriteIndex) DeleteObjects(objectIDs []string, opts ...interface{}) (search.BatchRes, error) {
	f.lastOpts = opts
	if f.err != nil {
		return search.BatchRes{}, f.err
	}
	f.deleted = append(f.deleted, objectIDs...)
	return search.BatchRes{}, nil
}

func newTestIndexer(idx *fakeWriteIndex) *Indexer {
	ix := NewIndexer(NewClient(StaticSecrets("app", "write-key")), "Item_test")
	ix.getIndex = func() (writeIndex, error) { return idx, nil }
	return ix
}

func TestIndexer_SaveItems(t *testing.T) {
	idx := &fakeWriteIndex{}
	ix := newTestIndexer(idx)

	items := []hnsearch.Item{
		{ID: "1", Title: "React", URL: "https://reactjs.org", Author: "Jordan Walke", CommentCount: 3, Score: 4},
		{ID: "2", Title: "Redux", Author: "Dan Abramov", Score: 5},
	}
	if err := ix.SaveItems(context.Background(), items); err != nil {
		t.Fatalf("SaveItems failed: %v", err)
	}

	if len(idx.saved) != 2 {
		t.Fatalf("expected 2 saved records, got %d", len(idx.saved))
	}
	want := algoliaHit{ObjectID: "1", Title: "React", URL: "https://reactjs.org", Author: "Jordan Walke", Points: 4, NumComments: 3}
	if idx.saved[0] != want {
		t.Errorf("expected %+v, got %+v", want, idx.saved[0])
	}
	if !hasContext(idx.lastOpts) {
		t.Error("expected the request context among the save options")
	}
}

func TestIndexer_SaveItemsRoundTrip(t *testing.T) {
	idx := &fakeWriteIndex{}
	item := hnsearch.Item{ID: "9", Title: "PHP", URL: "https://php.net", Author: "Rasmus Lerdorf", CommentCount: 10, Score: 10}
	if err := newTestIndexer(idx).SaveItems(context.Background(), []hnsearch.Item{item}); err != nil {
		t.Fatalf("SaveItems failed: %v", err)
	}

	hit := idx.saved[0]
	res := search.QueryRes{
		Hits: []map[string]interface{}{{
			"objectID":     hit.ObjectID,
			"title":        hit.Title,
			"url":          hit.URL,
			"author":       hit.Author,
			"points":       hit.Points,
			"num_comments": hit.NumComments,
		}},
		NbPages: 1,
	}
	page, err := convertResponse(res)
	if err != nil {
		t.Fatalf("convertResponse failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0] != item {
		t.Errorf("expected %+v back, got %+v", item, page.Items)
	}
}

func TestIndexer_Empty(t *testing.T) {
	idx := &fakeWriteIndex{err: fmt.Errorf("should not be called")}
	ix := newTestIndexer(idx)

	if err := ix.SaveItems(context.Background(), nil); err != nil {
		t.Errorf("SaveItems(nil) = %v", err)
	}
	if err := ix.DeleteItems(context.Background(), nil); err != nil {
		t.Errorf("DeleteItems(nil) = %v", err)
	}
}

func TestIndexer_MissingID(t *testing.T) {
	idx := &fakeWriteIndex{}
	err := newTestIndexer(idx).SaveItems(context.Background(), []hnsearch.Item{{Title: "no id"}})
	if err == nil {
		t.Fatal("expected error for item without ID")
	}
	if len(idx.saved) != 0 {
		t.Error("nothing should be saved when an item is invalid")
	}
}

func TestIndexer_DeleteItems(t *testing.T) {
	idx := &fakeWriteIndex{}
	if err := newTestIndexer(idx).DeleteItems(context.Background(), []string{"1", "2"}); err != nil {
		t.Fatalf("DeleteItems failed: %v", err)
	}
	if len(idx.deleted) != 2 || idx.deleted[0] != "1" || idx.deleted[1] != "2" {
		t.Errorf("unexpected deleted ids %v", idx.deleted)
	}
	if !hasContext(idx.lastOpts) {
		t.Error("expected the request context among the delete options")
	}
}

func TestIndexer_Errors(t *testing.T) {
	idx := &fakeWriteIndex{err: fmt.Errorf("403 not allowed")}
	ix := newTestIndexer(idx)
	ctx := context.Background()

	if err := ix.SaveItems(ctx, []hnsearch.Item{{ID: "1"}}); !errors.Is(err, hnsearch.ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable from SaveItems, got %v", err)
	}
	if err := ix.DeleteItems(ctx, []string{"1"}); !errors.Is(err, hnsearch.ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable from DeleteItems, got %v", err)
	}

	noCreds := NewIndexer(NewClient(StaticSecrets("app", "")), "Item_test")
	if err := noCreds.SaveItems(ctx, []hnsearch.Item{{ID: "1"}}); !errors.Is(err, hnsearch.ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable without credentials, got %v", err)
	}
}

package algolia

import (
	"context"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hnsearch"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// writeIndex is the part of *search.Index the indexer uses.
type writeIndex interface {
	SaveObjects(objects interface{}, opts ...interface{}) (search.GroupBatchRes, error)
	DeleteObjects(objectIDs []string, opts ...interface{}) (search.BatchRes, error)
}

// Indexer writes stories to an Algolia index so a Transport can find them.
// The client's API key must have write access.
type Indexer struct {
	client    *Client
	indexName string
	getIndex  func() (writeIndex, error)
}

// NewIndexer creates an indexer for the specified index.
func NewIndexer(client *Client, indexName string) *Indexer {
	return &Indexer{
		client:    client,
		indexName: indexName,
		getIndex: func() (writeIndex, error) {
			c, err := client.getClient()
			if err != nil {
				return nil, err
			}
			return c.InitIndex(indexName), nil
		},
	}
}

// SaveItems adds or replaces items, keyed by their ID.
func (ix *Indexer) SaveItems(ctx context.Context, items []hnsearch.Item) error {
	if len(items) == 0 {
		return nil
	}

	ctx, span := ix.client.tracer.Start(ctx, "algolia.save_objects",
		trace.WithAttributes(
			attribute.String("algolia.index_name", ix.indexName),
			attribute.Int("algolia.object_count", len(items)),
		),
	)
	defer span.End()

	index, err := ix.getIndex()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return errors.WithSecondaryError(hnsearch.ErrBackendUnavailable, err)
	}

	records := make([]algoliaHit, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			span.SetStatus(codes.Error, "item without ID")
			return errors.Newf("item %q has no ID", item.Title)
		}
		records = append(records, algoliaHit{
			ObjectID:    item.ID,
			Title:       item.Title,
			URL:         item.URL,
			Author:      item.Author,
			Points:      item.Score,
			NumComments: item.CommentCount,
		})
	}

	if _, err := index.SaveObjects(records, ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return errors.WithSecondaryError(
			hnsearch.ErrBackendUnavailable,
			errors.Wrapf(err, "failed to batch save objects to Algolia index %s", ix.indexName),
		)
	}

	span.SetStatus(codes.Ok, "saved")
	return nil
}

// DeleteItems removes the items with the given IDs.
func (ix *Indexer) DeleteItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	ctx, span := ix.client.tracer.Start(ctx, "algolia.delete_objects",
		trace.WithAttributes(
			attribute.String("algolia.index_name", ix.indexName),
			attribute.Int("algolia.object_count", len(ids)),
		),
	)
	defer span.End()

	index, err := ix.getIndex()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return errors.WithSecondaryError(hnsearch.ErrBackendUnavailable, err)
	}

	if _, err := index.DeleteObjects(ids, ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return errors.WithSecondaryError(
			hnsearch.ErrBackendUnavailable,
			errors.Wrapf(err, "failed to batch delete objects from Algolia index %s", ix.indexName),
		)
	}

	span.SetStatus(codes.Ok, "deleted")
	return nil
}

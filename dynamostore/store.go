// Package dynamostore persists session values in a DynamoDB table keyed by
// (pk, sk), where pk is a partition such as a session id.
package dynamostore

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hnsearch"
	"github.com/letmevibethatforyou/hnsearch/internal/ddb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultPartition is used when no partition is given.
const DefaultPartition = "default"

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Store is an hnsearch.Store over one partition of a DynamoDB table.
type Store struct {
	client    API
	table     string
	partition string
	tracer    trace.Tracer
	now       func() time.Time
}

// New creates a store writing to table under partition.
func New(client API, table, partition string) *Store {
	if partition == "" {
		partition = DefaultPartition
	}
	return &Store{
		client:    client,
		table:     table,
		partition: partition,
		tracer:    otel.Tracer("hnsearch-dynamostore"),
		now:       time.Now,
	}
}

// Partition returns the partition key value items are stored under.
func (s *Store) Partition() string {
	return s.partition
}

// LoadString implements hnsearch.Store.
func (s *Store) LoadString(ctx context.Context, key string) (string, bool, error) {
	ctx, span := s.tracer.Start(ctx, "dynamostore.get",
		trace.WithAttributes(
			attribute.String("dynamodb.table", s.table),
			attribute.String("hnsearch.key", key),
		),
	)
	defer span.End()

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            ddb.Key(s.partition, key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "GetItem failed")
		return "", false, errors.WithSecondaryError(
			hnsearch.ErrBackendUnavailable,
			errors.Wrapf(err, "failed to get %s/%s from %s", s.partition, key, s.table),
		)
	}
	if len(out.Item) == 0 {
		span.SetAttributes(attribute.Bool("hnsearch.found", false))
		return "", false, nil
	}

	record, err := ddb.UnmarshalRecord(out.Item)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal item")
		return "", false, errors.Wrapf(err, "failed to unmarshal %s/%s", s.partition, key)
	}

	span.SetAttributes(attribute.Bool("hnsearch.found", true))
	return record.Value, true, nil
}

// SaveString implements hnsearch.Store.
func (s *Store) SaveString(ctx context.Context, key, value string) error {
	ctx, span := s.tracer.Start(ctx, "dynamostore.put",
		trace.WithAttributes(
			attribute.String("dynamodb.table", s.table),
			attribute.String("hnsearch.key", key),
		),
	)
	defer span.End()

	item, err := ddb.MarshalRecord(ddb.Record{
		PK:        s.partition,
		SK:        key,
		Value:     value,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		span.RecordError(err)
		return errors.Wrapf(err, "failed to marshal %s/%s", s.partition, key)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "PutItem failed")
		return errors.WithSecondaryError(
			hnsearch.ErrBackendUnavailable,
			errors.Wrapf(err, "failed to put %s/%s into %s", s.partition, key, s.table),
		)
	}
	return nil
}

var _ hnsearch.Store = (*Store)(nil)

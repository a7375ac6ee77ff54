// Package ddb holds the DynamoDB item layout shared by the DynamoDB-backed
// components.
package ddb

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Attribute names of the table key.
const (
	PartitionKey = "pk"
	SortKey      = "sk"
)

// Record is one stored value. Items are partitioned by owner (a session id
// or a fixed namespace) and sorted by value key.
type Record struct {
	PK        string    `dynamodbav:"pk"`
	SK        string    `dynamodbav:"sk"`
	Value     string    `dynamodbav:"value"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

// Key returns the primary key attributes for pk and sk.
func Key(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		PartitionKey: &types.AttributeValueMemberS{Value: pk},
		SortKey:      &types.AttributeValueMemberS{Value: sk},
	}
}

// MarshalRecord converts a Record into a DynamoDB item.
func MarshalRecord(r Record) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(r)
}

// UnmarshalRecord converts a DynamoDB item into a Record.
func UnmarshalRecord(item map[string]types.AttributeValue) (Record, error) {
	var record Record
	err := attributevalue.UnmarshalMap(item, &record)
	if err != nil {
		return Record{}, err
	}
	return record, nil
}

package ddb

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestRecordRoundTrip(t *testing.T) {
	updated := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	in := Record{PK: "session#2abc", SK: "search", Value: "react hooks", UpdatedAt: updated}

	item, err := MarshalRecord(in)
	if err != nil {
		t.Fatalf("MarshalRecord failed: %v", err)
	}

	for _, name := range []string{"pk", "sk", "value", "updated_at"} {
		if _, ok := item[name]; !ok {
			t.Errorf("expected attribute %q in item", name)
		}
	}
	if pk, ok := item["pk"].(*types.AttributeValueMemberS); !ok || pk.Value != "session#2abc" {
		t.Errorf("unexpected pk attribute %#v", item["pk"])
	}

	out, err := UnmarshalRecord(item)
	if err != nil {
		t.Fatalf("UnmarshalRecord failed: %v", err)
	}
	if out.PK != in.PK || out.SK != in.SK || out.Value != in.Value || !out.UpdatedAt.Equal(in.UpdatedAt) {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestUnmarshalRecord(t *testing.T) {
	tests := []struct {
		name    string
		item    map[string]types.AttributeValue
		want    Record
		wantErr bool
	}{
		{
			name: "value only",
			item: map[string]types.AttributeValue{
				"pk":    &types.AttributeValueMemberS{Value: "default"},
				"sk":    &types.AttributeValueMemberS{Value: "search"},
				"value": &types.AttributeValueMemberS{Value: "golang"},
			},
			want: Record{PK: "default", SK: "search", Value: "golang"},
		},
		{
			name: "empty item",
			item: map[string]types.AttributeValue{},
			want: Record{},
		},
		{
			name: "wrong value type",
			item: map[string]types.AttributeValue{
				"value": &types.AttributeValueMemberBOOL{Value: true},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalRecord(tt.item)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestKey(t *testing.T) {
	key := Key("p", "s")
	if len(key) != 2 {
		t.Fatalf("expected 2 key attributes, got %d", len(key))
	}
	if sk, ok := key[SortKey].(*types.AttributeValueMemberS); !ok || sk.Value != "s" {
		t.Errorf("unexpected sort key %#v", key[SortKey])
	}
}

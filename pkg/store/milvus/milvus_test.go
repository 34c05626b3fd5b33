package milvus

import (
	"context"
	"errors"
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/tracery-ai/tracery/pkg/store"
)

func TestColumnValue_VarChar(t *testing.T) {
	col := entity.NewColumnVarChar("name", []string{"Demo Day", "融资策略"})
	val, ok := ColumnValue(col, 1)
	if !ok {
		t.Fatal("expected value, got none")
	}
	if val != "融资策略" {
		t.Fatalf("unexpected value: %v", val)
	}
}

func TestColumnValue_Int64(t *testing.T) {
	col := entity.NewColumnInt64("community_id", []int64{4, 7})
	val, ok := ColumnValue(col, 0)
	if !ok {
		t.Fatal("expected value, got none")
	}
	if val != int64(4) {
		t.Fatalf("unexpected value: %v", val)
	}
}

func TestColumnValue_Int32WidensToInt64(t *testing.T) {
	col := entity.NewColumnInt32("size", []int32{12})
	val, ok := ColumnValue(col, 0)
	if !ok {
		t.Fatal("expected value, got none")
	}
	if val != int64(12) {
		t.Fatalf("expected int64(12), got %T %v", val, val)
	}
}

func TestColumnValue_OutOfRange(t *testing.T) {
	col := entity.NewColumnInt64("community_id", []int64{1})
	if _, ok := ColumnValue(col, 3); ok {
		t.Fatal("expected no value for out-of-range index")
	}
}

func TestSearch_RejectsInvalidBounds(t *testing.T) {
	v := &VectorStore{}

	_, err := v.Search(context.Background(), store.CollectionEntities, []float32{0.1}, 0)
	if !errors.Is(err, store.ErrInvalidBound) {
		t.Fatalf("expected ErrInvalidBound for k=0, got %v", err)
	}

	_, err = v.Search(context.Background(), store.CollectionEntities, nil, 5)
	if !errors.Is(err, store.ErrInvalidBound) {
		t.Fatalf("expected ErrInvalidBound for empty vector, got %v", err)
	}
}

package storage

import (
	"encoding/json"
	"testing"
)

const parsedDocumentJSON = `{
	"file_name": "funding.pdf",
	"pages": [
		{
			"page_number": 1,
			"blocks": [
				{"block_id": 1, "text": "融资策略是创业公司的核心问题之一。"},
				{"block_id": 2, "text": "天使投资通常发生在种子阶段。"}
			]
		},
		{
			"page_number": 3,
			"blocks": [
				{"block_id": 1, "text": "Demo Day 是加速器项目的路演环节。"}
			]
		}
	]
}`

func decodeParsedDocument(t *testing.T) *ParsedDocument {
	t.Helper()
	var doc ParsedDocument
	if err := json.Unmarshal([]byte(parsedDocumentJSON), &doc); err != nil {
		t.Fatalf("failed to decode parsed document: %v", err)
	}
	return &doc
}

func TestFindPassage(t *testing.T) {
	doc := decodeParsedDocument(t)

	tests := []struct {
		name  string
		page  int64
		block int64
		want  string
		found bool
	}{
		{"first block", 1, 1, "融资策略是创业公司的核心问题之一。", true},
		{"second block", 1, 2, "天使投资通常发生在种子阶段。", true},
		{"later page", 3, 1, "Demo Day 是加速器项目的路演环节。", true},
		{"missing page", 2, 1, "", false},
		{"missing block", 3, 9, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := FindPassage(doc, tt.page, tt.block)
			if found != tt.found || got != tt.want {
				t.Fatalf("expected (%q, %v), got (%q, %v)", tt.want, tt.found, got, found)
			}
		})
	}
}

func TestFindPassage_NilDocument(t *testing.T) {
	if _, found := FindPassage(nil, 1, 1); found {
		t.Fatal("expected no passage in nil document")
	}
}

func TestDocumentKey(t *testing.T) {
	tests := []struct {
		prefix   string
		document string
		want     string
	}{
		{"parsed", "funding.pdf", "parsed/funding.json"},
		{"parsed/", "funding.pdf", "parsed/funding.json"},
		{"", "funding.pdf", "funding.json"},
		{"parsed", "no_extension", "parsed/no_extension.json"},
	}
	for _, tt := range tests {
		store := NewDocumentStore(nil, tt.prefix)
		if got := store.documentKey(tt.document); got != tt.want {
			t.Fatalf("prefix %q, document %q: expected %q, got %q", tt.prefix, tt.document, tt.want, got)
		}
	}
}

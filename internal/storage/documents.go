package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tracery-ai/tracery/pkg/common"
)

// ParsedDocument mirrors the JSON layout the ingestion pipeline writes for
// each parsed PDF.
type ParsedDocument struct {
	FileName string       `json:"file_name"`
	Pages    []ParsedPage `json:"pages"`
}

type ParsedPage struct {
	PageNumber int64         `json:"page_number"`
	Blocks     []ParsedBlock `json:"blocks"`
}

type ParsedBlock struct {
	BlockID int64  `json:"block_id"`
	Text    string `json:"text"`
}

// DocumentStore fetches parsed documents from the bucket and resolves
// source references back to the passage text they point at.
type DocumentStore struct {
	client *s3.Client
	prefix string
}

func NewDocumentStore(client *s3.Client, prefix string) *DocumentStore {
	return &DocumentStore{
		client: client,
		prefix: strings.TrimSuffix(prefix, "/"),
	}
}

// documentKey maps a document name as stored on graph nodes ("funding.pdf")
// to its parsed JSON object key.
func (d *DocumentStore) documentKey(document string) string {
	name := document
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	if d.prefix == "" {
		return name + ".json"
	}
	return fmt.Sprintf("%s/%s.json", d.prefix, name)
}

func (d *DocumentStore) GetParsedDocument(ctx context.Context, document string) (*ParsedDocument, error) {
	data, err := GetFile(ctx, d.client, d.documentKey(document))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch parsed document %s: %w", document, err)
	}

	var parsed ParsedDocument
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode parsed document %s: %w", document, err)
	}
	return &parsed, nil
}

// LookupPassage resolves a source reference to its passage text. A reference
// pointing at a page or block that no longer exists yields an empty string
// rather than an error, so one stale reference does not fail a whole batch.
func (d *DocumentStore) LookupPassage(ctx context.Context, ref common.SourceRef) (string, error) {
	parsed, err := d.GetParsedDocument(ctx, ref.Document)
	if err != nil {
		return "", err
	}
	text, _ := FindPassage(parsed, ref.Page, ref.Block)
	return text, nil
}

// ListDocuments returns the document names with parsed JSON in the bucket.
func (d *DocumentStore) ListDocuments(ctx context.Context) ([]string, error) {
	listPrefix := ""
	if d.prefix != "" {
		listPrefix = d.prefix + "/"
	}
	keys, err := ListFilesWithPrefix(ctx, d.client, listPrefix)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, key := range keys {
		name := strings.TrimPrefix(key, listPrefix)
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	return names, nil
}

// FindPassage locates a block's text within a parsed document.
func FindPassage(doc *ParsedDocument, page, block int64) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, p := range doc.Pages {
		if p.PageNumber != page {
			continue
		}
		for _, b := range p.Blocks {
			if b.BlockID == block {
				return b.Text, true
			}
		}
	}
	return "", false
}

package app

import (
	"context"
	"fmt"
	"strings"

	"ragineer/internal/index"
	"ragineer/internal/model"
)

// noContextSentinel keeps prompt construction unambiguous when retrieval
// comes back empty; the context string is never empty.
const noContextSentinel = "No relevant documents found."

// DocumentIndex is the semantic-index surface the services need.
type DocumentIndex interface {
	AddDocument(ctx context.Context, docID, title, docType string, chunks []string) (int, error)
	Search(ctx context.Context, query string, k int, allowedDocTypes []string) ([]index.Result, error)
	RemoveDocument(ctx context.Context, docID string) (int, error)
}

// documentLookup resolves a doc_id to its current record; nil means the
// record no longer exists.
type documentLookup func(docID string) (*model.Document, error)

// buildContext walks results in relevance order, skips the system
// sentinel, emits one citation per distinct document (first occurrence,
// and only while its record still exists), and concatenates every
// surviving chunk into the grounding context.
func buildContext(results []index.Result, lookup documentLookup) (string, []model.Citation, error) {
	var parts []string
	var citations []model.Citation
	seen := make(map[string]bool)

	for _, r := range results {
		if r.Entry.DocID == index.SystemDocID {
			continue
		}

		if !seen[r.Entry.DocID] {
			seen[r.Entry.DocID] = true
			doc, err := lookup(r.Entry.DocID)
			if err != nil {
				return "", nil, err
			}
			// A document deleted after indexing loses its citation but
			// its remaining chunks still ground the answer.
			if doc != nil {
				citations = append(citations, model.Citation{
					DocID:          doc.ID,
					Title:          doc.Title,
					DocType:        doc.DocType,
					RelevanceScore: index.Relevance(r.Distance),
				})
			}
		}

		parts = append(parts, fmt.Sprintf("[From: %s]\n%s", r.Entry.Title, r.Entry.Content))
	}

	if len(parts) == 0 {
		return noContextSentinel, nil, nil
	}
	return strings.Join(parts, "\n\n---\n\n"), citations, nil
}

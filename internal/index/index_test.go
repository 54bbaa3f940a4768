package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragineer/internal/model"
)

// stubEmbedder produces deterministic vectors: each text maps to a fixed
// point derived from its rune sum, so nearest-neighbour order is stable.
type stubEmbedder struct {
	fail bool
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.fail {
		return nil, fmt.Errorf("embedding backend down")
	}
	var sum float32
	for _, r := range text {
		sum += float32(r)
	}
	return []float32{sum / 1000, float32(len(text))}, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if e.fail {
		return nil, fmt.Errorf("embedding backend down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.json")
	return NewStore(path, &stubEmbedder{}), path
}

func TestAddDocumentAndSearch(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	n, err := store.AddDocument(ctx, "doc-1", "Pump SOP", model.DocTypeSOP, []string{
		"start the pump slowly",
		"check the pressure gauge",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	results, err := store.Search(ctx, "start the pump slowly", 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-1", results[0].Entry.DocID)
	assert.Equal(t, "start the pump slowly", results[0].Entry.Content)
	assert.Equal(t, float64(0), results[0].Distance)
}

func TestAddDocumentRejectsEmptyChunks(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.AddDocument(context.Background(), "doc-1", "Empty", model.DocTypeSOP, nil)
	assert.Error(t, err)
}

func TestSearchDocTypeFilter(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.AddDocument(ctx, "doc-sop", "Pump SOP", model.DocTypeSOP, []string{"valve check"})
	require.NoError(t, err)
	_, err = store.AddDocument(ctx, "doc-comp", "Audit", model.DocTypeCompliance, []string{"valve check"})
	require.NoError(t, err)

	results, err := store.Search(ctx, "valve check", 5, []string{model.DocTypeSOP})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-sop", results[0].Entry.DocID)
}

func TestSearchEmptyFilterExcludesEverything(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.AddDocument(ctx, "doc-1", "Manual", model.DocTypeManual, []string{"oil change"})
	require.NoError(t, err)

	results, err := store.Search(ctx, "oil change", 5, []string{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPersistenceAcrossStores(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)

	_, err := store.AddDocument(ctx, "doc-1", "Pump SOP", model.DocTypeSOP, []string{"greasing schedule"})
	require.NoError(t, err)

	reopened := NewStore(path, &stubEmbedder{})
	results, err := reopened.Search(ctx, "greasing schedule", 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-1", results[0].Entry.DocID)
}

func TestCorruptFileRebuildsWithSentinel(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewStore(path, &stubEmbedder{})
	n, err := store.CountByDocID(ctx, SystemDocID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFreshIndexContainsOnlySentinel(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	results, err := store.Search(ctx, "anything", 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, SystemDocID, results[0].Entry.DocID)
	assert.Equal(t, DocTypeNone, results[0].Entry.DocType)
}

func TestRemoveDocument(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)

	_, err := store.AddDocument(ctx, "doc-1", "Pump SOP", model.DocTypeSOP, []string{"a", "b", "c"})
	require.NoError(t, err)

	removed, err := store.RemoveDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	n, err := store.CountByDocID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// Removal is durable.
	reopened := NewStore(path, &stubEmbedder{})
	n, err = reopened.CountByDocID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRemoveDocumentUnknownIDIsNoop(t *testing.T) {
	store, _ := newTestStore(t)
	removed, err := store.RemoveDocument(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestRemoveDocumentSentinelProtected(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	removed, err := store.RemoveDocument(ctx, SystemDocID)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	n, err := store.CountByDocID(ctx, SystemDocID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSearchEmbedFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	store := NewStore(path, &stubEmbedder{fail: true})

	_, err := store.Search(context.Background(), "query", 5, nil)
	assert.Error(t, err)
}

func TestRelevance(t *testing.T) {
	assert.Equal(t, 1.0, Relevance(0))
	assert.InDelta(t, 0.5, Relevance(1), 1e-9)
	assert.Greater(t, Relevance(0.1), Relevance(2.0))
}

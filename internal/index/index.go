// Package index implements the persistent semantic index: a file-backed
// brute-force vector store over embedded document chunks.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// SystemDocID is the reserved sentinel document id. A single sentinel
// entry keeps a fresh index structurally non-empty; retrieval skips it.
const SystemDocID = "system"

const sentinelText = "RAGineer - industrial document QA service initialized"

const embedBatchSize = 10 // embedding APIs often limit batch size

// Embedder is the embedding-service collaborator.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Entry is one chunk's vector plus its metadata.
type Entry struct {
	DocID      string    `json:"doc_id"`
	Title      string    `json:"title"`
	DocType    string    `json:"doc_type"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Vector     []float32 `json:"vector"`
}

// Result is a search hit; Distance is L2, ascending distance means
// descending relevance.
type Result struct {
	Entry    Entry
	Distance float64
}

// Relevance maps a distance into (0,1], increasing with similarity.
func Relevance(distance float64) float64 {
	return 1 / (1 + distance)
}

// Store owns the single durable index artifact. It is constructed once at
// process start and shared by reference; the mutex serialises the lazy
// load and every add+save against concurrent searches.
type Store struct {
	path     string
	embedder Embedder

	mu      sync.RWMutex
	loaded  bool
	entries []Entry
}

func NewStore(path string, embedder Embedder) *Store {
	return &Store{path: path, embedder: embedder}
}

// AddDocument embeds the chunks, appends them with metadata, and durably
// saves the index before returning the number of chunks added. If the
// save fails the append is rolled back so the upload can be treated as
// failed without leaving half-indexed state.
func (s *Store) AddDocument(ctx context.Context, docID, title, docType string, chunks []string) (int, error) {
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no chunks to index")
	}

	var vectors [][]float32
	for i := 0; i < len(chunks); i += embedBatchSize {
		end := i + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch, err := s.embedder.EmbedBatch(ctx, chunks[i:end])
		if err != nil {
			return 0, fmt.Errorf("embed chunks failed: %w", err)
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return 0, err
	}

	prev := len(s.entries)
	for i := range chunks {
		s.entries = append(s.entries, Entry{
			DocID:      docID,
			Title:      title,
			DocType:    docType,
			ChunkIndex: i,
			Content:    chunks[i],
			Vector:     vectors[i],
		})
	}
	if err := s.saveLocked(); err != nil {
		s.entries = s.entries[:prev]
		return 0, fmt.Errorf("save index failed: %w", err)
	}
	return len(chunks), nil
}

// Search embeds the query and returns the k nearest entries by L2
// distance. When allowedDocTypes is non-nil it over-fetches 2k candidates
// before filtering, then truncates to k; fewer than k results may come
// back if too few candidates match.
func (s *Store) Search(ctx context.Context, query string, k int, allowedDocTypes []string) ([]Result, error) {
	if k <= 0 {
		k = 5
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}

	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Result, 0, len(s.entries))
	for _, e := range s.entries {
		results = append(results, Result{Entry: e, Distance: l2Distance(queryVec, e.Vector)})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })

	if allowedDocTypes == nil {
		if len(results) > k {
			results = results[:k]
		}
		return results, nil
	}

	candidates := results
	if len(candidates) > 2*k {
		candidates = candidates[:2*k]
	}
	filtered := make([]Result, 0, k)
	for _, r := range candidates {
		if !containsDocType(allowedDocTypes, r.Entry.DocType) {
			continue
		}
		filtered = append(filtered, r)
		if len(filtered) == k {
			break
		}
	}
	return filtered, nil
}

// RemoveDocument excises every entry for docID and saves. The sentinel
// entry cannot be removed. Returns the number of entries removed.
func (s *Store) RemoveDocument(ctx context.Context, docID string) (int, error) {
	if docID == SystemDocID {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return 0, err
	}

	kept := s.entries[:0:0]
	removed := 0
	for _, e := range s.entries {
		if e.DocID == docID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return 0, nil
	}

	prev := s.entries
	s.entries = kept
	if err := s.saveLocked(); err != nil {
		s.entries = prev
		return 0, fmt.Errorf("save index failed: %w", err)
	}
	return removed, nil
}

// CountByDocID reports how many entries the index holds for docID.
func (s *Store) CountByDocID(ctx context.Context, docID string) (int, error) {
	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		if e.DocID == docID {
			n++
		}
	}
	return n, nil
}

type indexFile struct {
	Entries []Entry `json:"entries"`
}

// ensureLoadedLocked lazily loads the index from disk. Any load failure
// falls back to a fresh index with a sentinel entry; availability wins
// over strict durability here.
func (s *Store) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	raw, err := os.ReadFile(s.path)
	if err == nil {
		var file indexFile
		if jsonErr := json.Unmarshal(raw, &file); jsonErr == nil && len(file.Entries) > 0 {
			s.entries = file.Entries
			s.loaded = true
			return nil
		}
		log.Printf("index file %s unreadable, rebuilding", s.path)
	}

	s.entries = []Entry{s.sentinelEntry(ctx)}
	s.loaded = true
	if err := s.saveLocked(); err != nil {
		log.Printf("save fresh index failed: %v", err)
	}
	return nil
}

func (s *Store) sentinelEntry(ctx context.Context) Entry {
	entry := Entry{
		DocID:   SystemDocID,
		Title:   "System",
		DocType: DocTypeNone,
		Content: sentinelText,
	}
	// An unembeddable sentinel still keeps the index non-empty; its nil
	// vector ranks at infinite distance and is skipped by retrieval anyway.
	if vec, err := s.embedder.Embed(ctx, sentinelText); err == nil {
		entry.Vector = vec
	}
	return entry
}

// DocTypeNone marks the sentinel entry, which belongs to no visibility class.
const DocTypeNone = "system"

func (s *Store) saveLocked() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(indexFile{Entries: s.entries})
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func l2Distance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func containsDocType(allowed []string, docType string) bool {
	for _, t := range allowed {
		if t == docType {
			return true
		}
	}
	return false
}

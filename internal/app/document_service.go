package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ragineer/internal/model"
	"ragineer/internal/pkg/extract"
	"ragineer/internal/pkg/splitter"
)

var (
	ErrUnsupportedFile  = errors.New("file type not supported")
	ErrEmptyDocument    = errors.New("no text content found in file")
	ErrExtractionFailed = errors.New("could not extract text from file")
	ErrDocumentNotFound = errors.New("document not found")
)

// DocumentStore is the record-store surface for document records.
type DocumentStore interface {
	Create(doc *model.Document) error
	GetByID(id string) (*model.Document, error)
	List(docTypes []string) ([]model.Document, error)
	Delete(id string) (bool, error)
	Count() (int64, error)
	CountByDocType() (map[string]int64, error)
}

type DocumentService struct {
	docs         DocumentStore
	searchIndex  DocumentIndex
	publisher    EventPublisher
	uploadsDir   string
	chunkSize    int
	chunkOverlap int
}

type UploadInput struct {
	UploaderID   string
	UploaderName string
	Title        string
	Description  string
	DocType      string
	Filename     string
	Data         []byte
}

func NewDocumentService(
	docs DocumentStore,
	searchIndex DocumentIndex,
	publisher EventPublisher,
	uploadsDir string,
	chunkSize, chunkOverlap int,
) *DocumentService {
	if chunkSize <= 0 {
		chunkSize = splitter.DefaultChunkSize
	}
	if chunkOverlap <= 0 {
		chunkOverlap = splitter.DefaultChunkOverlap
	}
	return &DocumentService{
		docs:         docs,
		searchIndex:  searchIndex,
		publisher:    publisher,
		uploadsDir:   uploadsDir,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Upload runs the multi-step pipeline: extract, chunk, embed+index+save,
// store the raw file, persist the record. Each step's failure aborts the
// rest; once the index holds entries, a later failure triggers the
// compensating removal so no orphaned vectors survive a failed upload.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*model.Document, error) {
	if input.UploaderID == "" || input.Filename == "" || len(input.Data) == 0 {
		return nil, ErrInvalidInput
	}
	docType := input.DocType
	if docType == "" {
		docType = model.DocTypeOther
	}
	if !model.ValidDocType(docType) {
		return nil, ErrInvalidInput
	}

	ext := strings.ToLower(filepath.Ext(input.Filename))
	text, err := extract.Text(input.Data, ext)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			return nil, ErrUnsupportedFile
		}
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyDocument
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(input.Filename), ext)
	}

	docID := uuid.NewString()
	chunks := splitter.Split(text, s.chunkSize, s.chunkOverlap)

	chunkCount, err := s.searchIndex.AddDocument(ctx, docID, title, docType, chunks)
	if err != nil {
		return nil, fmt.Errorf("index document failed: %w", err)
	}

	storagePath := filepath.Join(s.uploadsDir, docID+ext)
	if err := s.storeFile(storagePath, input.Data); err != nil {
		s.compensateIndex(ctx, docID)
		return nil, fmt.Errorf("store file failed: %w", err)
	}

	doc := &model.Document{
		ID:             docID,
		Title:          title,
		Description:    strings.TrimSpace(input.Description),
		DocType:        docType,
		Filename:       filepath.Base(input.Filename),
		StoragePath:    storagePath,
		UploadedBy:     input.UploaderID,
		UploadedByName: input.UploaderName,
		ChunkCount:     chunkCount,
		FileSize:       int64(len(input.Data)),
	}
	if err := s.docs.Create(doc); err != nil {
		s.compensateIndex(ctx, docID)
		_ = os.Remove(storagePath)
		return nil, err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, model.UsageEvent{
			UserID:    input.UploaderID,
			EventType: model.EventDocumentUploaded,
			Detail:    docID,
			CreatedAt: time.Now(),
		})
	}

	return doc, nil
}

// List applies the role visibility table; unrestricted roles may narrow
// further by doc_type. Both listing and retrieval consult the same table.
func (s *DocumentService) List(role, docTypeFilter string) ([]model.Document, error) {
	visible := model.VisibleDocTypes(role)
	if visible == nil && docTypeFilter != "" {
		if !model.ValidDocType(docTypeFilter) {
			return nil, ErrInvalidInput
		}
		visible = []string{docTypeFilter}
	}
	return s.docs.List(visible)
}

// Delete removes the stored file, the record, and the index entries.
func (s *DocumentService) Delete(ctx context.Context, requesterID, docID string) error {
	if docID == "" {
		return ErrInvalidInput
	}

	doc, err := s.docs.GetByID(docID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}

	if doc.StoragePath != "" {
		if err := os.Remove(doc.StoragePath); err != nil && !os.IsNotExist(err) {
			log.Printf("remove stored file %s failed: %v", doc.StoragePath, err)
		}
	}

	if _, err := s.docs.Delete(docID); err != nil {
		return err
	}

	if _, err := s.searchIndex.RemoveDocument(ctx, docID); err != nil {
		// The record is gone and listing no longer shows the document;
		// leftover vectors lose their citation at retrieval time.
		log.Printf("remove index entries for %s failed: %v", docID, err)
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, model.UsageEvent{
			UserID:    requesterID,
			EventType: model.EventDocumentDeleted,
			Detail:    docID,
			CreatedAt: time.Now(),
		})
	}
	return nil
}

func (s *DocumentService) storeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *DocumentService) compensateIndex(ctx context.Context, docID string) {
	if _, err := s.searchIndex.RemoveDocument(ctx, docID); err != nil {
		log.Printf("compensating index removal for %s failed: %v", docID, err)
	}
}

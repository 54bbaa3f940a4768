package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ragineer/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(id string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

// List returns documents restricted to docTypes; a nil slice means no
// restriction.
func (r *DocumentRepository) List(docTypes []string) ([]model.Document, error) {
	q := r.db.Order("created_at DESC")
	if docTypes != nil {
		q = q.Where("doc_type IN ?", docTypes)
	}
	var docs []model.Document
	if err := q.Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

// Delete removes the document and reports whether a row was deleted.
func (r *DocumentRepository) Delete(id string) (bool, error) {
	res := r.db.Where("id = ?", id).Delete(&model.Document{})
	if res.Error != nil {
		return false, fmt.Errorf("delete document failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *DocumentRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&model.Document{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count documents failed: %w", err)
	}
	return n, nil
}

// CountByDocType groups documents by type for the statistics endpoint.
func (r *DocumentRepository) CountByDocType() (map[string]int64, error) {
	type row struct {
		DocType string
		Total   int64
	}
	var rows []row
	if err := r.db.Model(&model.Document{}).
		Select("doc_type, count(*) as total").
		Group("doc_type").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count documents by type failed: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.DocType] = r.Total
	}
	return counts, nil
}

package model

import "time"

type Document struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Title          string    `gorm:"size:256;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	DocType        string    `gorm:"size:16;not null;index" json:"doc_type"`
	Filename       string    `gorm:"size:256;not null" json:"filename"`
	StoragePath    string    `gorm:"size:512;not null" json:"-"`
	UploadedBy     string    `gorm:"size:36;not null;index" json:"uploaded_by"`
	UploadedByName string    `gorm:"size:128;not null" json:"uploaded_by_name"`
	ChunkCount     int       `gorm:"not null" json:"chunk_count"`
	FileSize       int64     `gorm:"not null" json:"file_size"`
	CreatedAt      time.Time `json:"created_at"`
}

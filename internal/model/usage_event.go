package model

import "time"

const (
	EventDocumentUploaded = "document_uploaded"
	EventDocumentDeleted  = "document_deleted"
	EventChatExchange     = "chat_exchange"
)

type UsageEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	EventType string    `gorm:"size:32;not null;index" json:"event_type"`
	Detail    string    `gorm:"size:256" json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

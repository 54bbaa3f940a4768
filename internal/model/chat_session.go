package model

import "time"

type ChatSession struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"size:36;not null;index" json:"user_id"`
	Title        string    `gorm:"size:128;not null" json:"title"`
	MessageCount int       `gorm:"not null" json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

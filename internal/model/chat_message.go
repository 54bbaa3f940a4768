package model

import (
	"encoding/json"
	"time"
)

// Citation is a deduplicated reference to a source document backing an answer.
type Citation struct {
	DocID          string  `json:"doc_id"`
	Title          string  `json:"title"`
	DocType        string  `json:"doc_type"`
	RelevanceScore float64 `json:"relevance_score"`
}

// ChatMessage is append-only; Sources is set on assistant messages only
// and holds the citations as a JSON array for portability.
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	SessionID string    `gorm:"size:36;not null;index" json:"session_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Sources   string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SourceList returns the parsed citations; nil on absent or malformed data.
func (m *ChatMessage) SourceList() []Citation {
	if m.Sources == "" {
		return nil
	}
	var list []Citation
	_ = json.Unmarshal([]byte(m.Sources), &list)
	return list
}

// SetSources stores the citations as JSON.
func (m *ChatMessage) SetSources(list []Citation) {
	if len(list) == 0 {
		m.Sources = ""
		return
	}
	b, _ := json.Marshal(list)
	m.Sources = string(b)
}

package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"ragineer/internal/model"
)

type ChatSessionRepository struct {
	db *gorm.DB
}

func NewChatSessionRepository(db *gorm.DB) *ChatSessionRepository {
	return &ChatSessionRepository{db: db}
}

func (r *ChatSessionRepository) Create(session *model.ChatSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create chat session failed: %w", err)
	}
	return nil
}

func (r *ChatSessionRepository) ListByUserID(userID string) ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	if err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list chat sessions failed: %w", err)
	}
	return sessions, nil
}

func (r *ChatSessionRepository) GetByIDAndUserID(id, userID string) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat session failed: %w", err)
	}
	return &session, nil
}

// RecordExchange advances updated_at and counts the paired user and
// assistant turns as one logical exchange.
func (r *ChatSessionRepository) RecordExchange(id string) error {
	if err := r.db.Model(&model.ChatSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"updated_at":    time.Now(),
			"message_count": gorm.Expr("message_count + ?", 2),
		}).Error; err != nil {
		return fmt.Errorf("record exchange failed: %w", err)
	}
	return nil
}

func (r *ChatSessionRepository) DeleteByIDAndUserID(id, userID string) error {
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.ChatSession{}).Error; err != nil {
		return fmt.Errorf("delete chat session failed: %w", err)
	}
	return nil
}

func (r *ChatSessionRepository) CountByUserID(userID string) (int64, error) {
	var n int64
	if err := r.db.Model(&model.ChatSession{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count chat sessions failed: %w", err)
	}
	return n, nil
}

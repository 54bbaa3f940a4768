package repository

import (
	"fmt"

	"gorm.io/gorm"

	"ragineer/internal/model"
)

type UsageEventRepository struct {
	db *gorm.DB
}

func NewUsageEventRepository(db *gorm.DB) *UsageEventRepository {
	return &UsageEventRepository{db: db}
}

func (r *UsageEventRepository) Create(event *model.UsageEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("create usage event failed: %w", err)
	}
	return nil
}

func (r *UsageEventRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&model.UsageEvent{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count usage events failed: %w", err)
	}
	return n, nil
}

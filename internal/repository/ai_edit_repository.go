package repository

import (
	"lessonos_backend/internal/model"

	"gorm.io/gorm"
)

type AIEditRepository struct {
	DB *gorm.DB
}

func NewAIEditRepository(db *gorm.DB) *AIEditRepository {
	return &AIEditRepository{DB: db}
}

func (r *AIEditRepository) ListBySection(sectionID string) ([]model.AIEdit, error) {
	var edits []model.AIEdit
	err := r.DB.Where("section_id = ?", sectionID).
		Order("created_at DESC").
		Find(&edits).Error
	return edits, err
}

func (r *AIEditRepository) CountBySection(sectionID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.AIEdit{}).
		Where("section_id = ?", sectionID).
		Count(&count).Error
	return count, err
}

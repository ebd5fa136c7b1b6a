package repository

import (
	"lessonos_backend/internal/model"

	"gorm.io/gorm"
)

type SectionRepository struct {
	DB *gorm.DB
}

func NewSectionRepository(db *gorm.DB) *SectionRepository {
	return &SectionRepository{DB: db}
}

// FindByID 带上所属课程，编辑时需要课程的语言设置
func (r *SectionRepository) FindByID(id string) (*model.LessonSection, error) {
	var section model.LessonSection
	err := r.DB.Preload("Lesson").First(&section, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *SectionRepository) ListByLesson(lessonID string) ([]model.LessonSection, error) {
	var sections []model.LessonSection
	err := r.DB.Where("lesson_id = ?", lessonID).
		Order("sort_order ASC").
		Find(&sections).Error
	return sections, err
}

// ApplyEdit 更新小节内容并追加审计记录，两个写入在同一事务：要么都发生要么都不发生
func (r *SectionRepository) ApplyEdit(sectionID string, newContent string, edit *model.AIEdit) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.LessonSection{}).Where("id = ?", sectionID).
			Update("content", newContent).Error; err != nil {
			return err
		}
		return tx.Create(edit).Error
	})
}

package repository

import (
	"lessonos_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *LessonRepository) FindByID(id string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.Preload("Sections", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).First(&lesson, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// FindStatus 只取状态列，轮询接口高频调用
func (r *LessonRepository) FindStatus(id string) (model.LessonStatus, error) {
	var lesson model.Lesson
	err := r.DB.Select("status").First(&lesson, "id = ?", id).Error
	if err != nil {
		return "", err
	}
	return lesson.Status, nil
}

func (r *LessonRepository) ListByUser(userID string) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&lessons).Error
	return lessons, err
}

// MarkFailed 记录失败状态和展示给用户的原因
func (r *LessonRepository) MarkFailed(id string, reason string) error {
	return r.DB.Model(&model.Lesson{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.LessonFailed,
			"error_reason": reason,
		}).Error
}

func (r *LessonRepository) MarkGenerating(id string) error {
	return r.DB.Model(&model.Lesson{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.LessonGenerating,
			"error_reason": "",
		}).Error
}

// CompleteGeneration 在一个事务里更新标题/状态并批量写入小节。
// 状态只有在小节全部落库后才会变成 draft，不存在 draft 且无内容的中间态。
func (r *LessonRepository) CompleteGeneration(id string, title string, sections []model.LessonSection) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Lesson{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"title":        title,
				"status":       model.LessonDraft,
				"error_reason": "",
			}).Error; err != nil {
			return err
		}

		for i := range sections {
			sections[i].LessonID = id
			sections[i].Order = i
		}
		return tx.Create(&sections).Error
	})
}

// DeleteSections 重试前清掉上一次失败尝试可能留下的小节
func (r *LessonRepository) DeleteSections(lessonID string) error {
	return r.DB.Where("lesson_id = ?", lessonID).
		Delete(&model.LessonSection{}).Error
}

func (r *LessonRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var sectionIDs []string
		if err := tx.Model(&model.LessonSection{}).Where("lesson_id = ?", id).
			Pluck("id", &sectionIDs).Error; err != nil {
			return err
		}
		if len(sectionIDs) > 0 {
			if err := tx.Where("section_id IN ?", sectionIDs).
				Delete(&model.AIEdit{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("lesson_id = ?", id).
			Delete(&model.LessonSection{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Lesson{}, "id = ?", id).Error
	})
}

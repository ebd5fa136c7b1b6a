package repository

import (
	"fmt"
	"lessonos_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Lesson{},
		&model.LessonSection{},
		&model.AIEdit{},
	))
	return db
}

func seedLesson(t *testing.T, db *gorm.DB) (*model.User, *model.Lesson) {
	t.Helper()

	user := &model.User{Name: "U", Email: t.Name() + "@repo.test", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	lesson := &model.Lesson{
		UserID:     user.ID,
		Title:      "Topic",
		Topic:      "Topic",
		Difficulty: model.DifficultyBeginner,
		Language:   "English",
		Status:     model.LessonGenerating,
	}
	require.NoError(t, db.Create(lesson).Error)
	return user, lesson
}

func TestCompleteGenerationAssignsContiguousOrder(t *testing.T) {
	db := setupRepoDB(t)
	_, lesson := seedLesson(t, db)
	repo := NewLessonRepository(db)

	sections := []model.LessonSection{
		{Title: "One", Content: "a"},
		{Title: "Two", Content: "b"},
		{Title: "Three", Content: "c"},
		{Title: "Four", Content: "d"},
	}
	require.NoError(t, repo.CompleteGeneration(lesson.ID, "Final Title", sections))

	got, err := repo.FindByID(lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final Title", got.Title)
	assert.Equal(t, model.LessonDraft, got.Status)
	require.Len(t, got.Sections, 4)
	for i, section := range got.Sections {
		assert.Equal(t, i, section.Order)
	}
}

func TestFindByIDOrdersSections(t *testing.T) {
	db := setupRepoDB(t)
	_, lesson := seedLesson(t, db)
	repo := NewLessonRepository(db)

	// 乱序写入，读取必须按 order 升序
	for _, i := range []int{3, 0, 2, 1} {
		section := model.LessonSection{
			LessonID: lesson.ID,
			Title:    fmt.Sprintf("S%d", i),
			Content:  "c",
			Order:    i,
		}
		require.NoError(t, db.Create(&section).Error)
	}

	got, err := repo.FindByID(lesson.ID)
	require.NoError(t, err)
	require.Len(t, got.Sections, 4)
	for i, section := range got.Sections {
		assert.Equal(t, i, section.Order)
		assert.Equal(t, fmt.Sprintf("S%d", i), section.Title)
	}
}

func TestMarkFailedAndGenerating(t *testing.T) {
	db := setupRepoDB(t)
	_, lesson := seedLesson(t, db)
	repo := NewLessonRepository(db)

	require.NoError(t, repo.MarkFailed(lesson.ID, "AI failed to generate lesson content"))
	got, err := repo.FindByID(lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LessonFailed, got.Status)
	assert.Equal(t, "AI failed to generate lesson content", got.ErrorReason)

	require.NoError(t, repo.MarkGenerating(lesson.ID))
	got, err = repo.FindByID(lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LessonGenerating, got.Status)
	assert.Empty(t, got.ErrorReason)
}

func TestDeleteRemovesSectionsAndEdits(t *testing.T) {
	db := setupRepoDB(t)
	_, lesson := seedLesson(t, db)
	repo := NewLessonRepository(db)

	section := model.LessonSection{LessonID: lesson.ID, Title: "S", Content: "c", Order: 0}
	require.NoError(t, db.Create(&section).Error)
	edit := model.AIEdit{SectionID: section.ID, SelectedText: "a", GeneratedText: "b", Action: "fix"}
	require.NoError(t, db.Create(&edit).Error)

	require.NoError(t, repo.Delete(lesson.ID))

	var sections, edits int64
	db.Model(&model.LessonSection{}).Where("lesson_id = ?", lesson.ID).Count(&sections)
	db.Model(&model.AIEdit{}).Where("section_id = ?", section.ID).Count(&edits)
	assert.Zero(t, sections)
	assert.Zero(t, edits)
}

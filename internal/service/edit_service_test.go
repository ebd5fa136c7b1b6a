package service

import (
	"context"
	"errors"
	"lessonos_backend/internal/model"
	"lessonos_backend/internal/repository"
	"lessonos_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestEditService(db *gorm.DB, gen LessonGenerator) *EditService {
	lessons := newTestLessonService(db, gen)
	return NewEditService(
		repository.NewSectionRepository(db),
		repository.NewAIEditRepository(db),
		gen,
		lessons,
	)
}

func seedLessonWithSections(t *testing.T, db *gorm.DB, userID string) *model.Lesson {
	t.Helper()

	gen := &stubGenerator{lesson: fiveSections("Seed Lesson")}
	svc := newTestLessonService(db, gen)

	lesson, err := svc.Initiate(userID, "Seed Topic", model.DifficultyBeginner, "English")
	require.NoError(t, err)
	require.NoError(t, svc.Run(context.Background(), lesson.ID, lesson.Topic, lesson.Difficulty, lesson.Language))

	got, err := svc.Get(lesson.ID, userID)
	require.NoError(t, err)
	return got
}

func TestApplyEdit(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "edit@example.com")
	lesson := seedLessonWithSections(t, db, user.ID)
	section := lesson.Sections[2]

	gen := &stubGenerator{rewrite: "## Rewritten\n\nClearer explanation."}
	svc := newTestEditService(db, gen)

	updated, err := svc.ApplyEdit(context.Background(), section.ID, user.ID, "Content for section 3.", "make it clearer")
	require.NoError(t, err)
	assert.Equal(t, "## Rewritten\n\nClearer explanation.", updated.Content)

	// 内容落库
	var stored model.LessonSection
	require.NoError(t, db.First(&stored, "id = ?", section.ID).Error)
	assert.Equal(t, "## Rewritten\n\nClearer explanation.", stored.Content)

	// 审计记录同步写入
	edits, err := svc.ListEdits(section.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "Content for section 3.", edits[0].SelectedText)
	assert.Equal(t, "## Rewritten\n\nClearer explanation.", edits[0].GeneratedText)
	assert.Equal(t, "make it clearer", edits[0].Action)
}

func TestApplyEditGeneratorFailureLeavesContentUnchanged(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "editfail@example.com")
	lesson := seedLessonWithSections(t, db, user.ID)
	section := lesson.Sections[0]
	original := section.Content

	gen := &stubGenerator{rewriteErr: errors.New("model overloaded")}
	svc := newTestEditService(db, gen)

	_, err := svc.ApplyEdit(context.Background(), section.ID, user.ID, "x", "shorten")
	require.Error(t, err)

	var stored model.LessonSection
	require.NoError(t, db.First(&stored, "id = ?", section.ID).Error)
	assert.Equal(t, original, stored.Content)

	edits, err := svc.ListEdits(section.ID, user.ID)
	require.NoError(t, err)
	assert.Empty(t, edits)
}

func TestApplyEditAuditFailureRollsBackContent(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "editatomic@example.com")
	lesson := seedLessonWithSections(t, db, user.ID)
	section := lesson.Sections[0]
	original := section.Content

	repo := repository.NewSectionRepository(db)

	existing := &model.AIEdit{SectionID: section.ID, SelectedText: "a", GeneratedText: "b", Action: "fix"}
	require.NoError(t, db.Create(existing).Error)

	// 复用已有主键让审计插入在事务内失败，内容更新必须一并回滚
	dup := &model.AIEdit{
		ID:            existing.ID,
		SectionID:     section.ID,
		SelectedText:  "c",
		GeneratedText: "new content",
		Action:        "expand",
	}
	require.Error(t, repo.ApplyEdit(section.ID, "new content", dup))

	var stored model.LessonSection
	require.NoError(t, db.First(&stored, "id = ?", section.ID).Error)
	assert.Equal(t, original, stored.Content)

	var count int64
	db.Model(&model.AIEdit{}).Where("section_id = ?", section.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestApplyEditNotFound(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "editnf@example.com")
	svc := newTestEditService(db, &stubGenerator{rewrite: "x"})

	_, err := svc.ApplyEdit(context.Background(), "not-a-uuid", user.ID, "a", "b")
	assert.ErrorIs(t, err, util.ErrSectionNotFound)

	_, err = svc.ApplyEdit(context.Background(), model.GenerateUUID(), user.ID, "a", "b")
	assert.ErrorIs(t, err, util.ErrSectionNotFound)
}

func TestApplyEditOwnership(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "editowner@example.com")
	other := createTestUser(t, db, "editother@example.com")
	lesson := seedLessonWithSections(t, db, owner.ID)
	section := lesson.Sections[0]

	svc := newTestEditService(db, &stubGenerator{rewrite: "x"})

	_, err := svc.ApplyEdit(context.Background(), section.ID, other.ID, "a", "b")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = svc.ListEdits(section.ID, other.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestListEditsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "editlist@example.com")
	lesson := seedLessonWithSections(t, db, user.ID)
	section := lesson.Sections[1]

	gen := &stubGenerator{rewrite: "first rewrite"}
	svc := newTestEditService(db, gen)

	_, err := svc.ApplyEdit(context.Background(), section.ID, user.ID, "a", "expand")
	require.NoError(t, err)

	gen.rewrite = "second rewrite"
	_, err = svc.ApplyEdit(context.Background(), section.ID, user.ID, "b", "simplify")
	require.NoError(t, err)

	edits, err := svc.ListEdits(section.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, edits, 2)
	// 每条记录都保留，改写指令各自对应
	actions := []string{edits[0].Action, edits[1].Action}
	assert.ElementsMatch(t, []string{"expand", "simplify"}, actions)
}

package service

import (
	"context"
	"errors"
	"lessonos_backend/internal/model"
	"lessonos_backend/internal/repository"
	"lessonos_backend/internal/util"
	"lessonos_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EditService 对单个小节执行 AI 改写：
// 基于全文和用户选中的片段生成整段替换内容，内容更新与审计记录同事务写入。
type EditService struct {
	sectionRepo *repository.SectionRepository
	editRepo    *repository.AIEditRepository
	generator   LessonGenerator
	lessons     *LessonService
}

func NewEditService(sectionRepo *repository.SectionRepository, editRepo *repository.AIEditRepository, generator LessonGenerator, lessons *LessonService) *EditService {
	return &EditService{
		sectionRepo: sectionRepo,
		editRepo:    editRepo,
		generator:   generator,
		lessons:     lessons,
	}
}

// ApplyEdit 失败时不留下任何部分更新：生成器报错直接返回，
// 落库阶段的两个写入要么都提交要么都回滚。并发编辑不做排序，后写覆盖先写。
func (s *EditService) ApplyEdit(ctx context.Context, sectionID, userID, selectedText, instruction string) (*model.LessonSection, error) {
	if !util.IsValidUUID(sectionID) {
		return nil, util.ErrSectionNotFound
	}

	section, err := s.sectionRepo.FindByID(sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSectionNotFound
		}
		return nil, err
	}

	language := "English"
	if section.Lesson != nil {
		if section.Lesson.UserID != userID {
			return nil, util.ErrPermissionDenied
		}
		if section.Lesson.Language != "" {
			language = section.Lesson.Language
		}
	}

	newContent, err := s.generator.RewriteSection(ctx, language, section.Content, selectedText, instruction)
	if err != nil {
		logger.Log.Error("AI edit failed",
			zap.String("sectionId", sectionID),
			zap.Error(err))
		return nil, err
	}

	edit := &model.AIEdit{
		SectionID:     sectionID,
		SelectedText:  selectedText,
		GeneratedText: newContent,
		Action:        instruction,
	}

	if err := s.sectionRepo.ApplyEdit(sectionID, newContent, edit); err != nil {
		return nil, err
	}

	// 所属课程页面的缓存失效，后续读取看到改写后的内容
	s.lessons.InvalidateCache(section.LessonID)

	section.Content = newContent
	return section, nil
}

func (s *EditService) ListEdits(sectionID, userID string) ([]model.AIEdit, error) {
	if !util.IsValidUUID(sectionID) {
		return nil, util.ErrSectionNotFound
	}

	section, err := s.sectionRepo.FindByID(sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSectionNotFound
		}
		return nil, err
	}
	if section.Lesson != nil && section.Lesson.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	return s.editRepo.ListBySection(sectionID)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"lessonos_backend/internal/config"
	"lessonos_backend/internal/model"
	"lessonos_backend/internal/repository"
	"lessonos_backend/internal/util"
	"lessonos_backend/pkg/logger"
	"lessonos_backend/pkg/monitoring"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	lessonCachePrefix = "lesson:detail:"
	lessonCacheTTL    = 10 * time.Minute
)

// LessonService 负责课程生成的完整生命周期：
// 创建 generating 状态的记录，调用生成器，落库并把进度暴露给客户端。
type LessonService struct {
	lessonRepo *repository.LessonRepository
	generator  LessonGenerator
	Redis      *redis.Client
	strategy   string
}

func NewLessonService(lessonRepo *repository.LessonRepository, generator LessonGenerator, rdb *redis.Client, cfg *config.Config) *LessonService {
	return &LessonService{
		lessonRepo: lessonRepo,
		generator:  generator,
		Redis:      rdb,
		strategy:   cfg.Generation.Strategy,
	}
}

func (s *LessonService) Strategy() string {
	return s.strategy
}

// Initiate 创建 generating 状态的课程记录并返回句柄（课程 ID）。
// 生成本身由 Dispatch / Run 负责。
func (s *LessonService) Initiate(userID, topic string, difficulty model.Difficulty, language string) (*model.Lesson, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" || difficulty == "" {
		return nil, util.ErrTopicRequired
	}
	if !model.ValidDifficulty(difficulty) {
		return nil, util.ErrInvalidDifficulty
	}
	if language == "" {
		language = "English"
	}

	lesson := &model.Lesson{
		UserID:     userID,
		Title:      topic, // 生成完成前先用主题占位
		Topic:      topic,
		Difficulty: difficulty,
		Language:   language,
		Status:     model.LessonGenerating,
	}

	if err := s.lessonRepo.Create(lesson); err != nil {
		return nil, err
	}

	return lesson, nil
}

// Dispatch 按配置的交付策略启动一次生成，策略分支只存在于这里。
// sync 在调用方的 context 内完成并返回生成结果；async 在后台执行，
// 发起请求的连接断开也不影响生成。
func (s *LessonService) Dispatch(ctx context.Context, lesson *model.Lesson) error {
	if s.strategy == config.StrategySync {
		return s.Run(ctx, lesson.ID, lesson.Topic, lesson.Difficulty, lesson.Language)
	}

	go func() {
		if err := s.Run(context.Background(), lesson.ID, lesson.Topic, lesson.Difficulty, lesson.Language); err != nil {
			logger.Log.Error("background lesson generation failed",
				zap.String("lessonId", lesson.ID),
				zap.Error(err))
		}
	}()
	return nil
}

// Run 执行一次生成尝试。调用结束后课程状态一定是 draft 或 failed，
// 不会停留在 generating。draft 状态和小节写入在同一事务内完成。
func (s *LessonService) Run(ctx context.Context, lessonID, topic string, difficulty model.Difficulty, language string) error {
	start := time.Now()

	generated, err := s.generator.GenerateLesson(ctx, topic, difficulty, language)
	if err != nil {
		s.fail(lessonID, "AI failed to generate lesson content", err)
		return err
	}

	sections := make([]model.LessonSection, len(generated.Sections))
	for i, sec := range generated.Sections {
		sections[i] = model.LessonSection{
			Title:   sec.Title,
			Content: sec.Content,
		}
	}

	if err := s.lessonRepo.CompleteGeneration(lessonID, generated.Title, sections); err != nil {
		s.fail(lessonID, "Failed to save generated lesson", err)
		return err
	}

	monitoring.GenerationCounter.WithLabelValues(string(model.LessonDraft)).Inc()
	monitoring.GenerationDuration.Observe(time.Since(start).Seconds())
	s.InvalidateCache(lessonID)

	logger.Log.Info("lesson generated",
		zap.String("lessonId", lessonID),
		zap.Int("sections", len(sections)),
		zap.Duration("took", time.Since(start)))
	return nil
}

func (s *LessonService) fail(lessonID, reason string, cause error) {
	monitoring.GenerationCounter.WithLabelValues(string(model.LessonFailed)).Inc()
	logger.Log.Error("lesson generation failed",
		zap.String("lessonId", lessonID),
		zap.String("reason", reason),
		zap.Error(cause))

	if err := s.lessonRepo.MarkFailed(lessonID, reason); err != nil {
		// 状态都写不进去时只能记日志，轮询端会一直看到 generating
		logger.Log.Error("failed to mark lesson as failed",
			zap.String("lessonId", lessonID),
			zap.Error(err))
	}
	s.InvalidateCache(lessonID)
}

// Status 只返回状态，供轮询客户端高频调用。
// 非法 ID 直接判定 not_found，不触达存储层。
func (s *LessonService) Status(lessonID string) string {
	if !util.IsValidUUID(lessonID) {
		return "not_found"
	}

	status, err := s.lessonRepo.FindStatus(lessonID)
	if err != nil {
		return "not_found"
	}
	return string(status)
}

// Get 返回课程及按 order 升序的小节，经过 Redis 缓存
func (s *LessonService) Get(lessonID, userID string) (*model.Lesson, error) {
	if !util.IsValidUUID(lessonID) {
		return nil, util.ErrLessonNotFound
	}

	if lesson := s.cacheGet(lessonID); lesson != nil {
		if lesson.UserID != userID {
			return nil, util.ErrPermissionDenied
		}
		return lesson, nil
	}

	lesson, err := s.lessonRepo.FindByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	s.cacheSet(lesson)

	if lesson.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return lesson, nil
}

func (s *LessonService) List(userID string) ([]model.Lesson, error) {
	return s.lessonRepo.ListByUser(userID)
}

// PrepareRetry 把 failed 状态的课程重置回 generating，但不启动生成。
// 清掉上一次尝试可能遗留的小节，重试不续写旧输出。
func (s *LessonService) PrepareRetry(lessonID, userID string) (*model.Lesson, error) {
	lesson, err := s.Get(lessonID, userID)
	if err != nil {
		return nil, err
	}
	if lesson.Status != model.LessonFailed {
		return nil, util.ErrLessonNotFailed
	}

	if err := s.lessonRepo.DeleteSections(lessonID); err != nil {
		return nil, err
	}
	if err := s.lessonRepo.MarkGenerating(lessonID); err != nil {
		return nil, err
	}
	s.InvalidateCache(lessonID)

	lesson.Status = model.LessonGenerating
	lesson.ErrorReason = ""
	return lesson, nil
}

// Retry 仅允许对 failed 状态的课程重新发起生成，每次重试都是全新尝试
func (s *LessonService) Retry(lessonID, userID string) (*model.Lesson, error) {
	lesson, err := s.PrepareRetry(lessonID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Dispatch(context.Background(), lesson); err != nil {
		return lesson, err
	}
	return lesson, nil
}

func (s *LessonService) Delete(lessonID, userID string) error {
	if _, err := s.Get(lessonID, userID); err != nil {
		return err
	}
	if err := s.lessonRepo.Delete(lessonID); err != nil {
		return err
	}
	s.InvalidateCache(lessonID)
	return nil
}

// InvalidateCache 生成、编辑、删除之后让缓存失效，后续读取看到新内容
func (s *LessonService) InvalidateCache(lessonID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), lessonCachePrefix+lessonID).Err(); err != nil {
		logger.Log.Warn("failed to invalidate lesson cache",
			zap.String("lessonId", lessonID),
			zap.Error(err))
	}
}

func (s *LessonService) cacheGet(lessonID string) *model.Lesson {
	if s.Redis == nil {
		return nil
	}
	val, err := s.Redis.Get(context.Background(), lessonCachePrefix+lessonID).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("lesson cache read failed", zap.Error(err))
		}
		return nil
	}
	var lesson model.Lesson
	if err := json.Unmarshal([]byte(val), &lesson); err != nil {
		return nil
	}
	return &lesson
}

func (s *LessonService) cacheSet(lesson *model.Lesson) {
	if s.Redis == nil {
		return
	}
	data, err := json.Marshal(lesson)
	if err != nil {
		return
	}
	if err := s.Redis.Set(context.Background(), lessonCachePrefix+lesson.ID, data, lessonCacheTTL).Err(); err != nil {
		logger.Log.Warn("lesson cache write failed", zap.Error(err))
	}
}

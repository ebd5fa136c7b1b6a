package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"lessonos_backend/internal/config"
	"lessonos_backend/internal/model"
	"lessonos_backend/internal/service"
	"lessonos_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	lessonService *service.LessonService
}

func NewLessonController(lessonService *service.LessonService) *LessonController {
	return &LessonController{lessonService: lessonService}
}

type CreateLessonRequest struct {
	Topic      string `json:"topic" binding:"required"`
	Difficulty string `json:"difficulty" binding:"required"`
	Language   string `json:"language"`
}

type StreamLessonRequest struct {
	LessonID   string `json:"lessonId"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Language   string `json:"language"`
}

// Create godoc
// @Summary 发起课程生成
// @Description 创建 generating 状态的课程并按配置策略启动生成，异步模式下立即返回课程 ID 供轮询
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateLessonRequest true "生成参数"
// @Success 201 {object} util.Response
// @Router /api/lessons [post]
func (c *LessonController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.lessonService.Initiate(claims.UserID, req.Topic, model.Difficulty(req.Difficulty), req.Language)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	// 同步模式在本次请求内等生成结束，失败直接体现在响应里
	if err := c.lessonService.Dispatch(ctx.Request.Context(), lesson); err != nil {
		util.Error(ctx, 502, "lesson generation failed")
		return
	}

	if c.lessonService.Strategy() == config.StrategySync {
		full, err := c.lessonService.Get(lesson.ID, claims.UserID)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		util.Created(ctx, full)
		return
	}

	util.Created(ctx, gin.H{
		"lessonId": lesson.ID,
		"status":   lesson.Status,
	})
}

// List godoc
// @Summary 获取当前用户的课程列表
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Lesson}
// @Router /api/lessons [get]
func (c *LessonController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lessons, err := c.lessonService.List(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, lessons)
}

// Get godoc
// @Summary 获取课程详情（含按序小节）
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程 ID"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /api/lessons/{id} [get]
func (c *LessonController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lesson, err := c.lessonService.Get(ctx.Param("id"), claims.UserID)
	if err != nil {
		c.writeLessonError(ctx, err)
		return
	}

	util.Success(ctx, lesson)
}

// Status godoc
// @Summary 查询课程生成状态
// @Description 轻量轮询接口，仅返回 generating / draft / failed / not_found
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程 ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{id}/status [get]
func (c *LessonController) Status(ctx *gin.Context) {
	util.Success(ctx, gin.H{"status": c.lessonService.Status(ctx.Param("id"))})
}

// Retry godoc
// @Summary 重试失败的课程生成
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程 ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{id}/retry [post]
func (c *LessonController) Retry(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lesson, err := c.lessonService.Retry(ctx.Param("id"), claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFailed) {
			util.Error(ctx, 409, err.Error())
			return
		}
		c.writeLessonError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"lessonId": lesson.ID,
		"status":   lesson.Status,
	})
}

// Delete godoc
// @Summary 删除课程及其全部小节和编辑记录
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课程 ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{id} [delete]
func (c *LessonController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.lessonService.Delete(ctx.Param("id"), claims.UserID); err != nil {
		c.writeLessonError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": true})
}

// GenerateStream godoc
// @Summary 流式生成课程
// @Description NDJSON 响应，生成期间定期输出 {"status":"generating"} 保活行，结束时输出带 lessonId 的终止行
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body StreamLessonRequest true "生成参数"
// @Success 200 {string} string "application/x-ndjson"
// @Router /api/lessons/generate/stream [post]
func (c *LessonController) GenerateStream(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StreamLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var lesson *model.Lesson
	var err error
	if req.LessonID != "" {
		// 带 lessonId 表示对已有记录重新生成，必须是本人且处于 failed
		lesson, err = c.lessonService.PrepareRetry(req.LessonID, claims.UserID)
		if err != nil {
			if errors.Is(err, util.ErrLessonNotFailed) {
				util.Error(ctx, 409, err.Error())
				return
			}
			c.writeLessonError(ctx, err)
			return
		}
	} else {
		lesson, err = c.lessonService.Initiate(claims.UserID, req.Topic, model.Difficulty(req.Difficulty), req.Language)
		if err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	ctx.Header("Content-Type", "application/x-ndjson")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")

	writeLine := func(v interface{}) {
		data, err := json.Marshal(v)
		if err != nil {
			return
		}
		fmt.Fprintf(ctx.Writer, "%s\n", data)
		ctx.Writer.Flush()
	}

	writeLine(gin.H{"status": string(model.LessonGenerating)})

	// 生成挂到独立 context 上，客户端断开不会截断落库
	done := make(chan error, 1)
	go func() {
		done <- c.lessonService.Run(context.Background(), lesson.ID, lesson.Topic, lesson.Difficulty, lesson.Language)
	}()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			writeLine(gin.H{"status": string(model.LessonGenerating)})
		case err := <-done:
			if err != nil {
				writeLine(gin.H{"lessonId": lesson.ID, "error": "AI failed to generate lesson content"})
			} else {
				writeLine(gin.H{"lessonId": lesson.ID})
			}
			return
		}
	}
}

func (c *LessonController) writeLessonError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrLessonNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

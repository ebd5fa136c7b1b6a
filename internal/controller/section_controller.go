package controller

import (
	"errors"
	"lessonos_backend/internal/service"
	"lessonos_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SectionController struct {
	editService *service.EditService
}

func NewSectionController(editService *service.EditService) *SectionController {
	return &SectionController{editService: editService}
}

type AIEditRequest struct {
	SelectedText string `json:"selectedText" binding:"required"`
	Instruction  string `json:"instruction" binding:"required"`
}

// ApplyEdit godoc
// @Summary 对小节执行 AI 改写
// @Description 基于全文和选中片段生成整段替换内容，内容更新与审计记录同事务提交
// @Tags 小节
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小节 ID"
// @Param body body AIEditRequest true "改写参数"
// @Success 200 {object} util.Response{data=model.LessonSection}
// @Router /api/sections/{id}/ai-edit [post]
func (c *SectionController) ApplyEdit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AIEditRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section, err := c.editService.ApplyEdit(ctx.Request.Context(), ctx.Param("id"), claims.UserID, req.SelectedText, req.Instruction)
	if err != nil {
		c.writeSectionError(ctx, err)
		return
	}

	util.Success(ctx, section)
}

// ListEdits godoc
// @Summary 获取小节的 AI 编辑历史
// @Tags 小节
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小节 ID"
// @Success 200 {object} util.Response{data=[]model.AIEdit}
// @Router /api/sections/{id}/edits [get]
func (c *SectionController) ListEdits(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	edits, err := c.editService.ListEdits(ctx.Param("id"), claims.UserID)
	if err != nil {
		c.writeSectionError(ctx, err)
		return
	}

	util.Success(ctx, edits)
}

func (c *SectionController) writeSectionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSectionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.Error(ctx, 502, "AI edit failed")
	}
}

package controller

import (
	"fmt"
	"lessonos_backend/internal/model"
	"lessonos_backend/internal/service"
	"lessonos_backend/internal/util"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService    *service.UserService
	storageService *service.StorageService
}

func NewUserController(userService *service.UserService, storageService *service.StorageService) *UserController {
	return &UserController{
		userService:    userService,
		storageService: storageService,
	}
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}

// UpdateProfile godoc
// @Summary 更新用户资料（姓名、默认生成语言）
// @Tags 用户
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body UpdateProfileRequest true "资料"
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/user/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.userService.UpdateProfile(claims.UserID, req.Name, req.Language)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, user)
}

// UploadAvatar godoc
// @Summary 上传头像
// @Tags 用户
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param avatar formData file true "头像文件"
// @Success 200 {object} util.Response
// @Router /api/user/avatar/upload [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("avatar")
	if err != nil {
		util.BadRequest(ctx, "avatar file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	filename := fmt.Sprintf("avatars/%s%s", model.GenerateUUID(), filepath.Ext(file.Filename))
	contentType := file.Header.Get("Content-Type")

	url, err := c.storageService.Provider.Upload(ctx.Request.Context(), filename, src, file.Size, contentType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if err := c.userService.UpdateAvatar(claims.UserID, url); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}

package controller

import (
	"errors"
	"lessonos_backend/internal/model"
	"lessonos_backend/internal/service"
	"lessonos_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAuthController(authService *service.AuthService, userService *service.UserService) *AuthController {
	return &AuthController{
		authService: authService,
		userService: userService,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register godoc
// @Summary 注册新账号
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "注册信息"
// @Success 201 {object} util.Response{data=model.User}
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}

	if err := c.authService.Register(user); err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, user)
}

// Login godoc
// @Summary 登录并获取 JWT
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body LoginRequest true "登录信息"
// @Success 200 {object} util.Response
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.authService.Login(req.Email, req.Password)
	if err != nil {
		util.Error(ctx, 401, "invalid credentials")
		return
	}

	util.Success(ctx, gin.H{"token": token})
}

// GetProfile godoc
// @Summary 获取当前用户资料
// @Tags 认证
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.userService.GetProfile(claims.UserID)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, user)
}

package controller

import (
	"lessonos_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{DB: db}
}

// HealthCheck godoc
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.Error(ctx, 503, "database unavailable")
		return
	}
	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, 503, "database unavailable")
		return
	}

	util.Success(ctx, gin.H{"status": "ok"})
}

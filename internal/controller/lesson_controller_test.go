package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"lessonos_backend/internal/config"
	"lessonos_backend/internal/model"
	"lessonos_backend/internal/repository"
	"lessonos_backend/internal/service"
	"lessonos_backend/internal/util"
	"lessonos_backend/pkg/logger"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

type fixedGenerator struct {
	lesson *service.GeneratedLesson
}

func (g *fixedGenerator) GenerateLesson(ctx context.Context, topic string, difficulty model.Difficulty, language string) (*service.GeneratedLesson, error) {
	return g.lesson, nil
}

func (g *fixedGenerator) RewriteSection(ctx context.Context, language, content, selectedText, instruction string) (string, error) {
	return "rewritten", nil
}

func setupRouter(t *testing.T) (*gin.Engine, *model.User, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Lesson{}, &model.LessonSection{}, &model.AIEdit{}))

	user := &model.User{Name: "U", Email: t.Name() + "@ctrl.test", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	sections := make([]service.GeneratedSection, 4)
	for i := range sections {
		sections[i] = service.GeneratedSection{
			Title:   fmt.Sprintf("Part %d", i+1),
			Content: fmt.Sprintf("Content %d", i+1),
		}
	}
	gen := &fixedGenerator{lesson: &service.GeneratedLesson{Title: "Generated Title", Sections: sections}}

	cfg := &config.Config{}
	cfg.Generation.Strategy = config.StrategySync

	lessonSvc := service.NewLessonService(repository.NewLessonRepository(db), gen, nil, cfg)
	lessonCtrl := NewLessonController(lessonSvc)

	router := gin.New()
	authed := router.Group("/api")
	authed.Use(func(c *gin.Context) {
		c.Set("user", &util.Claims{UserID: user.ID, Email: user.Email})
	})
	{
		authed.POST("/lessons", lessonCtrl.Create)
		authed.GET("/lessons", lessonCtrl.List)
		authed.GET("/lessons/:id", lessonCtrl.Get)
		authed.GET("/lessons/:id/status", lessonCtrl.Status)
		authed.DELETE("/lessons/:id", lessonCtrl.Delete)
	}

	return router, user, db
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateLessonSync(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/lessons", gin.H{
		"topic":      "Go concurrency",
		"difficulty": "beginner",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data model.Lesson `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Generated Title", resp.Data.Title)
	assert.Equal(t, model.LessonDraft, resp.Data.Status)
	assert.Len(t, resp.Data.Sections, 4)
}

func TestCreateLessonValidation(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/lessons", gin.H{"difficulty": "beginner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/lessons", gin.H{"topic": "x", "difficulty": "expert"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusEndpoint(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/api/lessons/not-a-uuid/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp.Data.Status)
}

func TestGetLessonNotFound(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/api/lessons/"+model.GenerateUUID(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteLesson(t *testing.T) {
	router, _, db := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/lessons", gin.H{
		"topic":      "Go testing",
		"difficulty": "intermediate",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data model.Lesson `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(router, http.MethodDelete, "/api/lessons/"+created.Data.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&model.Lesson{}).Where("id = ?", created.Data.ID).Count(&count)
	assert.Zero(t, count)
}

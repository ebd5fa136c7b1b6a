package app

import (
	"context"
	"lessonos_backend/internal/config"
	"lessonos_backend/internal/controller"
	"lessonos_backend/internal/repository"
	"lessonos_backend/internal/service"
	"lessonos_backend/pkg/database"
	"lessonos_backend/pkg/logger"
	"lessonos_backend/pkg/monitoring"
	"lessonos_backend/pkg/security"
	"lessonos_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user    *repository.UserRepository
	lesson  *repository.LessonRepository
	section *repository.SectionRepository
	aiEdit  *repository.AIEditRepository
}

type services struct {
	auth    *service.AuthService
	user    *service.UserService
	storage *service.StorageService
	ai      *service.AIService
	lesson  *service.LessonService
	edit    *service.EditService
}

type controllers struct {
	auth    *controller.AuthController
	user    *controller.UserController
	lesson  *controller.LessonController
	section *controller.SectionController
	health  *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		lesson:  repository.NewLessonRepository(db),
		section: repository.NewSectionRepository(db),
		aiEdit:  repository.NewAIEditRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.ai = service.NewAIService(cfg.AI)
	s.lesson = service.NewLessonService(repos.lesson, s.ai, rdb, cfg)
	s.edit = service.NewEditService(repos.section, repos.aiEdit, s.ai, s.lesson)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth, s.user),
		user:    controller.NewUserController(s.user, s.storage),
		lesson:  controller.NewLessonController(s.lesson),
		section: controller.NewSectionController(s.edit),
		health:  controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 缓存不可用不阻止启动，课程详情直接走数据库
		logger.Log.Warn("Failed to initialize redis, lesson cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("lessonos", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

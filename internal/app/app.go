package app

import (
	"assessment_backend/internal/config"
	"assessment_backend/internal/controller"
	"assessment_backend/internal/middleware"
	"assessment_backend/internal/model"
	"assessment_backend/internal/repository"
	"assessment_backend/internal/service"
	"assessment_backend/pkg/database"
	"assessment_backend/pkg/logger"
	"assessment_backend/pkg/monitoring"
	"assessment_backend/pkg/security"
	"assessment_backend/pkg/throttle"
	"assessment_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	// 内存存储模式下为 nil
	DB    *gorm.DB
	Redis *redis.Client

	stores   *stores
	services *services

	mu              sync.Mutex
	configCallbacks []func(*config.Config)
	tracerProvider  *sdktrace.TracerProvider
}

type assignmentWriter interface {
	CreateAssignment(ctx context.Context, a *model.Assignment) error
}

type stores struct {
	assignments repository.AssignmentReader
	attempts    repository.AttemptStore
	authoring   assignmentWriter
	throttle    throttle.Store
}

type services struct {
	attempt *service.AttemptService
	grading *service.GradingService
}

type controllers struct {
	attempt *controller.AttemptController
	grading *controller.GradingController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新入口，依次通知已注册的回调
func (a *App) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initStores(db *gorm.DB, rdb *redis.Client) *stores {
	s := &stores{}
	if db == nil {
		mem := repository.NewMemoryStore()
		s.assignments, s.attempts, s.authoring = mem, mem, mem
	} else {
		assignments := repository.NewAssignmentRepository(db)
		s.assignments, s.authoring = assignments, assignments
		s.attempts = repository.NewAttemptRepository(db)
	}

	if rdb != nil {
		s.throttle = throttle.NewRedisStore(rdb, "assessment:throttle:")
	} else {
		s.throttle = throttle.NewMemoryStore()
	}
	return s
}

func (a *App) initServices(st *stores, cfg *config.Config) *services {
	clock := service.SystemClock{}
	s := &services{
		attempt: service.NewAttemptService(st.assignments, st.attempts, clock),
		grading: service.NewGradingService(st.assignments, st.attempts, st.throttle, clock, cfg.Engine.RegradeCooldown()),
	}

	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.grading.SetRegradeCooldown(newCfg.Engine.RegradeCooldown())
		logger.Log.Info("Regrade cooldown updated", zap.Duration("cooldown", newCfg.Engine.RegradeCooldown()))
	})
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		attempt: controller.NewAttemptController(s.attempt),
		grading: controller.NewGradingController(s.grading),
		health:  controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	limiter := security.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		limiter.Update(newCfg.RateLimit.MaxRequests, newCfg.RateLimit.Window())
	})
	router.Use(limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully", zap.String("store", cfg.Engine.Store))

	var db *gorm.DB
	if cfg.Engine.Store == config.StoreMySQL {
		var err error
		db, err = database.InitDB(&cfg.Database, cfg.ForceMigrate || cfg.Server.Mode != "release")
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
			log.Fatalf("Failed to initialize database: %v", err)
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Redis.Host != "" {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			// 限流存储可退化为进程内实现
			logger.Log.Warn("Redis unavailable, using in-memory throttle", zap.Error(err))
		} else {
			app.Redis = rdb
		}
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("assessment-engine", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	app.setup(cfg)
	return app
}

func (a *App) setup(cfg *config.Config) {
	a.stores = a.initStores(a.DB, a.Redis)
	a.services = a.initServices(a.stores, cfg)
	controllers := a.initControllers(a.services, a.DB)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	a.Router = router

	a.setupMiddlewares(router, cfg)
	a.registerRoutes(router, controllers, cfg)
}

// SeedDemo 写入一份示例作业，便于本地联调
func (a *App) SeedDemo(ctx context.Context) (*model.Assignment, error) {
	demo := demoAssignment()
	if err := a.stores.authoring.CreateAssignment(ctx, demo); err != nil {
		return nil, err
	}
	logger.Log.Info("Demo assignment created", zap.Uint("assignment_id", demo.ID))
	return demo, nil
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
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

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}

	log.Println("Server exiting")
}

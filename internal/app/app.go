package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"study_portal_backend/internal/config"
	"study_portal_backend/internal/controller"
	"study_portal_backend/internal/middleware"
	"study_portal_backend/internal/repository"
	"study_portal_backend/internal/service"
	"study_portal_backend/internal/util"
	"study_portal_backend/pkg/configwatcher"
	"study_portal_backend/pkg/database"
	"study_portal_backend/pkg/logger"
	"study_portal_backend/pkg/monitoring"
	"study_portal_backend/pkg/security"
	"study_portal_backend/pkg/tracing"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	Redis    *redis.Client
	services *services
	visitors *middleware.VisitorCounter
	tracer   *sdktrace.TracerProvider

	current         atomic.Pointer[config.Config]
	tickReset       chan time.Duration
	cbMu            sync.Mutex
	configCallbacks []func(*config.Config)
	cancel          context.CancelFunc
}

type repositories struct {
	kv         repository.KVStore
	user       *repository.UserRepository
	friendship *repository.FriendshipRepository
	resource   *repository.ResourceRepository
	exam       *repository.ExamRepository
	quiz       *repository.QuizRepository
}

type services struct {
	bus        *service.NotificationBus
	schedule   *service.ScheduleService
	friendship *service.FriendshipService
	storage    *service.StorageService
	file       *service.FileService
	exam       *service.ExamService
	quiz       *service.QuizService
	auth       *service.AuthService
}

type controllers struct {
	schedule   *controller.ScheduleController
	friendship *controller.FriendshipController
	file       *controller.FileController
	exam       *controller.ExamController
	quiz       *controller.QuizController
	auth       *controller.AuthController
	health     *controller.HealthController
	visitor    *controller.VisitorController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.cbMu.Lock()
	defer a.cbMu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// CurrentConfig 返回最近一次加载的配置
func (a *App) CurrentConfig() *config.Config {
	return a.current.Load()
}

func (a *App) applyConfig(cfg *config.Config) {
	a.current.Store(cfg)
	a.cbMu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.cbMu.Unlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(rdb *redis.Client) *repositories {
	var kv repository.KVStore = repository.NewMemoryKVStore()
	if rdb != nil {
		kv = repository.NewRedisKVStore(rdb)
	}
	return &repositories{
		kv:         kv,
		user:       repository.NewUserRepository(),
		friendship: repository.NewFriendshipRepository(),
		resource:   repository.NewResourceRepository(),
		exam:       repository.NewExamRepository(),
		quiz:       repository.NewQuizRepository(),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.bus = service.NewNotificationBus(cfg.Schedule.InboxSize)
	s.friendship = service.NewFriendshipService(repos.friendship, repos.user)
	s.schedule = service.NewScheduleService(repos.kv, s.bus, s.friendship, service.ScheduleSettings{
		KeyPrefix:     cfg.Schedule.KeyPrefix,
		ReminderLead:  cfg.Schedule.ReminderLead,
		PublicBaseURL: cfg.Server.PublicBaseURL,
	})

	s.storage = service.NewStorageService(cfg)
	s.file = service.NewFileService(repos.resource, s.storage, cfg.Server.MaxUploadMB)
	s.exam = service.NewExamService(repos.exam)
	s.quiz = service.NewQuizService(repos.quiz)
	s.auth = service.NewAuthService(cfg)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		schedule:   controller.NewScheduleController(s.schedule),
		friendship: controller.NewFriendshipController(s.friendship),
		file:       controller.NewFileController(s.file),
		exam:       controller.NewExamController(s.exam),
		quiz:       controller.NewQuizController(s.quiz),
		auth:       controller.NewAuthController(s.auth),
		health:     controller.NewHealthController(a.Redis),
		visitor:    controller.NewVisitorController(a.visitors),
	}
}

func (a *App) setupMiddlewares(ctx context.Context, router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(ctx, cfg.RateLimit, "/metrics", "/api/health"))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
	router.Use(middleware.ConfigMiddleware(a.CurrentConfig))
	router.Use(a.visitors.Middleware())
}

func (a *App) startBackgroundTasks(ctx context.Context, s *services) {
	// 学习计划定时检查：提醒与到期自动转移
	go func() {
		ticker := time.NewTicker(a.Config.Schedule.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case d := <-a.tickReset:
				ticker.Reset(d)
				logger.Log.Info("Schedule tick interval changed", zap.Duration("interval", d))
			case now := <-ticker.C:
				s.schedule.TickAll(ctx, now)
			}
		}
	}()

	// 提醒同时写入日志
	notifications, unsubscribe := s.bus.Subscribe(64)
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-notifications:
				if !ok {
					return
				}
				logger.Log.Info("Schedule notification",
					zap.String("user", n.UserID),
					zap.String("kind", string(n.Kind)),
					zap.String("session", n.SessionID),
				)
			}
		}
	}()

	if a.Config.Server.WatchConfig {
		go func() {
			if err := configwatcher.WatchConfig(ctx, a.Config.Dir, a.applyConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}
}

func (a *App) registerConfigCallbacks(s *services) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.Level.SetLevel(logger.ResolveLevel(cfg))
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		s.schedule.SetReminderLead(cfg.Schedule.ReminderLead)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		select {
		case a.tickReset <- cfg.Schedule.TickInterval:
		default:
		}
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	app := &App{
		Config:    cfg,
		visitors:  middleware.NewVisitorCounter("/", "/files", "/exams", "/quizzes"),
		tickReset: make(chan time.Duration, 1),
	}
	app.current.Store(cfg)

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(context.Background(), &cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("study-portal", cfg.Tracing)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	repos := app.initRepositories(app.Redis)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20
	app.Router = router

	app.setupMiddlewares(ctx, router, cfg)
	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	if n, err := services.schedule.Warm(ctx); err != nil {
		logger.Log.Error("Failed to load persisted schedules", zap.Error(err))
	} else if n > 0 {
		logger.Log.Info("Persisted schedules restored", zap.Int("count", n))
	}

	app.registerConfigCallbacks(services)
	app.startBackgroundTasks(ctx, services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// 停止后台任务
	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}

package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"blog-backend/internal/config"
	infraCache "blog-backend/internal/infrastructure/cache"
	"blog-backend/internal/infrastructure/database"
	"blog-backend/internal/infrastructure/memstore"
	"blog-backend/internal/infrastructure/queue"
	"blog-backend/internal/infrastructure/storage"
	"blog-backend/internal/shared/middleware"
	"blog-backend/pkg/cache"
	"blog-backend/pkg/jwt"

	groupHandler "blog-backend/internal/domains/group/handler"
	groupRepo "blog-backend/internal/domains/group/repository"
	groupService "blog-backend/internal/domains/group/service"

	postHandler "blog-backend/internal/domains/post/handler"
	postRepo "blog-backend/internal/domains/post/repository"
	postService "blog-backend/internal/domains/post/service"

	userHandler "blog-backend/internal/domains/user/handler"
	userModel "blog-backend/internal/domains/user/model"
	userRepo "blog-backend/internal/domains/user/repository"
	userService "blog-backend/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application (API server và worker).
// Thứ tự build: config -> infrastructure -> repositories -> services -> handlers.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB // nil khi STORAGE_DRIVER=memory
	Store       *memstore.Store      // nil khi STORAGE_DRIVER=postgres
	Cache       cache.Cache          // session store: Redis, fallback memory
	redis       *infraCache.RedisCache
	JWTManager  *jwt.Manager
	Media       *storage.MinIOStorage // nil khi MinIO tắt
	Images      *storage.ImageProcessor
	QueueClient *asynq.Client // nil khi Redis không khả dụng

	Registry    *prometheus.Registry
	HTTPMetrics *middleware.HTTPMetrics

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	UserRepo  userRepo.Repository
	GroupRepo groupRepo.Repository
	PostRepo  postRepo.Repository

	// ========================================
	// SERVICE LAYER
	// ========================================
	UserService  userService.Service
	GroupService groupService.Service
	PostService  postService.Service

	// ========================================
	// HANDLER LAYER
	// ========================================
	UserHandler  *userHandler.Handler
	GroupHandler *groupHandler.Handler
	PostHandler  *postHandler.Handler
}

// NewContainer load config rồi build toàn bộ dependency graph
func NewContainer() (*Container, error) {
	log.Info().Msg("🔧 Initializing DI Container...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.Info().Str("env", cfg.App.Environment).Msg("✅ Config loaded")

	return Build(context.Background(), cfg)
}

// Build tạo container từ config có sẵn
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	// ========================================
	// STEP 1: STORAGE BACKEND
	// ========================================
	if err := c.initStorage(ctx); err != nil {
		return nil, err
	}

	// ========================================
	// STEP 2: SESSION STORE + QUEUE
	// ========================================
	c.initCacheAndQueue(ctx)

	// ========================================
	// STEP 3: MEDIA (MinIO)
	// ========================================
	c.Images = storage.NewImageProcessor()
	if cfg.MinIO.Enabled {
		media, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			// Media không critical - image uploads sẽ bị tắt
			log.Warn().Err(err).Msg("⚠️  MinIO unavailable, image uploads disabled")
		} else {
			c.Media = media
			log.Info().Str("bucket", cfg.MinIO.Bucket).Msg("✅ MinIO connected")
		}
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// ========================================
	// STEP 4: METRICS
	// ========================================
	c.initMetrics()

	// ========================================
	// STEP 5: SERVICES + HANDLERS
	// ========================================
	c.initServices()
	c.initHandlers()

	if err := c.bootstrapAdmin(ctx); err != nil {
		return nil, err
	}

	log.Info().Msg("🎉 DI Container initialized successfully")
	return c, nil
}

// NewInMemory build container không cần Postgres/Redis/MinIO: memstore + memory
// session store, không có queue và media. Dùng cho local dev và HTTP tests.
func NewInMemory(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	c.Store = memstore.New()
	c.UserRepo = c.Store.Users()
	c.GroupRepo = c.Store.Groups()
	c.PostRepo = c.Store.Posts()

	c.Cache = cache.NewMemoryCache()
	c.Images = storage.NewImageProcessor()
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	c.initMetrics()
	c.initServices()
	c.initHandlers()

	if err := c.bootstrapAdmin(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initStorage(ctx context.Context) error {
	if c.Config.Storage.Driver == config.StorageDriverMemory {
		log.Warn().Msg("⚠️  Using in-memory storage, data is lost on restart")
		c.Store = memstore.New()
		c.UserRepo = c.Store.Users()
		c.GroupRepo = c.Store.Groups()
		c.PostRepo = c.Store.Posts()
		return nil
	}

	log.Info().Msg("🗄️  Connecting to PostgreSQL...")
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Info().Msg("✅ Database connected")

	c.UserRepo = userRepo.NewPostgresRepository(db.Pool)
	c.GroupRepo = groupRepo.NewPostgresRepository(db.Pool)
	c.PostRepo = postRepo.NewPostgresRepository(db.Pool)
	return nil
}

// initCacheAndQueue - Redis failure không critical: fallback memory cache, không có worker queue
func (c *Container) initCacheAndQueue(ctx context.Context) {
	log.Info().Msg("🔴 Connecting to Redis...")

	rc := infraCache.NewRedisCache(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := rc.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("⚠️  Redis connection failed (non-critical), using in-memory session store")
		_ = rc.Close()
		c.Cache = cache.NewMemoryCache()
		return
	}

	c.redis = rc
	c.Cache = rc
	c.QueueClient = queue.NewClient(c.Config.Redis)
	log.Info().Msg("✅ Redis connected")
}

func (c *Container) initMetrics() {
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.HTTPMetrics = middleware.NewHTTPMetrics(c.Registry)
}

func (c *Container) initServices() {
	// Tránh typed-nil trong interface khi không có queue/media
	var enqueuer queue.Enqueuer
	if c.QueueClient != nil {
		enqueuer = c.QueueClient
	}
	var media postService.MediaStorage
	if c.Media != nil {
		media = c.Media
	}

	c.UserService = userService.NewUserService(c.UserRepo, c.Cache, c.JWTManager, enqueuer)
	c.GroupService = groupService.NewGroupService(c.GroupRepo)
	c.PostService = postService.NewPostService(
		c.PostRepo,
		c.GroupService,
		c.UserService,
		media,
		c.Images,
		enqueuer,
		c.Config.Blog.PostsPerPage,
	)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewHandler(c.UserService, c.Config.App.Environment == "production")
	c.GroupHandler = groupHandler.NewHandler(c.GroupService)
	c.PostHandler = postHandler.NewHandler(c.PostService)
}

func (c *Container) bootstrapAdmin(ctx context.Context) error {
	admin := c.Config.Admin
	if admin.Username == "" || admin.Password == "" {
		return nil
	}

	err := c.UserService.EnsureAdmin(ctx, userModel.SignupRequest{
		Username: admin.Username,
		Email:    admin.Email,
		Password: admin.Password,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	log.Info().Str("username", admin.Username).Msg("✅ Admin account ready")
	return nil
}

// ========================================
// HEALTH + CLEANUP
// ========================================

// HealthCheck ping database (nếu có) và session store
func (c *Container) HealthCheck(ctx context.Context) map[string]string {
	status := map[string]string{"storage": c.Config.Storage.Driver}

	if c.DB != nil {
		if err := c.DB.HealthCheck(ctx); err != nil {
			status["database"] = "unhealthy: " + err.Error()
		} else {
			status["database"] = "healthy"
		}
	}

	if err := c.Cache.Ping(ctx); err != nil {
		status["cache"] = "unhealthy: " + err.Error()
	} else {
		status["cache"] = "healthy"
	}

	status["media"] = "disabled"
	if c.Media != nil {
		status["media"] = "enabled"
	}
	return status
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	log.Info().Msg("🧹 Cleaning up container resources...")

	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close queue client")
		}
	}

	if c.DB != nil {
		c.DB.Close()
		log.Info().Msg("✅ Database connections closed")
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close Redis")
		} else {
			log.Info().Msg("✅ Redis connections closed")
		}
	}

	log.Info().Msg("✅ Container cleanup completed")
}

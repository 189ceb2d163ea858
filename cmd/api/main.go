package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalogadmin/internal/config"
	"catalogadmin/internal/domain/catalog"
	"catalogadmin/internal/handler"
	"catalogadmin/internal/infra/cache"
	"catalogadmin/internal/infra/db"
	"catalogadmin/internal/infra/logger"
	"catalogadmin/internal/infra/notify"
	infraRepo "catalogadmin/internal/infra/repository"
	repo "catalogadmin/internal/repository"
	"catalogadmin/internal/server"
	"catalogadmin/internal/usecase"
	"catalogadmin/internal/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//設定
	cfg, err := config.LoadWithDotenv(".env", "../.env")
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect db", zap.Error(err))
	}
	if cfg.AutoMigrate {
		if err := db.AutoMigrate(gormDB); err != nil {
			log.Fatal("failed to migrate", zap.Error(err))
		}
	}

	//削除中の集合（memory or redis）
	var tracker repo.DeletionTracker
	switch cfg.DeletionTracker {
	case config.TrackerRedis:
		rdb, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()
		tracker = infraRepo.NewRedisDeletionTracker(rdb, cfg.DeletionPendingTTL)
	default:
		tracker = infraRepo.NewMemoryDeletionTracker()
	}
	log.Info("deletion tracker ready", zap.String("backend", cfg.DeletionTracker))

	//カテゴリ
	categories := catalog.DefaultCategoryRegistry()
	if cfg.CategoriesFile != "" {
		categories, err = catalog.LoadCategoryRegistry(cfg.CategoriesFile)
		if err != nil {
			log.Fatal("failed to load categories", zap.String("path", cfg.CategoriesFile), zap.Error(err))
		}
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//初回ロード。失敗してもloadingのまま起動する
	source := usecase.NewProductSource(productRepo)
	if err := source.Refetch(ctx); err != nil {
		log.Warn("initial product load failed", zap.Error(err))
	}

	//Usecase生成
	productUC := usecase.NewProductUsecase(
		productRepo,
		source,
		tracker,
		auditRepo,
		categories,
		validator.NewProductValidator(categories),
		notify.NewZapNotifier(log),
		&uuidGenerator{},
		&realClock{},
		log,
	)

	//Handler生成
	router := server.NewRouter(log, server.Handlers{
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
	})

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := server.Start(ctx, addr, router, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

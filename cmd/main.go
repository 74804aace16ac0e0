package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	api "github.com/clubhub-app/clubhub-backend/internal/api/http"
	"github.com/clubhub-app/clubhub-backend/internal/api/http/middleware"
	"github.com/clubhub-app/clubhub-backend/internal/config"
	"github.com/clubhub-app/clubhub-backend/internal/fetch"
	"github.com/clubhub-app/clubhub-backend/internal/logger"
	"github.com/clubhub-app/clubhub-backend/internal/model"
	"github.com/clubhub-app/clubhub-backend/internal/repository/postgres"
	redisrepo "github.com/clubhub-app/clubhub-backend/internal/repository/redis"
	"github.com/clubhub-app/clubhub-backend/internal/server"
	"github.com/clubhub-app/clubhub-backend/internal/service"
	storage "github.com/clubhub-app/clubhub-backend/internal/storage/minio"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	profileRepo := postgres.NewProfileRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	kvStore := redisrepo.NewStore(redisClient)
	fetcher := fetch.New()

	imageService := service.NewImageCache(kvStore, fetcher, logger)
	avatarService := service.NewAvatar(storageClient, profileRepo, fetcher, logger)
	registrationService := service.NewRegistrations(registrationRepo, logger, cfg.Poll.Interval)
	maintenance := service.NewMaintenance(imageService, logger)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Maintenance.CleanupSchedule, func() {
		maintenance.Run(ctx)
	}); err != nil {
		logger.Fatal("failed to schedule cache maintenance", "error", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	httpServer := registerHTTPServer(
		logger,
		imageService,
		avatarService,
		registrationService,
		fmt.Sprintf(":%s", cfg.HTTP.Port),
	)

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	registrationService.StopPolling()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func registerHTTPServer(
	logger *logger.Logger,
	images *service.ImageCache,
	avatars *service.Avatar,
	registrations *service.Registrations,
	addr string,
) *server.HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.NewLogging(logger).Handle, gin.Recovery())

	handler := api.NewHandler(images, avatars, registrations, logger)
	handler.Register(engine.Group("/api/v1"))

	return server.NewHTTPServer(engine, addr)
}

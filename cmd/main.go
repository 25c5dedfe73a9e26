package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/bracket-pool/brackets"
	"github.com/Dosada05/bracket-pool/config"
	"github.com/Dosada05/bracket-pool/db"
	"github.com/Dosada05/bracket-pool/handlers"
	"github.com/Dosada05/bracket-pool/repositories"
	api "github.com/Dosada05/bracket-pool/routes"
	"github.com/Dosada05/bracket-pool/services"
	"github.com/Dosada05/bracket-pool/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const schedulerInterval = 30 * time.Second // How often the scheduler runs

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Применение миграций
	if err := db.RunMigrations(dbConn); err != nil {
		logger.Error("failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	poolRepo := repositories.NewPostgresPoolRepository(dbConn)
	regionRepo := repositories.NewPostgresRegionRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	entryRepo := repositories.NewPostgresEntryRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	membershipRepo := repositories.NewPostgresMembershipRepository(dbConn)
	inviteRepo := repositories.NewPostgresInviteRepository(dbConn)
	winnerRepo := repositories.NewPostgresWinnerRepository(dbConn)
	exceptionRepo := repositories.NewPostgresExceptionRepository(dbConn)
	logger.Info("Repositories initialized")

	// Единая политика видимости: туман войны действует и на администраторов.
	visibilityPolicy := brackets.DefaultVisibilityPolicy

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, cloudflareUploader)
	configService := services.NewBracketConfigService(
		dbConn,
		poolRepo,
		regionRepo,
		teamRepo,
		cloudflareUploader,
	)
	standingsService := services.NewStandingsService(
		dbConn,
		poolRepo,
		entryRepo,
		resultRepo,
		winnerRepo,
		exceptionRepo,
		configService,
		visibilityPolicy,
		logger,
	)
	resultService := services.NewResultService(
		dbConn,
		poolRepo,
		resultRepo,
		entryRepo,
		configService,
		standingsService, // после каждого результата пул пересчитывается
		logger,
	)
	entryService := services.NewEntryService(
		dbConn,
		poolRepo,
		entryRepo,
		membershipRepo,
		exceptionRepo,
		configService,
		visibilityPolicy,
		cfg.EntryLockGrace,
	)
	poolService := services.NewPoolService(
		dbConn,
		poolRepo,
		userRepo,
		membershipRepo,
		entryRepo,
		regionRepo,
		teamRepo,
		resultRepo,
		configService,
		cloudflareUploader,
		logger,
	)
	memberService := services.NewMemberService(
		dbConn,
		poolRepo,
		membershipRepo,
		entryRepo,
		inviteRepo,
		exceptionRepo,
		userRepo,
		logger,
	)
	inviteService := services.NewInviteService(inviteRepo, poolRepo)
	adminUserService := services.NewAdminUserService(userRepo)
	dashboardService := services.NewDashboardService(userRepo, poolRepo, entryRepo, resultRepo)
	logger.Info("Services initialized")

	// Планировщик: блокировка пулов с истёкшим lock_time и чистка приглашений.
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("Pool lock scheduler started", slog.Duration("interval", schedulerInterval))

		// Run once immediately at startup, then on ticker
		runScheduledTasks(poolService, inviteService, logger)

		for range ticker.C {
			runScheduledTasks(poolService, inviteService, logger)
		}
	}()

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	gameTypeHandler := handlers.NewGameTypeHandler()
	poolHandler := handlers.NewPoolHandler(poolService)
	configHandler := handlers.NewBracketConfigHandler(configService)
	entryHandler := handlers.NewEntryHandler(entryService)
	resultHandler := handlers.NewResultHandler(resultService)
	standingsHandler := handlers.NewStandingsHandler(standingsService)
	memberHandler := handlers.NewMemberHandler(memberService)
	inviteHandler := handlers.NewInviteHandler(inviteService)
	adminUserHandler := handlers.NewAdminUserHandler(adminUserService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	webSocketHandler := handlers.NewWebSocketHandler(configService, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authHandler,
		userHandler,
		gameTypeHandler,
		poolHandler,
		configHandler,
		entryHandler,
		resultHandler,
		standingsHandler,
		memberHandler,
		inviteHandler,
		adminUserHandler,
		dashboardHandler,
		webSocketHandler,
		cfg.JWTSecretKey,
		cfg.CORSAllowedOrigins,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		// Create a context with timeout for shutdown.
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			// If shutdown fails, force close.
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}

func runScheduledTasks(poolService services.PoolService, inviteService services.InviteService, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), schedulerInterval)
	defer cancel()

	locked, err := poolService.AutoLockPools(ctx)
	if err != nil {
		logger.Error("Scheduler: pool auto-lock failed", slog.Any("error", err))
	} else if locked > 0 {
		logger.Info("Scheduler: pools locked", slog.Int("count", locked))
	}

	removed, err := inviteService.DeleteExpired(ctx)
	if err != nil {
		logger.Error("Scheduler: expired invite cleanup failed", slog.Any("error", err))
	} else if removed > 0 {
		logger.Info("Scheduler: expired invites removed", slog.Int64("count", removed))
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/senyabanana/common-elements/internal/cache"
	"github.com/senyabanana/common-elements/internal/db"
	"github.com/senyabanana/common-elements/internal/handlers"
	"github.com/senyabanana/common-elements/internal/middleware"
	"github.com/senyabanana/common-elements/internal/notify"
	"github.com/senyabanana/common-elements/internal/repository"
	"github.com/senyabanana/common-elements/internal/repository/inmem"
	"github.com/senyabanana/common-elements/internal/router"
	"github.com/senyabanana/common-elements/internal/router/config"
	"github.com/senyabanana/common-elements/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// repositories - набор хранилищ, выбранный по STORAGE_DRIVER.
type repositories struct {
	rfps      repository.RFPRepository
	profiles  repository.ProfileRepository
	approvals repository.ApprovalRepository
	proposals repository.ProposalRepository
	messages  repository.MessageRepository
	forum     repository.ForumRepository
	close     func()
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "common-elements").Logger()
	log.Logger = logger

	configPath, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot parse flags")
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
		log.Logger = logger
	}

	repos := initRepositories(cfg, logger)
	defer repos.close()

	unreadCache := initUnreadCache(cfg, logger)
	hub := notify.NewHub(logger.With().Str("component", "websocket").Logger())

	accessService := services.NewAccessService(repos.rfps, repos.profiles, repos.approvals)
	rfpService := services.NewRFPService(repos.rfps, repos.profiles)
	approvalService := services.NewApprovalService(repos.approvals, repos.rfps, repos.profiles, hub)
	proposalService := services.NewProposalService(repos.proposals, repos.rfps, repos.profiles, repos.approvals, hub)
	messageService := services.NewMessageService(repos.messages, repos.rfps, repos.profiles, repos.approvals, repos.proposals,
		unreadCache, hub, logger.With().Str("component", "messages").Logger())
	forumService := services.NewForumService(repos.forum, hub)

	base := handlers.Base{Logger: logger, Timeout: cfg.RequestTimeout, LoginURL: cfg.LoginURL}
	routes := router.InitRoutes(router.Handlers{
		RFP:      handlers.NewRFPHandler(rfpService, accessService, base),
		Approval: handlers.NewApprovalHandler(approvalService, base),
		Proposal: handlers.NewProposalHandler(proposalService, base),
		Message:  handlers.NewMessageHandler(messageService, hub, base),
		Forum:    handlers.NewForumHandler(forumService, base),
		Health:   handlers.HealthHandler(repos.rfps, cfg.RequestTimeout),
	},
		middleware.NewAuth(cfg.JWTSecret, cfg.LoginURL),
		middleware.NewRateLimiter(cfg.MessageRateLimit, cfg.MessageRateBurst),
		logger)

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           routes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.ServerAddress).Str("storage", cfg.StorageDriver).Msg("server is listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

func initRepositories(cfg config.Config, logger zerolog.Logger) repositories {
	if cfg.StorageDriver == config.MemoryStorage {
		store := inmem.New()
		store.SeedForumCategories()
		logger.Warn().Msg("using in-memory storage, data is lost on restart")
		return repositories{
			rfps:      store,
			profiles:  store,
			approvals: store,
			proposals: store,
			messages:  store,
			forum:     store,
			close:     func() {},
		}
	}

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn, logger)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("error initializing database")
	}
	return repositories{
		rfps:      repository.NewPostgresRFPRepository(dbPool),
		profiles:  repository.NewPostgresProfileRepository(dbPool),
		approvals: repository.NewPostgresApprovalRepository(dbPool),
		proposals: repository.NewPostgresProposalRepository(dbPool),
		messages:  repository.NewPostgresMessageRepository(dbPool),
		forum:     repository.NewPostgresForumRepository(dbPool),
		close:     dbPool.Close,
	}
}

func initUnreadCache(cfg config.Config, logger zerolog.Logger) cache.UnreadCache {
	client, err := db.InitRedis(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("redis is unavailable, unread counters are not cached")
		return cache.NoopUnreadCache{}
	}
	if client == nil {
		return cache.NoopUnreadCache{}
	}
	return cache.NewRedisUnreadCache(client, cfg.UnreadCacheTTL)
}

func runDBMigration(migrationURL string, dbSource string, logger zerolog.Logger) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create a new migrate instance")
	}

	if err = migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal().Err(err).Msg("failed to run migrate up")
	}
	logger.Info().Msg("db migrated successfully")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fleetops-disposal-service/internal/adapters/broadcaster"
	"fleetops-disposal-service/internal/adapters/db"
	"fleetops-disposal-service/internal/adapters/redis"
	"fleetops-disposal-service/internal/adapters/scheduler"
	"fleetops-disposal-service/internal/adapters/ws"
	"fleetops-disposal-service/internal/app"
	"fleetops-disposal-service/internal/config"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	initLogging(cfg)

	log.Info().Msg("Starting Fleet Disposal Service...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConn, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	log.Info().Msg("Database connection established")

	repoFactory := db.NewRepositoryFactory(dbConn)
	requestRepo := repoFactory.GetDisposalRequestRepository()
	auctionRepo := repoFactory.GetAuctionRepository()
	bidRepo := repoFactory.GetBidRepository()
	vehicleRepo := repoFactory.GetVehicleRepository()
	auditLog := repoFactory.GetAuditLog()

	log.Info().Msg("Database repositories initialized")

	redisClient := redis.NewClient(cfg)
	if err := redis.PingRedis(redisClient); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	log.Info().Msg("Redis connection established")

	notifier := broadcaster.NewNotifier(broadcaster.RedisNotifierParams{
		RedisClient: redisClient,
		Logger:      log.Logger,
	})
	log.Info().Msg("Redis notifier initialized")

	disposalService := app.NewDisposalService(app.DisposalServiceParams{
		RequestRepo: requestRepo,
		VehicleRepo: vehicleRepo,
		Logger:      log.Logger,
	})
	auctionService := app.NewAuctionService(app.AuctionServiceParams{
		AuctionRepo: auctionRepo,
		RequestRepo: requestRepo,
		BidRepo:     bidRepo,
		Logger:      log.Logger,
	})
	bidService := app.NewBidService(app.BidServiceParams{
		BidRepo:     bidRepo,
		AuctionRepo: auctionRepo,
		Logger:      log.Logger,
	})
	workflow := app.NewWorkflowService(app.WorkflowServiceParams{
		Disposals: disposalService,
		Auctions:  auctionService,
		Bids:      bidService,
		Notifier:  notifier,
		Audit:     auditLog,
		Logger:    log.Logger,
	})

	log.Info().Msg("Workflow services initialized")

	endDateMonitor := scheduler.NewEndDateMonitor(scheduler.EndDateMonitorParams{
		RedisClient: redisClient,
		Auctions:    auctionService,
		Notifier:    notifier,
		Logger:      log.Logger,
	})

	endDateMonitor.Start()
	log.Info().Msg("End-date monitor started")

	workflow.SetEndDateRegistrar(endDateMonitor)

	wsServer := ws.NewServer(ws.ServerParams{
		Config:   cfg,
		Workflow: workflow,
		Notifier: notifier,
		Logger:   log.Logger,
	})

	log.Info().Msg("Operator console server initialized")

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting operator console server")
		if err := wsServer.Start(); err != nil {
			log.Error().Err(err).Msg("Failed to start operator console server")
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	log.Info().Msg("Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	endDateMonitor.Stop()
	log.Info().Msg("End-date monitor stopped")

	if err := wsServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping operator console server")
	}

	log.Info().Msg("Graceful shutdown completed")
}

func initLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Logging.Format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.DefaultContextLogger = &log.Logger
}

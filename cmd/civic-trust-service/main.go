package main

import (
	"fmt"
	"os"

	"civic-trust-service/internal/auth"
	"civic-trust-service/internal/config"
	"civic-trust-service/internal/db"
	httphandler "civic-trust-service/internal/http"
	"civic-trust-service/internal/http/middleware"
	"civic-trust-service/internal/imagery"
	"civic-trust-service/internal/logger"
	"civic-trust-service/internal/outbox"
	"civic-trust-service/internal/repository"
	"civic-trust-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	binRepo := repository.NewBinRepository(database)
	disposalRepo := repository.NewDisposalRepository(database)
	complaintRepo := repository.NewComplaintRepository(database)
	walletRepo := repository.NewWalletRepository(database)
	rewardRepo := repository.NewRewardRepository(database)
	alertRepo := repository.NewFraudAlertRepository(database)
	locationRepo := repository.NewUserLocationRepository(database)
	hashRepo := repository.NewImageHashRepository(database)
	pendingRepo := repository.NewPendingActionRepository(database)

	var remote outbox.Remote
	if cfg.Sync.RemoteBaseURL != "" {
		remote = outbox.NewHTTPRemote(cfg.Sync.RemoteBaseURL, cfg.Sync.RequestTimeout)
	}
	replicator := outbox.NewReplicator(pendingRepo, remote, log, cfg.Sync.RequestTimeout)

	var revalidator outbox.GeoRevalidator
	if cfg.Sync.RevalidateURL != "" {
		revalidator = outbox.NewHTTPRevalidator(cfg.Sync.RevalidateURL, cfg.Sync.RequestTimeout)
	}

	policy := service.PolicyFromConfig(cfg.Engine)

	disposalService := service.NewDisposalService(
		policy, binRepo, disposalRepo, walletRepo, alertRepo, locationRepo, hashRepo,
		imagery.StubValidator{}, revalidator, replicator, log,
	)
	complaintService := service.NewComplaintService(
		policy, complaintRepo, alertRepo, locationRepo, hashRepo, replicator, log,
	)
	rewardService := service.NewRewardService(policy, walletRepo, rewardRepo, replicator, log)
	alertService := service.NewAlertService(alertRepo, log)
	analyticsService := service.NewAnalyticsService(
		policy, binRepo, disposalRepo, complaintRepo, walletRepo, rewardRepo, log,
	)

	var identity auth.IdentityClient
	if cfg.Auth.IdentityURL != "" {
		identity = auth.NewHTTPIdentityClient(cfg.Auth.IdentityURL, cfg.Sync.RequestTimeout)
	}
	authenticator := auth.NewAuthenticator(identity)
	tokenIssuer := auth.NewIssuer(cfg.Auth.AccessSecret, cfg.Auth.TokenTTL)
	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(
		authenticator, tokenIssuer,
		disposalService, complaintService, rewardService, alertService, analyticsService,
		log,
	)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting civic trust service")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

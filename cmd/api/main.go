package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/lucasfarrell/wavecrest-backend/api/routes"
	"github.com/lucasfarrell/wavecrest-backend/internal/assignments"
	"github.com/lucasfarrell/wavecrest-backend/internal/feesplit"
	"github.com/lucasfarrell/wavecrest-backend/internal/notifications"
	"github.com/lucasfarrell/wavecrest-backend/internal/riskgate"
	"github.com/lucasfarrell/wavecrest-backend/internal/swaps"
	"github.com/lucasfarrell/wavecrest-backend/internal/trips"
	"github.com/lucasfarrell/wavecrest-backend/internal/wallet"
	"github.com/lucasfarrell/wavecrest-backend/pkg/config"
	"github.com/lucasfarrell/wavecrest-backend/pkg/db"
	"github.com/lucasfarrell/wavecrest-backend/pkg/logger"
	"github.com/lucasfarrell/wavecrest-backend/pkg/migrate"
	"github.com/lucasfarrell/wavecrest-backend/pkg/outbox"
	"github.com/lucasfarrell/wavecrest-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	assignmentsService, err := assignments.NewService(
		assignments.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		cfg.Assignment,
		nil,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create assignments service", err)
		os.Exit(1)
	}

	swapsService, err := swaps.NewService(swaps.NewRepository(dbClient.DB()), dbClient, outboxService, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create swaps service", err)
		os.Exit(1)
	}

	tripsService, err := trips.NewService(
		trips.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		riskgate.PolicyFromConfig(cfg.Risk),
		nil,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create trips service", err)
		os.Exit(1)
	}

	weights, err := feesplit.ParseRoleWeights(cfg.FeeSplit.RoleWeights)
	if err != nil {
		logg.Error(context.Background(), "failed to parse fee split weights", err)
		os.Exit(1)
	}
	walletService, err := wallet.NewService(
		wallet.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		weights,
		nil,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Assignments:   assignmentsService,
			Swaps:         swapsService,
			Trips:         tripsService,
			Wallet:        walletService,
			Notifications: notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

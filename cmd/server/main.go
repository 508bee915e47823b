package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/uptrace/bun/migrate"
	"github.com/ziflex/lecho/v3"

	"github.com/stablegate/stablegate.go/chain"
	"github.com/stablegate/stablegate.go/db"
	"github.com/stablegate/stablegate.go/db/migrations"
	"github.com/stablegate/stablegate.go/db/store"
	"github.com/stablegate/stablegate.go/explorer"
	"github.com/stablegate/stablegate.go/lib"
	"github.com/stablegate/stablegate.go/lib/service"
	"github.com/stablegate/stablegate.go/lib/tokens"
	"github.com/stablegate/stablegate.go/lib/transport"
)

func main() {

	c := &service.Config{}

	// Load configuration from environment variables
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		log.Fatalf("Error loading environment variables: %v", err)
	}
	if err = c.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging to STDOUT or a configured log file
	logger := lecho.From(lib.Logger(c.LogFilePath))

	// Open a DB connection based on the configured DATABASE_URI
	dbConn, err := db.Open(c)
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}

	// Migrate the DB
	startupCtx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	err = migrator.Init(startupCtx)
	if err != nil {
		logger.Fatalf("Error initializing db migrator: %v", err)
	}
	_, err = migrator.Migrate(startupCtx)
	if err != nil {
		logger.Fatalf("Error migrating database: %v", err)
	}

	// Setup exception tracking with Sentry if configured
	// sentry init needs to happen before the echo middlewares are added
	if c.SentryDSN != "" {
		if err = sentry.Init(sentry.ClientOptions{
			Dsn:              c.SentryDSN,
			EnableTracing:    c.SentryTracesSampleRate > 0,
			TracesSampleRate: c.SentryTracesSampleRate,
		}); err != nil {
			logger.Errorf("sentry init error: %v", err)
		}
	}

	// Init the node client and read the token metadata once. A failed read
	// degrades to the configured fallback instead of refusing to start.
	chainConfig, err := chain.LoadConfig()
	if err != nil {
		logger.Fatalf("Error loading chain config: %v", err)
	}
	chainClient := chain.NewClient(chainConfig)
	tokenDecimals, err := chainClient.ResolveDecimals(startupCtx, c.TokenDecimalsFallback)
	if err != nil {
		logger.Warnf("Could not read token decimals, falling back to %d: %v", tokenDecimals, err)
	}
	logger.Infof("Using token %s with %d decimals", chainConfig.TokenContract, tokenDecimals)

	// Init the explorer transfer feed client
	explorerConfig, err := explorer.LoadConfig()
	if err != nil {
		logger.Fatalf("Error loading explorer config: %v", err)
	}
	feedClient := explorer.NewClient(explorerConfig)

	svc := &service.GatewayService{
		Config:        c,
		Logger:        logger,
		Invoices:      store.NewInvoiceStore(dbConn),
		Ledger:        store.NewTransferLedger(dbConn),
		ChainClient:   chainClient,
		FeedClient:    feedClient,
		TokenDecimals: tokenDecimals,
		InvoicePubSub: service.NewPubsub(),
	}

	//init echo server
	e := transport.InitEcho(c, logger)

	logMw := transport.CreateLoggingMiddleware(logger)
	// strict rate limit for requests submitting outbound transfers
	strictRateLimitMiddleware := transport.CreateRateLimitMiddleware(c.StrictRateLimit, c.BurstRateLimit)

	secured := e.Group("", tokens.ApiKeyMiddleware(c.APIKey), logMw)
	securedWithStrictRateLimit := e.Group("", tokens.ApiKeyMiddleware(c.APIKey), strictRateLimitMiddleware, logMw)

	transport.RegisterEndpoints(svc, e, secured, securedWithStrictRateLimit, logMw)

	var backgroundWg sync.WaitGroup
	backGroundCtx, _ := signal.NotifyContext(context.Background(), os.Interrupt)

	// Reconcile incoming transfers against pending invoices in the background
	backgroundWg.Add(1)
	go func() {
		svc.StartReconciliationRoutine(backGroundCtx)
		svc.Logger.Info("Reconciliation routine done")
		backgroundWg.Done()
	}()

	// Start webhook notifications for confirmed invoices
	if svc.Config.WebhookUrl != "" {
		backgroundWg.Add(1)
		go func() {
			svc.StartWebhookRoutine(backGroundCtx)
			svc.Logger.Info("Webhook routine done")
			backgroundWg.Done()
		}()
	}

	// Start Prometheus server if enabled
	if svc.Config.EnablePrometheus {
		go transport.StartPrometheusEcho(logger, svc, e)
	}

	// Start server
	go func() {
		if err := e.Start(fmt.Sprintf(":%v", c.Port)); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server", err)
		}
	}()

	<-backGroundCtx.Done()
	if err := e.Shutdown(context.Background()); err != nil {
		e.Logger.Fatal(err)
	}
	backgroundWg.Wait()
}

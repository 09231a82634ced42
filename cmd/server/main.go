package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"

	"anniversary-timeline/internal/apperr"
	"anniversary-timeline/internal/config"
	"anniversary-timeline/internal/db"
	"anniversary-timeline/internal/event"
	"anniversary-timeline/internal/handlers"
	"anniversary-timeline/internal/logger"
	"anniversary-timeline/internal/metrics"
	"anniversary-timeline/internal/player"
	"anniversary-timeline/internal/realtime"
	"anniversary-timeline/internal/repository"
	"anniversary-timeline/internal/services"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	// Document store
	store, closeStore, unavailable := openStore(ctx, cfg.Store, log)
	defer closeStore()

	opts := []services.Option{
		services.WithLogger(log),
		services.WithObserver(m),
		services.WithUnavailableReason(unavailable),
	}

	// Change events
	if cfg.Events.Enabled() {
		publisher, err := event.NewEventPublisher(cfg.Events.RabbitURL, cfg.Events.Exchange)
		if err != nil {
			log.Warn("event publishing disabled", "error", err)
		} else {
			defer publisher.Close()
			opts = append(opts, services.WithPublisher(publisher))
			log.Info("publishing presentation events", "exchange", cfg.Events.Exchange)
		}
	}

	presentationService := services.NewPresentationService(store, opts...)

	var archive *services.ExportArchive
	if cfg.Export.ArchiveDir != "" {
		archive, err = services.NewExportArchive(cfg.Export.ArchiveDir)
		if err != nil {
			log.Fatal("failed to create export archive", "error", err)
		}
	}

	session := services.NewSession(presentationService, archive, log)

	// Realtime player feed
	hub := realtime.NewHub(log)
	go hub.Run(ctx)
	session.OnChange(func(v player.View) {
		if err := hub.Broadcast(v); err != nil {
			log.Warn("failed to broadcast player view", "error", err)
		}
	})

	// Initialize handlers
	validator := handlers.NewRequestValidator()
	router := handlers.SetupRoutes(
		handlers.NewSlideHandler(session, validator, cfg.Server.MaxUploadBytes, log),
		handlers.NewPresentationHandler(session, validator, log),
		handlers.NewPlayerHandler(session, validator, log),
		handlers.NewWebSocketHandler(hub, session, cfg.Server.AllowedOrigins, log),
		handlers.NewHealthHandler(presentationService),
		m,
	)

	// Configure server
	server := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	// Configure TLS if enabled
	if cfg.TLS.Enabled {
		server.TLSConfig = &tls.Config{
			MinVersion: getTLSVersion(cfg.TLS.MinVersion),
		}

		log.Info("starting HTTPS server",
			"addr", server.Addr,
			"cert", cfg.TLS.CertFile,
			"key", cfg.TLS.KeyFile,
			"minVersion", cfg.TLS.MinVersion,
		)
		err = server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	} else {
		log.Info("starting HTTP server", "addr", server.Addr)
		log.Warn("HTTP mode is not recommended for production")
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", "error", err)
	}
	log.Info("server stopped")
}

// openStore builds the document store for the configured backend. When it
// cannot, the store is nil and the returned error says why.
func openStore(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (repository.DocumentStore, func(), error) {
	noop := func() {}

	if missing := cfg.Missing(); len(missing) > 0 {
		log.Warn("persistence disabled: configuration incomplete",
			"backend", cfg.Backend,
			"missing", strings.Join(missing, ", "),
		)
		return nil, noop, fmt.Errorf("%w: missing %s", apperr.ErrConfigurationIncomplete, strings.Join(missing, ", "))
	}

	switch cfg.Backend {
	case config.BackendMongo:
		client, err := db.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			log.Error("persistence disabled: mongo unreachable", "error", err)
			return nil, noop, err
		}
		log.Info("connected to mongo", "database", cfg.Mongo.Database)
		closeFn := func() { disconnectMongo(client, log) }
		return repository.NewMongoPresentationRepository(client.Database(cfg.Mongo.Database)), closeFn, nil

	case config.BackendSQLite:
		database, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Error("persistence disabled: sqlite unavailable", "error", err)
			return nil, noop, err
		}
		log.Info("database initialized", "path", cfg.SQLitePath)
		return repository.NewSQLitePresentationRepository(database), func() { closeSQLite(database, log) }, nil

	default:
		log.Warn("using in-memory store; presentations are lost on restart")
		return repository.NewMemoryPresentationRepository(), noop, nil
	}
}

func disconnectMongo(client *mongo.Client, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Warn("mongo disconnect failed", "error", err)
	}
}

func closeSQLite(database *sql.DB, log *logger.Logger) {
	if err := database.Close(); err != nil {
		log.Warn("sqlite close failed", "error", err)
	}
}

// getTLSVersion converts string version to tls.Version constant
func getTLSVersion(version string) uint16 {
	switch version {
	case "1.0":
		return tls.VersionTLS10
	case "1.1":
		return tls.VersionTLS11
	case "1.2":
		return tls.VersionTLS12
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	"rfid-logbook/bot"
	"rfid-logbook/config"
	"rfid-logbook/internal/handlers"
	"rfid-logbook/internal/importer"
	"rfid-logbook/internal/nfc"
	"rfid-logbook/internal/repository"
	"rfid-logbook/internal/scanbus"
	"rfid-logbook/internal/services"
)

const serviceName = "rfid_logbook"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.Logging(serviceName, cfg.LogDir)
	log.Info("Config loaded successfully")

	// Create application context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutdown signal received, initiating graceful shutdown...")
		cancel()
	}()

	blobs, closeBlobs, err := repository.Open(ctx, cfg.StoreBackend, repository.OpenOptions{
		DataDir:         cfg.DataDir,
		PocketBaseURL:   cfg.PocketBaseURL,
		PocketBaseToken: cfg.PocketBaseToken,
		DatabaseURL:     cfg.DatabaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeBlobs()

	state := repository.NewStateStore(blobs)
	loadCtx, loadCancel := context.WithTimeout(ctx, 30*time.Second)
	snap, err := state.Load(loadCtx)
	loadCancel()
	if err != nil {
		log.Fatalf("Failed to load logbook: %v", err)
	}
	log.Infof("📚 Loaded %d nickname(s), %d check-in(s), %d borrow(s)",
		len(snap.Nicknames), len(snap.Attendance), len(snap.Borrows))

	notifier := bot.NewNotifier()
	logbook := services.NewLogbook(snap, state, importer.New(cfg.ImportTimeout), notifier, services.Options{
		Catalog:       cfg.Catalog,
		Location:      cfg.Location,
		WorkStartTime: cfg.WorkStartTime,
	})

	// Initialize Telegram Bot
	if cfg.TelegramBotToken != "" {
		if err := initBot(ctx, cfg, logbook, notifier); err != nil {
			log.Warnf("Warning: Failed to init Telegram Bot: %v", err)
		}
	}

	// Subscribe to reader scans
	var scans *scanbus.Subscriber
	if cfg.NATSURL != "" {
		if scans, err = initScanBus(cfg, logbook); err != nil {
			log.Warnf("Warning: Failed to init scan bus: %v", err)
		}
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      newRouter(cfg, logbook),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Server starting on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	// Graceful shutdown
	var source scanSource
	if scans != nil {
		source = scans
	}
	shutdown(server, source, state)

	log.Info("Server stopped gracefully")
}

type scanSource interface {
	Drain(timeout time.Duration) error
}

type flusher interface {
	Close()
}

// shutdown stops every producer of mutations before flushing pending writes,
// so no scan can land after the writer has closed
func shutdown(server *http.Server, scans scanSource, state flusher) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown error: %v", err)
	}

	if scans != nil {
		if err := scans.Drain(5 * time.Second); err != nil {
			log.Errorf("Scan bus drain error: %v", err)
		}
	}

	// Flush pending writes before the store connections close
	state.Close()
}

// newRouter builds the HTTP handler with the middleware stack
func newRouter(cfg *config.Config, logbook services.LogbookService) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.RequestLogger())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(config.CORS(cfg.CORSOrigins).Handler)
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	}

	handlers.NewHandler(logbook).SetRoutes(r)
	return r
}

// initBot initializes the Telegram bot
func initBot(ctx context.Context, cfg *config.Config, logbook services.LogbookService, notifier *bot.Notifier) error {
	b, err := bot.New(cfg.TelegramBotToken, cfg.AuthorizedChatID, logbook)
	if err != nil {
		return err
	}

	notifier.Attach(b)
	b.StartPolling(ctx)

	log.Info("Telegram Bot Initialized")
	return nil
}

// initScanBus connects to NATS and subscribes to reader scans
func initScanBus(cfg *config.Config, logbook services.ScanHandler) (*scanbus.Subscriber, error) {
	nc, err := scanbus.Connect(cfg.NATSURL, cfg.NATSToken)
	if err != nil {
		return nil, err
	}
	log.Infof("NATS connection established successfully %s", cfg.NATSURL)

	sub := scanbus.NewSubscriber(nc, cfg.NATSSubject, logbook, nfc.NewDebouncer(cfg.ScanDebounce))
	if err := sub.Start(); err != nil {
		nc.Close()
		return nil, err
	}
	return sub, nil
}

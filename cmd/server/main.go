package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatchai-pro/internal/advice"
	"dispatchai-pro/internal/config"
	"dispatchai-pro/internal/database"
	"dispatchai-pro/internal/dispatch"
	"dispatchai-pro/internal/events"
	"dispatchai-pro/internal/handlers"
	"dispatchai-pro/internal/hos"
	"dispatchai-pro/internal/middleware"
	"dispatchai-pro/internal/seed"
	"dispatchai-pro/internal/services"
	"dispatchai-pro/internal/store"
	"dispatchai-pro/internal/websocket"
	"dispatchai-pro/pkg/logger"
	"dispatchai-pro/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.Debug)
	defer log.Sync()

	log.Info("🚀 DISPATCHAI PRO BACKEND STARTING", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics("dispatchai", prometheus.DefaultRegisterer)

	fixture, err := loadFixture(cfg)
	if err != nil {
		log.Fatal("❌ Failed to load fleet fixture", "error", err)
	}

	data, err := loadStoreData(cfg, fixture, log)
	if err != nil {
		log.Fatal("❌ Failed to load fleet", "error", err)
	}
	st := store.New(data)
	log.Info("✅ Fleet loaded", "drivers", len(data.Drivers), "loads", len(data.Loads), "logs", len(data.DailyLogs))

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(st, log, m)
	go wsHub.Run(ctx)
	log.Info("✅ WebSocket hub started")

	bus := events.NewBus(log, m)
	bus.Add("websocket", wsHub)

	if cfg.RabbitMQURL != "" {
		mq, err := events.NewRabbitMQ(cfg.RabbitMQURL, cfg.RabbitMQExchange, log)
		if err != nil {
			log.Warn("⚠️  RabbitMQ unavailable (event exchange disabled)", "error", err)
		} else {
			defer mq.Close()
			bus.Add("rabbitmq", mq)
			log.Info("✅ RabbitMQ event exchange connected", "exchange", cfg.RabbitMQExchange)
		}
	}

	notifier := initFCM(ctx, cfg, st, log)

	var generator advice.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := advice.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
		if err != nil {
			log.Warn("⚠️  Failed to initialize Gemini (AI advice disabled)", "error", err)
		} else {
			generator = gemini
			log.Info("✅ Gemini advice enabled", "model", cfg.GeminiModel)
		}
	} else {
		log.Warn("⚠️  GEMINI_API_KEY not set (AI advice disabled)")
	}

	router := handlers.NewRouter(handlers.Deps{
		Store:    st,
		Auth:     middleware.NewAuthenticator(cfg.JWTSecret, log),
		Dispatch: dispatch.NewService(st, bus, notifier, m, log),
		Workflow: hos.NewWorkflow(st, bus, notifier, m, log),
		Advice:   advice.NewService(generator, cfg.AdviceTimeout, m, log),
		Events:   bus,
		Hub:      wsHub,
		Metrics:  promhttp.Handler(),
		Log:      log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("🌐 Server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // stops the hub and closes websocket clients
	<-wsHub.Done()

	log.Info("👋 Server stopped")
}

func loadFixture(cfg *config.Config) (*seed.Fixture, error) {
	if cfg.FixturePath != "" {
		return seed.LoadFile(cfg.FixturePath)
	}
	return seed.Default()
}

// loadStoreData seeds and reads PostgreSQL when DATABASE_URL is set, and
// otherwise runs on the fixture alone
func loadStoreData(cfg *config.Config, fixture *seed.Fixture, log logger.Logger) (store.Data, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("⚠️  DATABASE_URL not set, running on the demo fleet")
		return fixture.StoreData(bcrypt.DefaultCost)
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return store.Data{}, err
	}
	defer db.Close()

	if err := database.Migrate(db, log); err != nil {
		return store.Data{}, err
	}
	if err := database.SeedFleet(db, fixture, bcrypt.DefaultCost, log); err != nil {
		return store.Data{}, err
	}
	return database.LoadFleet(db)
}

// initFCM supports both a credentials file and base64-encoded credentials
func initFCM(ctx context.Context, cfg *config.Config, st *store.Store, log logger.Logger) events.Notifier {
	var (
		fcm *services.FCMService
		err error
	)
	switch {
	case cfg.FirebaseCredentialsBase64 != "":
		fcm, err = services.NewFCMServiceFromBase64(ctx, cfg.FirebaseCredentialsBase64, st, log)
	case cfg.FirebaseCredentialsFile != "":
		fcm, err = services.NewFCMService(ctx, cfg.FirebaseCredentialsFile, st, log)
	default:
		log.Warn("⚠️  Firebase credentials not set (push notifications disabled)")
		return events.NopNotifier
	}
	if err != nil {
		log.Warn("⚠️  Failed to initialize FCM (push notifications disabled)", "error", err)
		return events.NopNotifier
	}

	log.Info("✅ Firebase Cloud Messaging initialized")
	return fcm
}

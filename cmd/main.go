package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/synheart/emotion-go/internal/adapters/http/api"
	"github.com/synheart/emotion-go/internal/adapters/mqtt"
	"github.com/synheart/emotion-go/internal/adapters/publish"
	app "github.com/synheart/emotion-go/internal/app"
	"github.com/synheart/emotion-go/internal/config"
	"github.com/synheart/emotion-go/internal/domain/inference"
	"github.com/synheart/emotion-go/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Resolve the classifier: a configured model file wins over the
	// embedded default.
	classifier := inference.DefaultModel()
	if cfg.ModelPath != "" {
		classifier, err = inference.LoadModelFile(cfg.ModelPath)
		if err != nil {
			os.Stderr.WriteString("failed to load model: " + err.Error() + "\n")
			return
		}
		meta := classifier.Metadata()
		loggerInstance.Info(ctx, "loaded model from file",
			logger.String("path", cfg.ModelPath),
			logger.String("modelID", meta.ID),
		)
	}

	// Create and start the service with configuration options
	opts := []app.Option{
		app.WithLogger(loggerInstance),
		app.WithModel(classifier),
		app.WithWindow(secondsToDuration(cfg.WindowSeconds)),
		app.WithStep(secondsToDuration(cfg.StepSeconds)),
		app.WithMinRRCount(cfg.MinRRCount),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithHistorySize(cfg.HistorySize),
		app.WithPollInterval(time.Duration(cfg.PollIntervalMS) * time.Millisecond),
	}
	if cfg.HRBaseline != nil {
		opts = append(opts, app.WithHRBaseline(*cfg.HRBaseline))
	}
	if cfg.MaxBufferSamples > 0 {
		opts = append(opts, app.WithMaxBufferSamples(cfg.MaxBufferSamples))
	}
	if cfg.RedisAddr != "" {
		opts = append(opts, app.WithPublisher(publish.NewRedisPublisher(
			cfg.RedisAddr,
			publish.WithStream(cfg.RedisStream),
		)))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Optional MQTT ingest alongside HTTP.
	if cfg.MQTTBroker != "" {
		consumer := mqtt.NewConsumer(cfg.MQTTBroker, cfg.MQTTTopic, svc,
			mqtt.WithClientID(cfg.MQTTClientID),
		)
		if err := consumer.Start(ctx); err != nil {
			os.Stderr.WriteString("failed to start MQTT consumer: " + err.Error() + "\n")
			return
		}
		defer consumer.Stop()
	}

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

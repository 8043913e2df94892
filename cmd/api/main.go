package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/ngwafranklin/docintake/internal/adapters/http"
	"github.com/ngwafranklin/docintake/internal/bootstrap"
	"github.com/ngwafranklin/docintake/internal/config"
	"github.com/ngwafranklin/docintake/internal/observability/logging"
	"github.com/ngwafranklin/docintake/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	apiMetrics := metrics.NewHTTPServerMetrics("api")
	app.Ocr.SetMetrics(apiMetrics, "api")

	router := httpadapter.NewRouter(
		app.Ingest,
		app.Metadata,
		app.Processor,
		app.Batch,
		app.Detector,
		app.Exporter,
		httpadapter.RouterOptions{
			Metrics:        apiMetrics,
			Logger:         logger,
			RateLimitRPS:   cfg.APIRateLimitRPS,
			RateLimitBurst: cfg.APIRateLimitBurst,
			MaxConcurrent:  cfg.APIMaxConcurrent,
		},
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api.listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api.shutdown_error", "error", err)
	}
}

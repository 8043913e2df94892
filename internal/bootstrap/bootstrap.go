package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/ngwafranklin/docintake/internal/config"
	"github.com/ngwafranklin/docintake/internal/core/ports"
	"github.com/ngwafranklin/docintake/internal/core/usecase"
	"github.com/ngwafranklin/docintake/internal/infrastructure/classify"
	"github.com/ngwafranklin/docintake/internal/infrastructure/export/xlsx"
	"github.com/ngwafranklin/docintake/internal/infrastructure/extraction"
	"github.com/ngwafranklin/docintake/internal/infrastructure/ocr/azurevision"
	"github.com/ngwafranklin/docintake/internal/infrastructure/ocr/tesseract"
	natsqueue "github.com/ngwafranklin/docintake/internal/infrastructure/queue/nats"
	"github.com/ngwafranklin/docintake/internal/infrastructure/resilience"
	"github.com/ngwafranklin/docintake/internal/infrastructure/schema"
	"github.com/ngwafranklin/docintake/internal/infrastructure/storage/localfs"
)

// App wires the extraction pipeline once for both binaries; the api serves
// it over HTTP and the worker drives it from the queue.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue     ports.MessageQueue
	Detector  ports.TypeDetector
	Ingest    ports.DocumentIngestor
	Metadata  *usecase.MetadataService
	Ocr       *usecase.OcrOrchestrator
	Processor ports.DocumentProcessor
	Batch     *usecase.BatchProcessor
	Exporter  *xlsx.Exporter

	closeFn func()
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig(), logger)

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSQueuedSubject, cfg.NATSResultsSubject, natsqueue.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	registry, err := schema.NewRegistry()
	if err != nil {
		queue.Close()
		return nil, fmt.Errorf("load field schemas: %w", err)
	}

	detector := classify.NewDetector(logger)
	extractor := extraction.NewEngine(logger)
	filter := usecase.NewFilterValidator(registry, logger)
	metadata := usecase.NewMetadataService(detector, extractor, filter, logger)

	local := tesseract.NewEngine(tesseract.Config{
		Tesseract: cfg.TesseractPath,
		Pdftoppm:  cfg.PdftoppmPath,
		Languages: cfg.OCRLanguages,
		DPI:       cfg.OCRDPI,
		MaxPages:  cfg.OCRMaxPages,
	}, logger)

	// without remote credentials every document takes the local path
	var remote ports.OcrEngine = local
	if cfg.RemoteOCREnabled() {
		remote = azurevision.New(azurevision.Config{
			Endpoint:          cfg.AzureVisionEndpoint,
			APIKey:            cfg.AzureVisionKey,
			PollInterval:      cfg.AzureVisionPollInterval,
			PollTimeout:       cfg.AzureVisionPollTimeout,
			RequestsPerSecond: cfg.AzureVisionRPS,
		}, executor, logger)
	} else {
		logger.Warn("bootstrap.remote_ocr_disabled")
	}

	orchestrator := usecase.NewOcrOrchestrator(detector, local, remote, logger)
	processor := usecase.NewProcessor(detector, orchestrator, metadata, storage, queue, logger)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Queue:     queue,
		Detector:  detector,
		Ingest:    usecase.NewIngestService(storage, queue),
		Metadata:  metadata,
		Ocr:       orchestrator,
		Processor: processor,
		Batch:     usecase.NewBatchProcessor(processor, cfg.BatchWorkers, logger),
		Exporter:  xlsx.NewExporter(logger),

		closeFn: queue.Close,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ngwafranklin/docintake/internal/core/domain"
	"github.com/ngwafranklin/docintake/internal/core/ports"
)

// Processor runs the end-to-end pipeline for one document: OCR via the
// orchestrator, then the metadata service. One document's failure is
// contained in its own result and never aborts the processing of others.
type Processor struct {
	detector ports.TypeDetector
	ocr      *OcrOrchestrator
	metadata *MetadataService
	storage  ports.ObjectStorage
	queue    ports.MessageQueue
	logger   *slog.Logger
}

func NewProcessor(
	detector ports.TypeDetector,
	ocr *OcrOrchestrator,
	metadata *MetadataService,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		detector: detector,
		ocr:      ocr,
		metadata: metadata,
		storage:  storage,
		queue:    queue,
		logger:   logger,
	}
}

// ProcessBytes runs the pipeline over in-memory document bytes. The result
// is always well formed: when OCR yields nothing usable, the metadata record
// explains that in RawText and carries empty field lists.
func (p *Processor) ProcessBytes(ctx context.Context, data []byte, fileName string, isPDF bool) domain.DocumentResult {
	docType := p.detector.Detect(fileName)

	rawText := p.ocr.ProcessDocumentWithType(ctx, data, fileName, isPDF, docType)
	if !domain.IsUsableText(rawText) {
		p.logger.Warn("processor.no_text", "file_name", fileName, "document_type", docType.String())
		rawText = domain.NoTextMessage
	}

	metadata := p.metadata.ExtractMetadata(rawText, fileName)
	validation := p.metadata.Validate(metadata, docType)

	return domain.DocumentResult{
		FileName:          fileName,
		Metadata:          metadata,
		Validation:        validation,
		RecommendedEngine: p.ocr.RecommendedEngine(docType),
	}
}

// ProcessStored handles one queued document: load its bytes from object
// storage, run the pipeline, publish the result record.
func (p *Processor) ProcessStored(ctx context.Context, doc domain.Document) error {
	reader, err := p.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return domain.WrapError(domain.ErrDocumentNotFound, "open stored document", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read stored document: %w", err)
	}

	result := p.ProcessBytes(ctx, data, doc.Filename, doc.IsPDF)
	result.DocumentID = doc.ID

	if err := p.queue.PublishResult(ctx, result); err != nil {
		return fmt.Errorf("publish document result: %w", err)
	}
	p.logger.Info("processor.done",
		"document_id", doc.ID,
		"file_name", doc.Filename,
		"is_valid", result.Validation.IsValid,
	)
	return nil
}

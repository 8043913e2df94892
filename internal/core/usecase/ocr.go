package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/ngwafranklin/docintake/internal/core/domain"
	"github.com/ngwafranklin/docintake/internal/core/ports"
)

// OcrMetrics receives backend call outcomes. Implementations must be safe
// for concurrent use.
type OcrMetrics interface {
	RecordOCRRequest(service, engine string, err error, duration time.Duration)
	RecordOCRFallback(service string)
}

// handwrittenTypes routes to the remote engine: the enrollment form is
// filled by hand, and Unknown conservatively gets the more capable backend
// since the content cannot be predicted from the filename.
var handwrittenTypes = map[domain.DocumentType]bool{
	domain.DocumentTypeFormulaireAgregeOM: true,
	domain.DocumentTypeUnknown:            true,
}

// OcrOrchestrator selects an OCR backend per document type and degrades
// remote failures to the local engine. Backend errors never cross its
// boundary: the worst outcome is an error-text sentinel.
type OcrOrchestrator struct {
	detector ports.TypeDetector
	local    ports.OcrEngine
	remote   ports.OcrEngine
	logger   *slog.Logger

	metrics OcrMetrics
	service string
}

func NewOcrOrchestrator(
	detector ports.TypeDetector,
	local ports.OcrEngine,
	remote ports.OcrEngine,
	logger *slog.Logger,
) *OcrOrchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &OcrOrchestrator{
		detector: detector,
		local:    local,
		remote:   remote,
		logger:   logger,
	}
}

// SetMetrics installs a backend-call recorder; service labels every record.
func (o *OcrOrchestrator) SetMetrics(m OcrMetrics, service string) {
	o.metrics = m
	o.service = service
}

// ShouldUseRemoteOcr reports whether a type routes to the remote backend.
func (o *OcrOrchestrator) ShouldUseRemoteOcr(docType domain.DocumentType) bool {
	return handwrittenTypes[docType]
}

// RecommendedEngine names the backend the routing rule would pick for a
// type. Purely descriptive, for client display.
func (o *OcrOrchestrator) RecommendedEngine(docType domain.DocumentType) string {
	if o.ShouldUseRemoteOcr(docType) {
		return o.remote.Name()
	}
	return o.local.Name()
}

// ProcessDocument classifies the document by filename and extracts its text.
func (o *OcrOrchestrator) ProcessDocument(ctx context.Context, data []byte, fileName string, isPDF bool) string {
	return o.ProcessDocumentWithType(ctx, data, fileName, isPDF, o.detector.Detect(fileName))
}

// ProcessDocumentWithType bypasses classification and routes on the
// caller-supplied type. Remote failures (error, blank output, or an
// error-prefixed result) fall back to the local engine on the same bytes;
// the remote error is not propagated when the fallback succeeds.
func (o *OcrOrchestrator) ProcessDocumentWithType(ctx context.Context, data []byte, fileName string, isPDF bool, docType domain.DocumentType) string {
	if !o.ShouldUseRemoteOcr(docType) {
		return o.runLocal(ctx, data, fileName, isPDF)
	}

	start := time.Now()
	text, err := o.remote.Recognize(ctx, data, isPDF)
	o.recordRequest(o.remote.Name(), err, time.Since(start))
	if err == nil && domain.IsUsableText(text) {
		return text
	}
	o.recordFallback()
	o.logger.Warn("ocr.remote_fallback",
		"file_name", fileName,
		"document_type", docType.String(),
		"engine", o.remote.Name(),
		"error", err,
	)
	return o.runLocal(ctx, data, fileName, isPDF)
}

func (o *OcrOrchestrator) runLocal(ctx context.Context, data []byte, fileName string, isPDF bool) string {
	start := time.Now()
	text, err := o.local.Recognize(ctx, data, isPDF)
	o.recordRequest(o.local.Name(), err, time.Since(start))
	if err != nil {
		o.logger.Error("ocr.local_failed",
			"file_name", fileName,
			"engine", o.local.Name(),
			"error", err,
		)
		return domain.OcrErrorPrefix + " " + err.Error()
	}
	return text
}

func (o *OcrOrchestrator) recordRequest(engine string, err error, duration time.Duration) {
	if o.metrics != nil {
		o.metrics.RecordOCRRequest(o.service, engine, err, duration)
	}
}

func (o *OcrOrchestrator) recordFallback() {
	if o.metrics != nil {
		o.metrics.RecordOCRFallback(o.service)
	}
}

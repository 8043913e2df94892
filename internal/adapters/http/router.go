package httpadapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ngwafranklin/docintake/internal/core/domain"
	"github.com/ngwafranklin/docintake/internal/core/ports"
	"github.com/ngwafranklin/docintake/internal/core/usecase"
	"github.com/ngwafranklin/docintake/internal/infrastructure/export/xlsx"
	"github.com/ngwafranklin/docintake/internal/observability/metrics"
)

const (
	maxUploadBytes = 32 << 20 // per file
	maxBatchFiles  = 50

	serviceName = "api"
)

type Router struct {
	ingestor  ports.DocumentIngestor
	metadata  *usecase.MetadataService
	processor ports.DocumentProcessor
	batch     *usecase.BatchProcessor
	detector  ports.TypeDetector
	exporter  *xlsx.Exporter
	metrics   *metrics.HTTPServerMetrics
	logger    *slog.Logger

	rateLimitRPS   float64
	rateLimitBurst int
	maxConcurrent  int
}

type RouterOptions struct {
	Metrics        *metrics.HTTPServerMetrics
	Logger         *slog.Logger
	RateLimitRPS   float64
	RateLimitBurst int
	MaxConcurrent  int
}

func NewRouter(
	ingestor ports.DocumentIngestor,
	metadata *usecase.MetadataService,
	processor ports.DocumentProcessor,
	batch *usecase.BatchProcessor,
	detector ports.TypeDetector,
	exporter *xlsx.Exporter,
	options RouterOptions,
) *Router {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		ingestor:       ingestor,
		metadata:       metadata,
		processor:      processor,
		batch:          batch,
		detector:       detector,
		exporter:       exporter,
		metrics:        options.Metrics,
		logger:         logger,
		rateLimitRPS:   options.RateLimitRPS,
		rateLimitBurst: options.RateLimitBurst,
		maxConcurrent:  options.MaxConcurrent,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("POST /v1/documents/extract", rt.extractDocument)
	mux.HandleFunc("POST /v1/documents/batch", rt.batchDocuments)
	mux.HandleFunc("POST /v1/metadata", rt.extractFromText)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.maxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.maxConcurrent, 100*time.Millisecond)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler, rt.logger)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// uploadDocument stores the file and queues it for asynchronous processing.
func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	file, header, err := rt.formFile(w, r)
	if err != nil {
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if len(data) > maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("file exceeds upload limit"))
		return
	}

	doc, err := rt.ingestor.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), bytes.NewReader(data))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

// extractDocument runs the full pipeline synchronously and returns the result.
func (rt *Router) extractDocument(w http.ResponseWriter, r *http.Request) {
	file, header, err := rt.formFile(w, r)
	if err != nil {
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if len(data) > maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("file exceeds upload limit"))
		return
	}

	isPDF := usecase.IsPDFUpload(header.Filename, header.Header.Get("Content-Type"))
	result := rt.processor.ProcessBytes(r.Context(), data, header.Filename, isPDF)
	rt.recordResult(result)
	writeJSON(w, http.StatusOK, result)
}

// batchDocuments processes every uploaded file and answers with per-file
// results in upload order, as JSON or as an XLSX workbook.
func (rt *Router) batchDocuments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid multipart request"))
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("multipart field 'files' is required"))
		return
	}
	if len(files) > maxBatchFiles {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(fmt.Sprintf("too many files, limit is %d", maxBatchFiles)))
		return
	}

	inputs := make([]usecase.BatchInput, 0, len(files))
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("open %q: file unreadable", header.Filename)))
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
		f.Close()
		if err != nil || len(data) > maxUploadBytes {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(fmt.Sprintf("%q exceeds upload limit", header.Filename)))
			return
		}
		inputs = append(inputs, usecase.BatchInput{
			FileName: header.Filename,
			Data:     data,
			IsPDF:    usecase.IsPDFUpload(header.Filename, header.Header.Get("Content-Type")),
		})
	}

	results := rt.batch.ProcessBatch(r.Context(), inputs)
	if rt.metrics != nil {
		rt.metrics.RecordBatch(serviceName, len(inputs))
	}
	for _, result := range results {
		rt.recordResult(result)
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "xlsx") {
		workbook, err := rt.exporter.Export(results)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="documents.xlsx"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(workbook)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// extractFromText runs classification, extraction, filtering and validation
// over caller-supplied OCR text, skipping the OCR stage.
func (rt *Router) extractFromText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RawText  string `json:"raw_text"`
		FileName string `json:"file_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}
	if strings.TrimSpace(req.FileName) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("file_name is required"))
		return
	}

	docType := rt.detector.Detect(req.FileName)
	metadata := rt.metadata.ExtractMetadata(req.RawText, req.FileName)
	validation := rt.metadata.Validate(metadata, docType)
	summary := rt.metadata.Summary(metadata, docType)

	writeJSON(w, http.StatusOK, map[string]any{
		"metadata":   metadata,
		"validation": validation,
		"summary":    summary,
	})
}

// recordResult feeds one pipeline outcome into the document metrics.
func (rt *Router) recordResult(result domain.DocumentResult) {
	if rt.metrics == nil {
		return
	}
	nonEmpty := 0
	if result.Metadata != nil {
		nonEmpty = result.Metadata.NonEmptyFieldCount()
	}
	docType := rt.detector.Detect(result.FileName)
	rt.metrics.RecordDocument(serviceName, docType.String(), result.Validation.IsValid, nonEmpty)
}

func (rt *Router) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("multipart field 'file' is required"))
		return nil, nil, err
	}
	return file, header, nil
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		rt.logger.Error("http.handler_error",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

package ports

import (
	"context"
	"io"

	"github.com/ngwafranklin/docintake/internal/core/domain"
)

// TypeDetector classifies a document by its filename.
type TypeDetector interface {
	Detect(fileName string) domain.DocumentType
}

// FieldExtractor runs the per-type extraction routine over raw OCR text.
type FieldExtractor interface {
	Extract(rawText string, docType domain.DocumentType) domain.FieldSet
}

// SchemaRegistry answers which fields are allowed and which are critical for
// a document type.
type SchemaRegistry interface {
	FieldsFor(t domain.DocumentType) map[string]struct{}
	CriticalFieldsFor(t domain.DocumentType) []string
	HasSchema(t domain.DocumentType) bool
}

// OcrEngine turns document bytes into raw text. Implementations report
// failures as errors; they never return structured content disguised as text.
type OcrEngine interface {
	Recognize(ctx context.Context, data []byte, isPDF bool) (string, error)
	Name() string
}

// ObjectStorage stores uploaded source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue carries queued-document events to the worker and processed
// results back out. It is transport, not persistence.
type MessageQueue interface {
	PublishDocumentQueued(ctx context.Context, doc domain.Document) error
	SubscribeDocumentQueued(ctx context.Context, handler func(context.Context, domain.Document) error) error
	PublishResult(ctx context.Context, result domain.DocumentResult) error
}

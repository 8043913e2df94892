package ports

import (
	"context"
	"io"

	"github.com/ngwafranklin/docintake/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// MetadataExtractor is the inbound contract for the text-to-metadata pipeline.
type MetadataExtractor interface {
	ExtractMetadata(rawText, fileName string) *domain.DocumentMetadata
	Summary(metadata *domain.DocumentMetadata, docType domain.DocumentType) domain.MetadataSummary
}

// DocumentProcessor runs the full pipeline (OCR included) for one document.
type DocumentProcessor interface {
	ProcessBytes(ctx context.Context, data []byte, fileName string, isPDF bool) domain.DocumentResult
	ProcessStored(ctx context.Context, doc domain.Document) error
}

package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ngwafranklin/docintake/internal/core/domain"
	"github.com/ngwafranklin/docintake/internal/core/ports"
)

// IngestService stores uploaded document bytes and queues them for the
// worker. Extraction results are not persisted anywhere; the queue message
// carries the whole intake record.
type IngestService struct {
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestService(storage ports.ObjectStorage, queue ports.MessageQueue) *IngestService {
	return &IngestService{storage: storage, queue: queue}
}

func (s *IngestService) Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := s.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := domain.Document{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		IsPDF:       IsPDFUpload(filename, mimeType),
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.queue.PublishDocumentQueued(ctx, doc); err != nil {
		return nil, fmt.Errorf("publish queued document: %w", err)
	}
	return &doc, nil
}

// IsPDFUpload decides the OCR input path from the upload's extension, with
// the declared content type as a tie-break for extension-less names.
func IsPDFUpload(filename, mimeType string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".pdf" {
		return true
	}
	if ext != "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(mimeType), "application/pdf")
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}

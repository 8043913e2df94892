package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ngwafranklin/docintake/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeDetector struct {
	result domain.DocumentType
	byName map[string]domain.DocumentType
}

func (f *fakeDetector) Detect(fileName string) domain.DocumentType {
	if t, ok := f.byName[fileName]; ok {
		return t
	}
	return f.result
}

type fakeExtractor struct {
	fields   domain.FieldSet
	lastText string
	lastType domain.DocumentType
}

func (f *fakeExtractor) Extract(rawText string, docType domain.DocumentType) domain.FieldSet {
	f.lastText = rawText
	f.lastType = docType
	if f.fields == nil {
		return domain.FieldSet{}
	}
	return f.fields
}

// fakeRegistry serves a fixed schema for every known type.
type fakeRegistry struct {
	fields   []string
	critical []string
}

func (f *fakeRegistry) FieldsFor(domain.DocumentType) map[string]struct{} {
	out := make(map[string]struct{}, len(f.fields))
	for _, name := range f.fields {
		out[name] = struct{}{}
	}
	return out
}

func (f *fakeRegistry) CriticalFieldsFor(domain.DocumentType) []string {
	return append([]string(nil), f.critical...)
}

func (f *fakeRegistry) HasSchema(t domain.DocumentType) bool {
	return t != domain.DocumentTypeUnknown
}

type fakeEngine struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeEngine) Recognize(_ context.Context, _ []byte, _ bool) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeEngine) Name() string { return f.name }

// fakeOcrMetrics records engine calls as "engine:outcome" strings.
type fakeOcrMetrics struct {
	requests  []string
	fallbacks int
}

func (f *fakeOcrMetrics) RecordOCRRequest(_, engine string, err error, _ time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	f.requests = append(f.requests, engine+":"+outcome)
}

func (f *fakeOcrMetrics) RecordOCRFallback(string) { f.fallbacks++ }

type fakeStorage struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (f *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[key] = b
	return nil
}

func (f *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.files[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

type fakeQueue struct {
	mu         sync.Mutex
	queued     []domain.Document
	results    []domain.DocumentResult
	publishErr error
}

func (f *fakeQueue) PublishDocumentQueued(_ context.Context, doc domain.Document) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued = append(f.queued, doc)
	return nil
}

func (f *fakeQueue) SubscribeDocumentQueued(context.Context, func(context.Context, domain.Document) error) error {
	return nil
}

func (f *fakeQueue) PublishResult(_ context.Context, result domain.DocumentResult) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result)
	return nil
}

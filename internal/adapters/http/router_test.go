package httpadapter

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ngwafranklin/docintake/internal/core/domain"
	"github.com/ngwafranklin/docintake/internal/core/usecase"
	"github.com/ngwafranklin/docintake/internal/infrastructure/export/xlsx"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeIngestor struct {
	doc *domain.Document
	err error
}

func (f *fakeIngestor) Upload(_ context.Context, filename, mimeType string, _ io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.doc != nil {
		return f.doc, nil
	}
	return &domain.Document{
		ID:       "doc-1",
		Filename: filename,
		MimeType: mimeType,
		Status:   domain.StatusUploaded,
	}, nil
}

type fakeProcessor struct{}

func (fakeProcessor) ProcessBytes(_ context.Context, _ []byte, fileName string, _ bool) domain.DocumentResult {
	metadata := &domain.DocumentMetadata{DocumentName: "Registre de Commerce"}
	metadata.SetField(domain.FieldRccmNumbers, []string{"RC/YAO/2020/B/1234"})
	return domain.DocumentResult{
		FileName:          fileName,
		Metadata:          metadata,
		Validation:        domain.ValidationResult{IsValid: true, Messages: []string{}},
		RecommendedEngine: "tesseract",
	}
}

func (fakeProcessor) ProcessStored(context.Context, domain.Document) error { return nil }

type fakeDetector struct {
	result domain.DocumentType
}

func (f *fakeDetector) Detect(string) domain.DocumentType { return f.result }

type fakeExtractor struct {
	fields domain.FieldSet
}

func (f *fakeExtractor) Extract(string, domain.DocumentType) domain.FieldSet {
	if f.fields == nil {
		return domain.FieldSet{}
	}
	return f.fields
}

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

type routerConfig struct {
	ingestor *fakeIngestor
	detector *fakeDetector
	options  RouterOptions
}

func newTestRouter(cfg routerConfig) *Router {
	if cfg.ingestor == nil {
		cfg.ingestor = &fakeIngestor{}
	}
	if cfg.detector == nil {
		cfg.detector = &fakeDetector{result: domain.DocumentTypeRegistreCommerce}
	}
	if cfg.options.Logger == nil {
		cfg.options.Logger = testLogger()
	}
	registry := &fakeRegistry{
		fields:   []string{domain.FieldRccmNumbers, domain.FieldBusinessNames},
		critical: []string{domain.FieldRccmNumbers},
	}
	extractor := &fakeExtractor{fields: domain.FieldSet{
		domain.FieldRccmNumbers: {"RC/YAO/2020/B/1234"},
	}}
	metadata := usecase.NewMetadataService(
		cfg.detector,
		extractor,
		usecase.NewFilterValidator(registry, testLogger()),
		testLogger(),
	)
	processor := fakeProcessor{}
	batch := usecase.NewBatchProcessor(processor, 2, testLogger())

	return NewRouter(
		cfg.ingestor,
		metadata,
		processor,
		batch,
		cfg.detector,
		xlsx.NewExporter(testLogger()),
		cfg.options,
	)
}

// multipartBody builds a multipart request body with the named files under
// the given field.
func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := writer.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, writer.FormDataContentType()
}

func doRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

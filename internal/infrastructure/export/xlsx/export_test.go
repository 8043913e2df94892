package xlsx

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ngwafranklin/docintake/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleResult() domain.DocumentResult {
	metadata := &domain.DocumentMetadata{
		DocumentName: "Registre de Commerce",
		DocumentType: "Registre de commerce",
	}
	metadata.SetField(domain.FieldRccmNumbers, []string{"RC/YAO/2020/B/1234"})
	metadata.SetField(domain.FieldBusinessNames, []string{"ETS KAMGA", "KAMGA ET FILS"})
	return domain.DocumentResult{
		FileName:          "registre_commerce.pdf",
		Metadata:          metadata,
		Validation:        domain.ValidationResult{IsValid: true, Messages: []string{}},
		RecommendedEngine: "tesseract",
	}
}

func TestExportProducesReadableWorkbook(t *testing.T) {
	e := NewExporter(testLogger())

	data, err := e.Export([]domain.DocumentResult{sampleResult()})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1 data row", len(rows))
	}
	if rows[0][0] != "File Name" {
		t.Errorf("first header = %q", rows[0][0])
	}
	if rows[1][0] != "registre_commerce.pdf" {
		t.Errorf("file name cell = %q", rows[1][0])
	}

	// multi-value fields join with "; " in one cell
	found := false
	for _, cell := range rows[1] {
		if cell == "ETS KAMGA; KAMGA ET FILS" {
			found = true
		}
	}
	if !found {
		t.Errorf("joined business names not found in row: %v", rows[1])
	}
}

func TestExportHeaderCoversVocabulary(t *testing.T) {
	e := NewExporter(testLogger())

	data, err := e.Export(nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want header only", len(rows))
	}
	if want := 7 + len(domain.FieldVocabulary()); len(rows[0]) != want {
		t.Errorf("header has %d columns, want %d", len(rows[0]), want)
	}
}

func TestExportFailedDocumentRow(t *testing.T) {
	e := NewExporter(testLogger())

	result := domain.DocumentResult{
		FileName:   "broken.pdf",
		Validation: domain.ValidationResult{IsValid: false, Messages: []string{"missing critical field"}},
		Error:      "context deadline exceeded",
	}
	data, err := e.Export([]domain.DocumentResult{result})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, _ := f.GetRows(sheet)
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[1][0] != "broken.pdf" {
		t.Errorf("file name = %q", rows[1][0])
	}
}

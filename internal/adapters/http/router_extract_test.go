package httpadapter

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ngwafranklin/docintake/internal/core/domain"
)

func TestExtractDocumentSynchronous(t *testing.T) {
	handler := newTestRouter(routerConfig{}).Handler()

	body, contentType := multipartBody(t, "file", map[string]string{"registre_commerce.jpg": "img"})
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/extract", body)
	req.Header.Set("Content-Type", contentType)

	res := doRequest(handler, req)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", res.Code, res.Body.String())
	}

	var result domain.DocumentResult
	if err := json.Unmarshal(res.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.FileName != "registre_commerce.jpg" {
		t.Errorf("file name = %q", result.FileName)
	}
	if !result.Validation.IsValid {
		t.Errorf("validation = %v", result.Validation)
	}
	if result.RecommendedEngine != "tesseract" {
		t.Errorf("engine = %q", result.RecommendedEngine)
	}
}

func TestBatchDocumentsKeepsOrder(t *testing.T) {
	handler := newTestRouter(routerConfig{}).Handler()

	// map iteration order is random, so send two known files and check by name
	body, contentType := multipartBody(t, "files", map[string]string{
		"first.pdf":  "a",
		"second.jpg": "b",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/batch", body)
	req.Header.Set("Content-Type", contentType)

	res := doRequest(handler, req)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", res.Code, res.Body.String())
	}

	var results []domain.DocumentResult
	if err := json.Unmarshal(res.Body.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	names := map[string]bool{}
	for _, r := range results {
		names[r.FileName] = true
	}
	if !names["first.pdf"] || !names["second.jpg"] {
		t.Errorf("result names = %v", names)
	}
}

func TestBatchDocumentsMissingFiles(t *testing.T) {
	handler := newTestRouter(routerConfig{}).Handler()

	body, contentType := multipartBody(t, "file", map[string]string{"wrong-field.pdf": "x"})
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/batch", body)
	req.Header.Set("Content-Type", contentType)

	res := doRequest(handler, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", res.Code)
	}
}

func TestBatchDocumentsXLSXFormat(t *testing.T) {
	handler := newTestRouter(routerConfig{}).Handler()

	body, contentType := multipartBody(t, "files", map[string]string{"doc.pdf": "x"})
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/batch?format=xlsx", body)
	req.Header.Set("Content-Type", contentType)

	res := doRequest(handler, req)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", res.Code, res.Body.String())
	}
	if got := res.Header().Get("Content-Type"); got != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("content type = %q", got)
	}

	f, err := excelize.OpenReader(bytes.NewReader(res.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a readable workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Documents")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("workbook rows = %d, want header + 1", len(rows))
	}
}

func TestExtractFromText(t *testing.T) {
	handler := newTestRouter(routerConfig{}).Handler()

	payload := `{"raw_text":"REGISTRE DE COMMERCE RC/YAO/2020/B/1234","file_name":"registre_commerce.pdf"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/metadata", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")

	res := doRequest(handler, req)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", res.Code, res.Body.String())
	}

	var response struct {
		Metadata   *domain.DocumentMetadata `json:"metadata"`
		Validation domain.ValidationResult  `json:"validation"`
		Summary    domain.MetadataSummary   `json:"summary"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &response); err != nil {
		t.Fatal(err)
	}
	if got := response.Metadata.RccmNumbers; len(got) != 1 || got[0] != "RC/YAO/2020/B/1234" {
		t.Errorf("rccm_numbers = %v", got)
	}
	if !response.Validation.IsValid {
		t.Errorf("validation = %v", response.Validation)
	}
	if response.Summary.TotalFields != len(domain.FieldVocabulary()) {
		t.Errorf("summary total fields = %d", response.Summary.TotalFields)
	}
}

func TestExtractFromTextRequiresFileName(t *testing.T) {
	handler := newTestRouter(routerConfig{}).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/metadata", bytes.NewBufferString(`{"raw_text":"text"}`))
	res := doRequest(handler, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", res.Code)
	}
}

func TestExtractFromTextInvalidJSON(t *testing.T) {
	handler := newTestRouter(routerConfig{}).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/metadata", bytes.NewBufferString("{"))
	res := doRequest(handler, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", res.Code)
	}
}

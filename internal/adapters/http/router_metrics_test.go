package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ngwafranklin/docintake/internal/observability/metrics"
)

func TestMetricsEndpointReportsPipelineActivity(t *testing.T) {
	handler := newTestRouter(routerConfig{
		options: RouterOptions{Metrics: metrics.NewHTTPServerMetrics("api")},
	}).Handler()

	body, contentType := multipartBody(t, "file", map[string]string{"registre.jpg": "scan bytes"})
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/extract", body)
	req.Header.Set("Content-Type", contentType)
	if res := doRequest(handler, req); res.Code != http.StatusOK {
		t.Fatalf("extract status = %d, body %s", res.Code, res.Body.String())
	}

	batchBody, batchType := multipartBody(t, "files", map[string]string{"a.jpg": "x", "b.jpg": "y"})
	req = httptest.NewRequest(http.MethodPost, "/v1/documents/batch", batchBody)
	req.Header.Set("Content-Type", batchType)
	if res := doRequest(handler, req); res.Code != http.StatusOK {
		t.Fatalf("batch status = %d, body %s", res.Code, res.Body.String())
	}

	res := doRequest(handler, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", res.Code)
	}
	exposition := res.Body.String()

	// one extract run plus two batch documents, all valid RegistreCommerce
	if !strings.Contains(exposition,
		`docintake_pipeline_documents_total{document_type="registre_commerce",service="api",valid="true"} 3`) {
		t.Errorf("documents counter missing or wrong:\n%s", exposition)
	}
	if !strings.Contains(exposition, `docintake_pipeline_batch_size_count{service="api"} 1`) {
		t.Errorf("batch size histogram missing:\n%s", exposition)
	}
	if !strings.Contains(exposition, "docintake_pipeline_non_empty_fields_count") {
		t.Errorf("non-empty-fields histogram missing:\n%s", exposition)
	}
}

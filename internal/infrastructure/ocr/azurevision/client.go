package azurevision

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ngwafranklin/docintake/internal/infrastructure/resilience"
)

// Config holds the connection setup for the Azure Computer Vision Read API.
type Config struct {
	Endpoint string
	APIKey   string

	// PollInterval is the wait between result polls, default 1s.
	PollInterval time.Duration
	// PollTimeout bounds the whole analyze-then-poll cycle, default 60s.
	PollTimeout time.Duration
	// RequestsPerSecond throttles submissions to stay inside the API quota,
	// default 2.
	RequestsPerSecond float64
}

// Client is the remote OCR backend for handwritten and unclassified
// documents. It drives the asynchronous Read flow: submit the document,
// then poll the operation until the text is ready.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	exec       *resilience.Executor
	logger     *slog.Logger
}

func New(cfg Config, exec *resilience.Executor, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 60 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		exec:       exec,
		logger:     logger,
	}
}

func (c *Client) Name() string { return "azure-vision" }

func (c *Client) Recognize(ctx context.Context, data []byte, isPDF bool) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("azure-vision: empty document")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.PollTimeout)
	defer cancel()

	var text string
	err := c.exec.Execute(ctx, "azure_vision.read", func(ctx context.Context) error {
		// inside the retry loop so every submission consumes a token
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("azure-vision: rate limit wait: %w", err)
		}
		operationURL, err := c.submit(ctx, data, isPDF)
		if err != nil {
			return err
		}
		result, err := c.poll(ctx, operationURL)
		if err != nil {
			return err
		}
		text = assembleText(result)
		return nil
	}, classifyAzureError)
	if err != nil {
		return "", err
	}
	return text, nil
}

// submit sends the document bytes to the analyze endpoint and returns the
// operation URL Azure hands back for polling.
func (c *Client) submit(ctx context.Context, data []byte, isPDF bool) (string, error) {
	contentType := "application/octet-stream"
	if isPDF {
		contentType = "application/pdf"
	}
	location, err := c.postBinary(ctx, "/vision/v3.2/read/analyze", contentType, data, "analyze")
	if err != nil {
		return "", err
	}
	if location == "" {
		return "", fmt.Errorf("azure-vision: analyze response missing Operation-Location")
	}
	return location, nil
}

func (c *Client) poll(ctx context.Context, operationURL string) (*readResult, error) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		var result readResult
		if err := c.getJSON(ctx, operationURL, &result, "read_result"); err != nil {
			return nil, err
		}

		switch result.Status {
		case "succeeded":
			return &result, nil
		case "failed":
			return nil, fmt.Errorf("azure-vision: read operation failed")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

type readResult struct {
	Status        string `json:"status"`
	AnalyzeResult struct {
		ReadResults []struct {
			Page  int `json:"page"`
			Lines []struct {
				Text string `json:"text"`
			} `json:"lines"`
		} `json:"readResults"`
	} `json:"analyzeResult"`
}

// assembleText flattens recognized lines, with page markers once the
// document spans more than one page so the output matches the local engine.
func assembleText(result *readResult) string {
	pages := result.AnalyzeResult.ReadResults
	var b strings.Builder
	for i, page := range pages {
		var lines []string
		for _, line := range page.Lines {
			if text := strings.TrimSpace(line.Text); text != "" {
				lines = append(lines, text)
			}
		}
		if len(lines) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		if len(pages) > 1 {
			number := page.Page
			if number <= 0 {
				number = i + 1
			}
			fmt.Fprintf(&b, "--- Page %d ---\n", number)
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	return b.String()
}

package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIPort  string
	LogLevel string

	NATSURL            string
	NATSQueuedSubject  string
	NATSResultsSubject string

	StoragePath string

	TesseractPath string
	PdftoppmPath  string
	OCRLanguages  string
	OCRDPI        int
	OCRMaxPages   int

	AzureVisionEndpoint     string
	AzureVisionKey          string
	AzureVisionPollInterval time.Duration
	AzureVisionPollTimeout  time.Duration
	AzureVisionRPS          float64

	BatchWorkers int

	APIRateLimitRPS   float64
	APIRateLimitBurst int
	APIMaxConcurrent  int

	WorkerMetricsPort string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		NATSURL:            mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSQueuedSubject:  mustEnv("NATS_QUEUED_SUBJECT", "documents.queued"),
		NATSResultsSubject: mustEnv("NATS_RESULTS_SUBJECT", "documents.results"),

		StoragePath: mustEnv("STORAGE_PATH", "./data/documents"),

		TesseractPath: mustEnv("TESSERACT_PATH", "tesseract"),
		PdftoppmPath:  mustEnv("PDFTOPPM_PATH", "pdftoppm"),
		OCRLanguages:  mustEnv("OCR_LANGUAGES", "fra+eng"),
		OCRDPI:        mustEnvInt("OCR_DPI", 300),
		OCRMaxPages:   mustEnvInt("OCR_MAX_PAGES", 20),

		AzureVisionEndpoint:     mustEnv("AZURE_VISION_ENDPOINT", ""),
		AzureVisionKey:          mustEnv("AZURE_VISION_KEY", ""),
		AzureVisionPollInterval: mustEnvDuration("AZURE_VISION_POLL_INTERVAL", time.Second),
		AzureVisionPollTimeout:  mustEnvDuration("AZURE_VISION_POLL_TIMEOUT", 60*time.Second),
		AzureVisionRPS:          mustEnvFloat("AZURE_VISION_RPS", 2),

		BatchWorkers: mustEnvInt("BATCH_WORKERS", 4),

		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 10),
		APIMaxConcurrent:  mustEnvInt("API_MAX_CONCURRENT", 0),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

// RemoteOCREnabled reports whether the Azure backend is configured; without
// it every document routes to the local engine.
func (c Config) RemoteOCREnabled() bool {
	return c.AzureVisionEndpoint != "" && c.AzureVisionKey != ""
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

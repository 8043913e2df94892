package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ngwafranklin/docintake/internal/core/domain"
	"github.com/ngwafranklin/docintake/internal/core/ports"
)

const defaultBatchWorkers = 4

// BatchInput is one document of a batch request, already read into memory.
type BatchInput struct {
	FileName string
	Data     []byte
	IsPDF    bool
}

// BatchProcessor fans a batch of documents over a bounded worker pool.
// Results keep the input order regardless of completion order, and one
// document cannot fail the batch.
type BatchProcessor struct {
	processor ports.DocumentProcessor
	workers   int
	logger    *slog.Logger
}

func NewBatchProcessor(processor ports.DocumentProcessor, workers int, logger *slog.Logger) *BatchProcessor {
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{processor: processor, workers: workers, logger: logger}
}

// ProcessBatch runs the full pipeline for each input and returns one result
// per input, in input order.
func (b *BatchProcessor) ProcessBatch(ctx context.Context, inputs []BatchInput) []domain.DocumentResult {
	results := make([]domain.DocumentResult, len(inputs))
	if len(inputs) == 0 {
		return results
	}

	workers := b.workers
	if workers > len(inputs) {
		workers = len(inputs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				in := inputs[i]
				if err := ctx.Err(); err != nil {
					results[i] = domain.DocumentResult{FileName: in.FileName, Error: err.Error()}
					continue
				}
				results[i] = b.processor.ProcessBytes(ctx, in.Data, in.FileName, in.IsPDF)
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	b.logger.Info("batch.done", "documents", len(inputs), "workers", workers)
	return results
}

package imports

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"go.uber.org/zap"

	"github.com/acme/product-importer/internal/events"
	"github.com/acme/product-importer/internal/notifier"
	"github.com/acme/product-importer/internal/store"
	"github.com/acme/product-importer/internal/store/model"
	"github.com/acme/product-importer/pkg/metrics"
)

const (
	DefaultBatchSize = 1000

	// EventImportComplete is the webhook event fired when a queued
	// import reaches the complete state.
	EventImportComplete = "import_complete"
)

// CompletionNotifier delivers an event to every matching registration
// and reports the per-delivery outcomes.
type CompletionNotifier interface {
	Notify(ctx context.Context, event string, payload any) []notifier.DeliveryResult
}

// Importer drives one queued import job end to end: count pass, parse
// pass, batched upserts, progress publication and completion callbacks.
// Rows are applied in file order with no in-file deduplication, so a
// sku occurring twice ends up with the later row's values.
type Importer struct {
	store     store.Store
	notifier  CompletionNotifier
	producer  *events.EventProducer
	batchSize int
}

func NewImporter(s store.Store, n CompletionNotifier, producer *events.EventProducer) *Importer {
	return &Importer{
		store:     s,
		notifier:  n,
		producer:  producer,
		batchSize: DefaultBatchSize,
	}
}

// WithBatchSize overrides the flush threshold. Zero or negative values
// are ignored.
func (i *Importer) WithBatchSize(size int) *Importer {
	if size > 0 {
		i.batchSize = size
	}
	return i
}

// Run processes one job. A row-level parse issue never aborts the job;
// a storage failure marks the job failed and propagates so the queue
// can redeliver. Redelivered jobs resume past the checkpointed prefix.
func (i *Importer) Run(ctx context.Context, jobID string, path string) error {
	logger := zap.S().Named("importer").With("job_id", jobID)

	job, err := i.store.ImportJob().Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	total, err := countDataLines(path)
	if err != nil {
		i.markFailed(ctx, jobID, err)
		return err
	}

	if total <= 0 {
		if err := i.store.ImportJob().UpdateProgress(ctx, jobID, 100, "No data found"); err != nil {
			return err
		}
		if err := i.store.ImportJob().UpdateStatus(ctx, jobID, model.JobStatusNoData, ""); err != nil {
			return err
		}
		metrics.IncreaseImportJobsTotal(string(model.JobStatusNoData))
		logger.Info("no data found, nothing to import")
		return nil
	}

	if err := i.store.ImportJob().UpdateStatus(ctx, jobID, model.JobStatusRunning, ""); err != nil {
		return err
	}
	if err := i.store.ImportJob().UpdateProgress(ctx, jobID, 0, "Starting import..."); err != nil {
		return err
	}

	count, err := i.applyRows(ctx, jobID, path, total, job.Checkpoint)
	if err != nil {
		i.markFailed(ctx, jobID, err)
		return err
	}

	if err := i.store.ImportJob().UpdateProgress(ctx, jobID, 100, "Import complete"); err != nil {
		return err
	}
	if err := i.store.ImportJob().UpdateStatus(ctx, jobID, model.JobStatusComplete, ""); err != nil {
		return err
	}
	metrics.IncreaseImportJobsTotal(string(model.JobStatusComplete))
	logger.Infow("import complete", "rows", count, "total_lines", total)

	results := i.notifier.Notify(ctx, EventImportComplete, map[string]string{"job_id": jobID})
	for _, r := range results {
		if r.Status == notifier.DeliveryFailed {
			logger.Warnw("completion callback not delivered", "url", r.Url, "error", r.Err)
		}
	}

	i.emitEvent(ctx, events.ImportCompletedKind, jobID, model.JobStatusComplete, 100, "Import complete")
	return nil
}

// applyRows is the second pass: parse, batch, flush, publish progress.
// The percentage denominator is the raw data-line count, so lines
// skipped for an empty sku still weigh on it.
func (i *Importer) applyRows(ctx context.Context, jobID, path string, total, checkpoint int64) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(bufio.NewReader(f))
	reader.FieldsPerRecord = -1

	headerRecord, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}
	header := NewHeader(headerRecord)

	batch := make([]model.Product, 0, i.batchSize)
	var count int64    // rows appended (valid skus), the progress numerator
	var consumed int64 // raw data lines read, drives the checkpoint

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read row %d: %w", consumed+1, err)
		}
		consumed++

		candidate, ok := CandidateFromRecord(header, record)
		if !ok {
			// empty sku, skipped silently
			continue
		}
		count++

		if consumed <= checkpoint {
			// already applied by a previous delivery of this job
			continue
		}

		batch = append(batch, candidate)
		if len(batch) >= i.batchSize {
			if err := i.flush(ctx, batch); err != nil {
				return count, err
			}
			batch = batch[:0]

			if err := i.store.ImportJob().UpdateCheckpoint(ctx, jobID, consumed); err != nil {
				return count, err
			}

			pct := math.Round(float64(count)/float64(total)*10000) / 100
			message := fmt.Sprintf("Processed %d/%d", count, total)
			if err := i.store.ImportJob().UpdateProgress(ctx, jobID, pct, message); err != nil {
				return count, err
			}
		}
	}

	if len(batch) > 0 {
		if err := i.flush(ctx, batch); err != nil {
			return count, err
		}
		if err := i.store.ImportJob().UpdateCheckpoint(ctx, jobID, consumed); err != nil {
			return count, err
		}
	}

	return count, nil
}

// flush applies each row as its own insert-or-update operation, in file
// order, each independently committed.
func (i *Importer) flush(ctx context.Context, batch []model.Product) error {
	for _, product := range batch {
		if err := i.store.Product().Upsert(ctx, product); err != nil {
			return fmt.Errorf("failed to upsert sku %q: %w", product.Sku, err)
		}
	}
	metrics.AddRowsImported("queued", len(batch))
	return nil
}

func (i *Importer) markFailed(ctx context.Context, jobID string, cause error) {
	logger := zap.S().Named("importer").With("job_id", jobID)
	logger.Errorw("import failed", "error", cause)

	if err := i.store.ImportJob().UpdateStatus(ctx, jobID, model.JobStatusFailed, cause.Error()); err != nil {
		logger.Errorw("failed to record failure", "error", err)
		return
	}
	metrics.IncreaseImportJobsTotal(string(model.JobStatusFailed))
	i.emitEvent(ctx, events.ImportFailedKind, jobID, model.JobStatusFailed, 0, cause.Error())
}

func (i *Importer) emitEvent(ctx context.Context, kind, jobID string, status model.JobStatus, percent float64, message string) {
	if i.producer == nil {
		return
	}

	body, err := json.Marshal(events.JobEvent{
		JobID:   jobID,
		Status:  string(status),
		Percent: percent,
		Message: message,
	})
	if err != nil {
		return
	}
	if err := i.producer.Write(ctx, kind, bytes.NewReader(body)); err != nil {
		zap.S().Named("importer").Warnw("failed to emit event", "kind", kind, "error", err)
	}
}

// countDataLines is the first pass: the raw line count minus the
// header. An empty or header-only file yields a non-positive total.
func countDataLines(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var lines int64
	for scanner.Scan() {
		lines++
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return lines - 1, nil
}

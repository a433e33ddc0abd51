package jobs

import (
	"context"
	"time"

	"github.com/riverqueue/river"

	"github.com/acme/product-importer/internal/imports"
)

const (
	JobTimeout = 15 * time.Minute
	JobKind    = "csv_import"
)

type ImportArgs struct {
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
}

func (ImportArgs) Kind() string {
	return JobKind
}

func (ImportArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       ImportQueue,
		MaxAttempts: MaxJobAttempts,
	}
}

// ImportWorker runs one import job at a time, end to end sequentially.
// Horizontal scaling comes from worker count, never from intra-job
// parallelism.
type ImportWorker struct {
	river.WorkerDefaults[ImportArgs]
	importer *imports.Importer
}

func NewImportWorker(importer *imports.Importer) *ImportWorker {
	return &ImportWorker{importer: importer}
}

func (w *ImportWorker) Timeout(job *river.Job[ImportArgs]) time.Duration {
	return JobTimeout
}

func (w *ImportWorker) Work(ctx context.Context, job *river.Job[ImportArgs]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return w.importer.Run(ctx, job.Args.JobID, job.Args.FilePath)
}

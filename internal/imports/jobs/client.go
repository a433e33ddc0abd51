package jobs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/acme/product-importer/internal/imports"
)

const (
	// ImportQueue is the named topic carrying import work. Delivery is
	// at least once: the worker must stay safe under duplicate
	// execution, which holds because upserts are idempotent by sku.
	ImportQueue = "imports"

	MaxJobAttempts = 3
	MaxWorkers     = 4
)

type Client struct {
	*river.Client[pgx.Tx]
}

func NewClient(ctx context.Context, pool *pgxpool.Pool, importer *imports.Importer) (*Client, error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewImportWorker(importer))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			ImportQueue: {MaxWorkers: MaxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, err
	}

	return &Client{Client: riverClient}, nil
}

// EnqueueImport dispatches a job message {jobId, filePath} on the
// imports queue.
func (c *Client) EnqueueImport(ctx context.Context, jobID, filePath string) error {
	_, err := c.Insert(ctx, ImportArgs{JobID: jobID, FilePath: filePath}, &river.InsertOpts{
		Queue:       ImportQueue,
		MaxAttempts: MaxJobAttempts,
	})
	return err
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acme/product-importer/internal/config"
	"github.com/acme/product-importer/internal/events"
	"github.com/acme/product-importer/internal/store"
	"github.com/acme/product-importer/internal/store/model"
)

// uploadChunkSize keeps memory use independent of the uploaded file
// size.
const uploadChunkSize = 1 << 20

// ImportQueue dispatches an accepted job to the background workers.
type ImportQueue interface {
	EnqueueImport(ctx context.Context, jobID, filePath string) error
}

type ImportJobInfo struct {
	JobID     string
	Message   string
	StatusURL string
}

type Progress struct {
	Percent float64
	Message string
}

type ImportService struct {
	store     store.Store
	queue     ImportQueue
	producer  *events.EventProducer
	uploadDir string
	baseURL   string
}

func NewImportService(s store.Store, queue ImportQueue, producer *events.EventProducer, cfg *config.Config) *ImportService {
	return &ImportService{
		store:     s,
		queue:     queue,
		producer:  producer,
		uploadDir: cfg.Service.UploadDir,
		baseURL:   cfg.Service.BaseUrl,
	}
}

// CreateImportJob terminates a client upload: the body is streamed to
// durable storage in fixed-size chunks, a job record is created and the
// job is enqueued. The call returns without waiting for processing. If
// the write fails partway the partial file is removed and no job is
// enqueued.
func (s *ImportService) CreateImportJob(ctx context.Context, filename string, file io.Reader) (*ImportJobInfo, error) {
	logger := zap.S().Named("import_service")

	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return nil, NewErrInvalidFileType(filename)
	}

	jobID := uuid.NewString()

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare upload folder: %w", err)
	}

	dest := filepath.Join(s.uploadDir, jobID+".csv")
	if err := saveInChunks(dest, file); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	if _, err := s.store.ImportJob().Create(ctx, model.ImportJob{
		ID:         jobID,
		SourcePath: dest,
		Status:     model.JobStatusQueued,
		Percent:    0,
		Message:    "Queued for import",
	}); err != nil {
		_ = os.Remove(dest)
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if err := s.queue.EnqueueImport(ctx, jobID, dest); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.emitCreated(ctx, jobID)
	logger.Infow("import job queued", "job_id", jobID, "file", dest)

	return &ImportJobInfo{
		JobID:     jobID,
		Message:   "Upload successful, import started",
		StatusURL: fmt.Sprintf("%s/api/v1/imports/%s", s.baseURL, jobID),
	}, nil
}

// GetImportStatus reads the job's progress entry. An unknown id is not
// an error: never-created, not-yet-written and evicted jobs are
// indistinguishable on purpose.
func (s *ImportService) GetImportStatus(ctx context.Context, jobID string) (*Progress, error) {
	job, err := s.store.ImportJob().Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return &Progress{Percent: 0, Message: "Queued or unknown job"}, nil
		}
		return nil, err
	}
	return &Progress{Percent: job.Percent, Message: job.Message}, nil
}

func (s *ImportService) emitCreated(ctx context.Context, jobID string) {
	if s.producer == nil {
		return
	}
	body, err := json.Marshal(events.JobEvent{
		JobID:   jobID,
		Status:  string(model.JobStatusQueued),
		Message: "Queued for import",
	})
	if err != nil {
		return
	}
	if err := s.producer.Write(ctx, events.JobCreatedKind, bytes.NewReader(body)); err != nil {
		zap.S().Named("import_service").Warnw("failed to emit event", "error", err)
	}
}

// saveInChunks streams the reader to dest with a fixed-size buffer.
// On failure the partially written file is removed so no job can be
// created for an unusable artifact.
func saveInChunks(dest string, r io.Reader) error {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}

	buf := make([]byte, uploadChunkSize)
	if _, err := io.CopyBuffer(f, r, buf); err != nil {
		_ = f.Close()
		_ = os.Remove(dest)
		return err
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(dest)
		return err
	}
	return nil
}

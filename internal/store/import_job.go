package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/acme/product-importer/internal/store/model"
)

type ImportJob interface {
	Create(ctx context.Context, job model.ImportJob) (*model.ImportJob, error)
	Get(ctx context.Context, id string) (*model.ImportJob, error)
	UpdateProgress(ctx context.Context, id string, percent float64, message string) error
	UpdateStatus(ctx context.Context, id string, status model.JobStatus, errorMessage string) error
	UpdateCheckpoint(ctx context.Context, id string, checkpoint int64) error
	InitialMigration() error
}

type ImportJobStore struct {
	db *gorm.DB
}

// Make sure we conform to ImportJob interface
var _ ImportJob = (*ImportJobStore)(nil)

func NewImportJobStore(db *gorm.DB) ImportJob {
	return &ImportJobStore{db: db}
}

func (s *ImportJobStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.ImportJob{})
}

func (s *ImportJobStore) Create(ctx context.Context, job model.ImportJob) (*model.ImportJob, error) {
	result := s.getDB(ctx).Create(&job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &job, nil
}

func (s *ImportJobStore) Get(ctx context.Context, id string) (*model.ImportJob, error) {
	job := model.ImportJob{ID: id}
	result := s.getDB(ctx).First(&job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &job, nil
}

// UpdateProgress overwrites the job's progress entry, last writer wins.
func (s *ImportJobStore) UpdateProgress(ctx context.Context, id string, percent float64, message string) error {
	result := s.getDB(ctx).Model(&model.ImportJob{ID: id}).
		Updates(map[string]any{"percent": percent, "message": message})
	return result.Error
}

// UpdateStatus records the job's status transition. The error column
// always follows: it carries the cause on failure and is cleared
// otherwise, so a redelivered job that recovers leaves no stale text.
func (s *ImportJobStore) UpdateStatus(ctx context.Context, id string, status model.JobStatus, errorMessage string) error {
	result := s.getDB(ctx).Model(&model.ImportJob{ID: id}).
		Updates(map[string]any{"status": status, "error": errorMessage})
	return result.Error
}

func (s *ImportJobStore) UpdateCheckpoint(ctx context.Context, id string, checkpoint int64) error {
	result := s.getDB(ctx).Model(&model.ImportJob{ID: id}).
		Update("checkpoint", checkpoint)
	return result.Error
}

func (s *ImportJobStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

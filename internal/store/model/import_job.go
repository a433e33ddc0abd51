package model

import "time"

type JobStatus string

const (
	JobStatusQueued   JobStatus = "queued"
	JobStatusRunning  JobStatus = "running"
	JobStatusNoData   JobStatus = "no_data"
	JobStatusComplete JobStatus = "complete"
	JobStatusFailed   JobStatus = "failed"
)

// ImportJob tracks one queued import end to end. It doubles as the
// progress registry: percent/message are last-writer-wins with no
// history, and Checkpoint records how many data lines have been durably
// applied so a redelivered job can resume past committed batches.
type ImportJob struct {
	ID         string `gorm:"primaryKey"`
	SourcePath string
	Status     JobStatus `gorm:"default:queued"`
	Percent    float64
	Message    string
	Checkpoint int64
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

package events

// JobEvent describes a lifecycle transition of an import job.
type JobEvent struct {
	JobID   string  `json:"job_id"`
	Status  string  `json:"status"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

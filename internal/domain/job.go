package domain

import "time"

// JobMode selects how section results are delivered.
type JobMode string

const (
	// JobModeBulk surfaces the full result only once the job finishes.
	JobModeBulk JobMode = "bulk"
	// JobModeProgressive publishes each tier's sections as they complete.
	JobModeProgressive JobMode = "progressive"
)

// JobStatus transitions are monotonic: queued -> processing -> finished|failed.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusFinished   JobStatus = "finished"
	JobStatusFailed     JobStatus = "failed"
)

// QueueMessage is the transport format for dispatching a report job to a
// worker.
type QueueMessage struct {
	JobID       string        `json:"job_id"`
	Mode        JobMode       `json:"mode"`
	Document    InputDocument `json:"document"`
	Attempt     int           `json:"attempt"`
	RequestedAt time.Time     `json:"requested_at"`
}

// UpdatesChannel names the pub/sub channel carrying a job's progressive
// section updates.
func UpdatesChannel(jobID string) string {
	return "tia:updates:" + jobID
}

package printing

import (
	"time"

	"github.com/google/uuid"
)

// PrintJob records one attempt to print a symbol.
// A job is settled by the time the dispatcher returns it.
type PrintJob struct {
	ID         uuid.UUID
	Symbol     Symbol
	Path       DispatchPath
	Status     JobStatus
	Message    string    // Bridge message or failure reason
	ArchiveURL string    // Where a rendered copy was stored, if any
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewPrintJob starts a job for symbol on the given path
func NewPrintJob(symbol Symbol, path DispatchPath) *PrintJob {
	return &PrintJob{
		ID:        uuid.New(),
		Symbol:    symbol,
		Path:      path,
		StartedAt: time.Now(),
	}
}

// Succeed marks a native print as confirmed by the host
func (j *PrintJob) Succeed(message string) {
	j.settle(JobStatusNativeSuccess, message)
}

// Opened marks the fallback surface as shown to the user
func (j *PrintJob) Opened(archiveURL string) {
	j.ArchiveURL = archiveURL
	j.settle(JobStatusFallbackOpened, "")
}

// Fail marks the job as failed with a reason
func (j *PrintJob) Fail(reason string) {
	j.settle(JobStatusFailed, reason)
}

func (j *PrintJob) settle(status JobStatus, message string) {
	j.Status = status
	j.Message = message
	j.FinishedAt = time.Now()
}

// IsFailed returns true if the job failed
func (j *PrintJob) IsFailed() bool {
	return j.Status == JobStatusFailed
}

// Duration returns how long the attempt took
func (j *PrintJob) Duration() time.Duration {
	if j.FinishedAt.IsZero() {
		return 0
	}
	return j.FinishedAt.Sub(j.StartedAt)
}

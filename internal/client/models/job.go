package models

import (
	"fmt"
	"time"
)

type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusAssigned   JobStatus = "assigned"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

type Job struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Budget      float64   `json:"budget"`
	Location    string    `json:"location"`
	Status      JobStatus `json:"status"`
	ClientID    int64     `json:"client_id"`
	WorkerID    *int64    `json:"worker_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (j *Job) Validate() error {
	if j.ID <= 0 {
		return invalid("job id %d", j.ID)
	}
	if j.Title == "" {
		return invalid("job %d has no title", j.ID)
	}
	switch j.Status {
	case JobStatusOpen, JobStatusAssigned, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
	default:
		return invalid("job %d has unknown status %q", j.ID, j.Status)
	}
	return nil
}

// JobList is the paginated list envelope used by the jobs endpoints.
type JobList struct {
	Count   int    `json:"count"`
	Next    string `json:"next,omitempty"`
	Results []Job  `json:"results"`
}

func (l *JobList) Validate() error {
	if l.Results == nil {
		return invalid("job list without results")
	}
	for i := range l.Results {
		if err := l.Results[i].Validate(); err != nil {
			return fmt.Errorf("results[%d]: %w", i, err)
		}
	}
	return nil
}

// CreateJobRequest is the body of POST /client/jobs/.
type CreateJobRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Budget      float64 `json:"budget"`
	Location    string  `json:"location"`
}

// ApplyRequest is the body of POST /jobs/{id}/apply/.
type ApplyRequest struct {
	CoverLetter  string  `json:"cover_letter"`
	ProposedRate float64 `json:"proposed_rate"`
}

type JobApplication struct {
	ID        int64     `json:"id"`
	JobID     int64     `json:"job_id"`
	WorkerID  int64     `json:"worker_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *JobApplication) Validate() error {
	if a.ID <= 0 || a.JobID <= 0 {
		return invalid("application %d for job %d", a.ID, a.JobID)
	}
	return nil
}

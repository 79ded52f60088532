package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	// JobTypeNotifyOwner reconciles an owner's reaction-notification ticket.
	JobTypeNotifyOwner JobType = "notify_owner"
	// JobTypeViewRefresh re-renders every registered view of an artwork.
	JobTypeViewRefresh JobType = "view_refresh"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// NotifyOwnerJobPayload targets one owner's notification ticket.
type NotifyOwnerJobPayload struct {
	OwnerID uint `json:"owner_id"`
}

// ToMap converts the payload to a map for storage
func (p NotifyOwnerJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"owner_id": p.OwnerID,
	}
}

// FromMap creates a payload from a map
func NotifyOwnerJobPayloadFromMap(data map[string]interface{}) (*NotifyOwnerJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload NotifyOwnerJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// ViewRefreshJobPayload targets every live rendering of one artwork.
type ViewRefreshJobPayload struct {
	ArtworkID uint `json:"artwork_id"`
}

// ToMap converts the payload to a map for storage
func (p ViewRefreshJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"artwork_id": p.ArtworkID,
	}
}

// FromMap creates a payload from a map
func ViewRefreshJobPayloadFromMap(data map[string]interface{}) (*ViewRefreshJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload ViewRefreshJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}

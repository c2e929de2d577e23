package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// JobStatus is the lifecycle state of a sync job.
type JobStatus string

const (
	// JobPending is synthesised when no marker exists yet. It is never stored.
	JobPending   JobStatus = "pending"
	JobStarted   JobStatus = "started"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// IsTerminal reports whether no further transition is expected.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed
}

// SyncJob is the marker record of one worker invocation. It is created as
// started by the orchestrator and overwritten once by the worker.
type SyncJob struct {
	JobID       string     `json:"jobId"`
	Status      JobStatus  `json:"status"`
	FileID      string     `json:"fileId,omitempty"`
	AssetsCount int        `json:"assetsCount,omitempty"`
	Error       string     `json:"error,omitempty"`
	Message     string     `json:"message,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// JobKey returns the storage key of a job marker.
func JobKey(jobID string) string {
	return JobKeyPrefix + jobID + ".json"
}

// ValidateJobID rejects ids that would escape the job marker namespace.
func ValidateJobID(jobID string) error {
	if jobID == "" {
		return errors.Join(ErrInvalidInput, errors.New("jobId is required"))
	}
	if strings.ContainsAny(jobID, "/\\") || strings.Contains(jobID, "..") {
		return errors.Join(ErrInvalidInput, errors.New("jobId contains path separators"))
	}
	return nil
}

// WorkerRequest is what the orchestrator hands to the out-of-band worker.
type WorkerRequest struct {
	FileID string        `json:"fileId"`
	JobID  string        `json:"jobId"`
	Assets []AssetToSync `json:"assets"`
}

// SyncResult is returned synchronously by a sync trigger. JobID is empty
// when nothing was stale and no job was created.
type SyncResult struct {
	JobID          string
	AssetsToUpdate []DiscoveredAsset
}

// MarshalJSON renders an empty JobID as null and never emits a null asset list.
func (r SyncResult) MarshalJSON() ([]byte, error) {
	var jobID *string
	if r.JobID != "" {
		jobID = &r.JobID
	}
	assets := r.AssetsToUpdate
	if assets == nil {
		assets = []DiscoveredAsset{}
	}
	return json.Marshal(struct {
		JobID          *string           `json:"jobId"`
		AssetsToUpdate []DiscoveredAsset `json:"assetsToUpdate"`
	}{jobID, assets})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *SyncResult) UnmarshalJSON(data []byte) error {
	var wire struct {
		JobID          *string           `json:"jobId"`
		AssetsToUpdate []DiscoveredAsset `json:"assetsToUpdate"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.JobID = ""
	if wire.JobID != nil {
		r.JobID = *wire.JobID
	}
	r.AssetsToUpdate = wire.AssetsToUpdate
	return nil
}

// HasJob reports whether the sync dispatched a worker.
func (r SyncResult) HasJob() bool {
	return r.JobID != ""
}

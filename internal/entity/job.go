package entity

import (
	"strings"
	"time"
)

type ResultStatus string

const (
	StatusPending    ResultStatus = "pending"
	StatusProcessing ResultStatus = "processing"
	StatusCompleted  ResultStatus = "completed"
	StatusFailed     ResultStatus = "failed"
)

// Terminal reports whether the status can no longer change through reconciliation.
func (s ResultStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Outstanding reports whether a job in this status is still awaited from the remote service.
func (s ResultStatus) Outstanding() bool {
	return s == StatusPending || s == StatusProcessing
}

// ResultRecord tracks one remote generation job of a shot.
// OutputURL is set only when completed, Error only when failed.
type ResultRecord struct {
	ID        string       `json:"id"`
	Status    ResultStatus `json:"status"`
	OutputURL string       `json:"outputUrl,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`

	// Optimistic is set while a retry request for this record is in flight.
	// ID still holds the id of the failed job until the retry is confirmed.
	Optimistic bool `json:"optimistic,omitempty"`
}

// StatusUpdate is a status payload delivered by the notification feed or the status query.
type StatusUpdate struct {
	JobID       string `json:"jobId"`
	OutputURL   string `json:"outputUrl,omitempty"`
	Status      string `json:"status,omitempty"`
	ErrorDetail string `json:"errorDetail,omitempty"`
}

// NormalizeRemoteStatus maps the remote service vocabulary onto ResultStatus.
// Unknown values map to the empty status.
func NormalizeRemoteStatus(s string) ResultStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "queued":
		return StatusPending
	case "starting", "processing", "running":
		return StatusProcessing
	case "completed", "succeeded", "done":
		return StatusCompleted
	case "failed", "canceled", "cancelled", "error":
		return StatusFailed
	default:
		return ""
	}
}

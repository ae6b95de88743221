// Package models defines the supplementary-document request and its linear
// three-state machine: requested → uploaded → approved. There is no reject or
// resubmit transition.
package models

import (
	"time"

	"admitflow/pkg/sentinel"
)

// Status is the request's position in the machine.
type Status string

const (
	StatusRequested Status = "requested"
	StatusUploaded  Status = "uploaded"
	StatusApproved  Status = "approved"
)

// Request is one supplementary-document exchange between reviewer and
// applicant.
type Request struct {
	ID            int64
	ApplicationID int64
	Reason        string
	Status        Status
	FilePath      *string
	CreatedAt     time.Time
	UploadedAt    *time.Time
}

// CanUpload guards the requested → uploaded transition.
func (r *Request) CanUpload() error {
	if r.Status != StatusRequested {
		return sentinel.ErrInvalidState
	}
	return nil
}

// CanApprove guards the uploaded → approved transition.
func (r *Request) CanApprove() error {
	if r.Status != StatusUploaded {
		return sentinel.ErrInvalidState
	}
	return nil
}

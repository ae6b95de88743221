// Package events publishes admission lifecycle events to an external stream.
// Publishing is best-effort: services log failures but never fail the request
// because of them.
package events

import (
	"context"
	"time"
)

// Type names a lifecycle transition.
type Type string

const (
	ApplicationSubmitted  Type = "application.submitted"
	StatusChanged         Type = "application.status_changed"
	VerificationUpdated   Type = "application.verification_updated"
	VerificationConsensus Type = "application.verification_consensus"
	SelectionChanged      Type = "application.selection_changed"
	InterviewScheduled    Type = "application.interview_scheduled"
	AdmitCardIssued       Type = "application.admit_card_issued"
	PaymentCaptured       Type = "payment.captured"
	DocumentRequested     Type = "document.requested"
	DocumentUploaded      Type = "document.uploaded"
	DocumentApproved      Type = "document.approved"
	NotificationPosted    Type = "notification.posted"
)

// Event is one lifecycle fact about an application.
type Event struct {
	Type          Type              `json:"type"`
	ApplicationID int64             `json:"application_id,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	At            time.Time         `json:"at"`
}

// Publisher emits lifecycle events.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
	Close() error
}

// Noop discards events; used when no brokers are configured and in tests.
type Noop struct{}

func (Noop) Emit(context.Context, Event) error { return nil }
func (Noop) Close() error                      { return nil }

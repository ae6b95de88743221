// Package models defines the append-only notification record. Notifications
// are never edited or deleted; corrections are posted as new entries.
package models

import "time"

// Notification is one posted message. A nil ApplicationID means a broadcast
// visible to every applicant.
type Notification struct {
	ID            int64     `json:"id"`
	ApplicationID *int64    `json:"application_id,omitempty"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}

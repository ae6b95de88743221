// Package models defines the Application entity and its lifecycle vocabulary.
package models

import (
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	dErrors "admitflow/pkg/domain-errors"
)

// Status is the admin's review disposition.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// SelectionStatus is the officer's final per-applicant disposition.
type SelectionStatus string

const (
	SelectionNone       SelectionStatus = "none"
	SelectionSelected   SelectionStatus = "selected"
	SelectionWaitlisted SelectionStatus = "waitlisted"
	SelectionRejected   SelectionStatus = "rejected"
)

// PaymentStatus tracks fee reconciliation.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// DocumentField names the six upload slots. Values double as multipart field
// names and upload filename prefixes.
type DocumentField string

const (
	DocPhoto        DocumentField = "photo"
	DocSignature    DocumentField = "signature"
	DocMarksheet10  DocumentField = "marksheet10"
	DocMarksheet12  DocumentField = "marksheet12"
	DocEntranceCard DocumentField = "entranceCard"
	DocIDProof      DocumentField = "idProof"
)

// DocumentFields lists the slots in submission order.
var DocumentFields = []DocumentField{
	DocPhoto, DocSignature, DocMarksheet10, DocMarksheet12, DocEntranceCard, DocIDProof,
}

// Documents holds one optional stored path per slot. Paths are owned by the
// file store; the record only references them.
type Documents struct {
	Photo        *string
	Signature    *string
	Marksheet10  *string
	Marksheet12  *string
	EntranceCard *string
	IDProof      *string
}

// Get returns the stored path for a slot.
func (d *Documents) Get(field DocumentField) *string {
	switch field {
	case DocPhoto:
		return d.Photo
	case DocSignature:
		return d.Signature
	case DocMarksheet10:
		return d.Marksheet10
	case DocMarksheet12:
		return d.Marksheet12
	case DocEntranceCard:
		return d.EntranceCard
	case DocIDProof:
		return d.IDProof
	}
	return nil
}

// Set replaces the stored path for a slot and returns the previous path so
// callers can clean up the orphaned file.
func (d *Documents) Set(field DocumentField, path string) (previous *string) {
	p := &path
	switch field {
	case DocPhoto:
		previous, d.Photo = d.Photo, p
	case DocSignature:
		previous, d.Signature = d.Signature, p
	case DocMarksheet10:
		previous, d.Marksheet10 = d.Marksheet10, p
	case DocMarksheet12:
		previous, d.Marksheet12 = d.Marksheet12, p
	case DocEntranceCard:
		previous, d.EntranceCard = d.EntranceCard, p
	case DocIDProof:
		previous, d.IDProof = d.IDProof, p
	}
	return previous
}

// Application is one admission submission, draft or final. It is created once
// by the student and thereafter mutated by four actors under disjoint field
// ownership: admin (Status, AdminVerified), faculty (FacultyVerified),
// officer (SelectionStatus, InterviewDate), student (payments, uploads).
type Application struct {
	ID int64

	// Applicant.
	StudentName string
	Email       string
	Phone       string
	DateOfBirth string
	Gender      string
	Address     string
	City        string
	State       string
	Pincode     string

	// Academic history. ExamRank is free text from the form and is not
	// guaranteed numeric; the merit engine parses it defensively.
	Qualification string
	Percentage    string
	ExamName      string
	ExamRank      string

	// Course choice: one primary id plus up to three ranked preferences.
	CourseID    int64
	Preferences []int64

	Documents Documents

	// Lifecycle.
	IsDraft         bool
	Status          Status
	AdminVerified   bool
	FacultyVerified bool
	// DocumentsVerified is derived. It is never written directly; every
	// flag write recomputes it inside the same transaction.
	DocumentsVerified bool
	SelectionStatus   SelectionStatus
	InterviewDate     *time.Time
	AdmitCardPath     *string

	PaymentStatus PaymentStatus
	PaymentAmount decimal.Decimal
	PaymentID     *string
	PaymentDate   *time.Time
	ReceiptPath   *string

	CreatedAt time.Time
}

// RecomputeDocumentsVerified re-derives the consensus flag from the two
// reviewer flags. Must be called under the same lock that wrote either flag.
func (a *Application) RecomputeDocumentsVerified() {
	a.DocumentsVerified = a.AdminVerified && a.FacultyVerified
}

// ValidateForSubmission enforces the required fields for a final (non-draft)
// submission. Drafts may be arbitrarily sparse.
func (a *Application) ValidateForSubmission() error {
	if strings.TrimSpace(a.StudentName) == "" {
		return dErrors.New(dErrors.CodeValidation, "student name is required")
	}
	if strings.TrimSpace(a.Email) == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(a.Email); err != nil {
		return dErrors.New(dErrors.CodeValidation, "email is malformed")
	}
	if a.CourseID == 0 {
		return dErrors.New(dErrors.CodeValidation, "a course selection is required")
	}
	if len(a.Preferences) > 3 {
		return dErrors.New(dErrors.CodeValidation, "at most three course preferences are allowed")
	}
	return nil
}

// ValidStatus reports whether s is a settable review status. Pending is the
// initial state and cannot be re-applied.
func ValidStatus(s Status) bool {
	return s == StatusApproved || s == StatusRejected
}

// ValidSelection reports whether s is a recognised selection disposition.
func ValidSelection(s SelectionStatus) bool {
	switch s {
	case SelectionNone, SelectionSelected, SelectionWaitlisted, SelectionRejected:
		return true
	}
	return false
}

// Filter narrows ListSubmitted results.
type Filter struct {
	CourseID *int64
	Status   *Status
}

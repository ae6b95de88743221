// Package merit produces the officer's merit list: a pure, recomputed-on-read
// ranking of submitted applications by entrance-exam rank. It never persists
// anything and never touches selection status.
package merit

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"admitflow/internal/application/models"
	dErrors "admitflow/pkg/domain-errors"
)

// Lister is the slice of the application store this service needs.
type Lister interface {
	ListSubmitted(ctx context.Context, filter models.Filter) ([]*models.Application, error)
}

// Entry is one row of the merit list. Rank is 1-based and contiguous.
type Entry struct {
	Rank          int    `json:"rank"`
	ApplicationID int64  `json:"application_id"`
	StudentName   string `json:"student_name"`
	CourseID      int64  `json:"course_id"`
	ExamName      string `json:"exam_name"`
	ExamRank      string `json:"exam_rank"`

	parsed uint64
}

// Service ranks submitted applications.
type Service struct {
	apps Lister
}

// New constructs a Service.
func New(apps Lister) *Service {
	return &Service{apps: apps}
}

// Rank returns the merit list, optionally restricted to one course. Exam rank
// is free text: non-numeric or missing values sort as worst. Ties break by
// ascending application id for determinism.
func (s *Service) Rank(ctx context.Context, courseID *int64) ([]Entry, error) {
	filter := models.Filter{CourseID: courseID}
	apps, err := s.apps.ListSubmitted(ctx, filter)
	if err != nil {
		var de *dErrors.Error
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load applications for ranking")
	}

	entries := make([]Entry, 0, len(apps))
	for _, app := range apps {
		entries = append(entries, Entry{
			ApplicationID: app.ID,
			StudentName:   app.StudentName,
			CourseID:      app.CourseID,
			ExamName:      app.ExamName,
			ExamRank:      app.ExamRank,
			parsed:        parseExamRank(app.ExamRank),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].parsed != entries[j].parsed {
			return entries[i].parsed < entries[j].parsed
		}
		return entries[i].ApplicationID < entries[j].ApplicationID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// parseExamRank reads the free-text rank as an unsigned integer; anything
// unparseable counts as +infinity (worst).
func parseExamRank(raw string) uint64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return math.MaxUint64
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return math.MaxUint64
	}
	return n
}

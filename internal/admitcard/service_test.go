package admitcard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	appmodels "admitflow/internal/application/models"
	appstore "admitflow/internal/application/store"
	coursemodels "admitflow/internal/course/models"
	coursestore "admitflow/internal/course/store"
	dErrors "admitflow/pkg/domain-errors"
)

type fakeRenderer struct {
	cards []Card
	err   error
}

func (r *fakeRenderer) Render(card Card) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.cards = append(r.cards, card)
	return []byte("%PDF-fake"), nil
}

type fakeArtifacts struct {
	saved map[string][]byte
}

func (a *fakeArtifacts) SaveArtifact(subdir, name string, data []byte) (string, error) {
	if a.saved == nil {
		a.saved = make(map[string][]byte)
	}
	path := "uploads/" + subdir + "/" + name
	a.saved[path] = data
	return path, nil
}

type AdmitCardSuite struct {
	suite.Suite
	apps      *appstore.Memory
	courses   *coursestore.Memory
	renderer  *fakeRenderer
	artifacts *fakeArtifacts
	svc       *Service
	ctx       context.Context
}

func TestAdmitCardSuite(t *testing.T) {
	suite.Run(t, new(AdmitCardSuite))
}

func (s *AdmitCardSuite) SetupTest() {
	s.apps = appstore.NewMemory()
	s.courses = coursestore.NewMemory()
	s.renderer = &fakeRenderer{}
	s.artifacts = &fakeArtifacts{}
	s.svc = New(s.apps, s.courses, s.renderer, s.artifacts)
	s.ctx = context.Background()
}

func (s *AdmitCardSuite) submit(mutate ...func(*appmodels.Application)) int64 {
	app := &appmodels.Application{
		StudentName: "Asha",
		Email:       "asha@example.com",
		CourseID:    1,
	}
	for _, m := range mutate {
		m(app)
	}
	id, err := s.apps.Create(s.ctx, app)
	s.Require().NoError(err)
	return id
}

func (s *AdmitCardSuite) tomorrow() time.Time {
	return time.Now().Add(24 * time.Hour).Truncate(time.Minute)
}

func (s *AdmitCardSuite) TestScheduleIssuesCard() {
	id := s.submit()
	at := s.tomorrow()

	app, err := s.svc.ScheduleInterview(s.ctx, id, at)
	s.Require().NoError(err)
	s.Require().NotNil(app.InterviewDate)
	s.True(app.InterviewDate.Equal(at))
	s.Require().NotNil(app.AdmitCardPath)
	s.Contains(*app.AdmitCardPath, "admitcards/")
	s.NotEmpty(s.artifacts.saved[*app.AdmitCardPath])
}

func (s *AdmitCardSuite) TestScheduleResolvesCourseName() {
	courseID, err := s.courses.Create(s.ctx, &coursemodels.Course{Name: "BSc Physics"})
	s.Require().NoError(err)
	id := s.submit(func(a *appmodels.Application) { a.CourseID = courseID })

	_, err = s.svc.ScheduleInterview(s.ctx, id, s.tomorrow())
	s.Require().NoError(err)
	s.Require().Len(s.renderer.cards, 1)
	s.Equal("BSc Physics", s.renderer.cards[0].CourseName)
}

func (s *AdmitCardSuite) TestUnknownCourseFallsBackToID() {
	id := s.submit(func(a *appmodels.Application) { a.CourseID = 42 })

	_, err := s.svc.ScheduleInterview(s.ctx, id, s.tomorrow())
	s.Require().NoError(err)
	s.Require().Len(s.renderer.cards, 1)
	s.Equal("Course 42", s.renderer.cards[0].CourseName)
}

func (s *AdmitCardSuite) TestMissingPhotoIsNotFatal() {
	id := s.submit()

	app, err := s.svc.ScheduleInterview(s.ctx, id, s.tomorrow())
	s.Require().NoError(err)
	s.NotNil(app.AdmitCardPath)
	s.Require().Len(s.renderer.cards, 1)
	s.Nil(s.renderer.cards[0].PhotoPath)
}

func (s *AdmitCardSuite) TestSchedulingSurvivesRenderFailure() {
	id := s.submit()
	s.renderer.err = errors.New("font cache corrupt")

	app, err := s.svc.ScheduleInterview(s.ctx, id, s.tomorrow())
	s.Require().NoError(err)
	s.NotNil(app.InterviewDate)
	s.Nil(app.AdmitCardPath)
}

func (s *AdmitCardSuite) TestGenerateWithoutInterviewDateConflicts() {
	id := s.submit()

	_, err := s.svc.Generate(s.ctx, id)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *AdmitCardSuite) TestGenerateRegenerates() {
	id := s.submit()
	_, err := s.svc.ScheduleInterview(s.ctx, id, s.tomorrow())
	s.Require().NoError(err)

	app, err := s.svc.Generate(s.ctx, id)
	s.Require().NoError(err)
	s.NotNil(app.AdmitCardPath)
	s.Len(s.renderer.cards, 2)
}

func (s *AdmitCardSuite) TestDraftCannotBeScheduled() {
	id := s.submit(func(a *appmodels.Application) { a.IsDraft = true })

	_, err := s.svc.ScheduleInterview(s.ctx, id, s.tomorrow())
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *AdmitCardSuite) TestPastDateStillIssuesCard() {
	id := s.submit()
	at := time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC)

	app, err := s.svc.ScheduleInterview(s.ctx, id, at)
	s.Require().NoError(err)
	s.Require().NotNil(app.InterviewDate)
	s.True(app.InterviewDate.Equal(at))
	s.Require().NotNil(app.AdmitCardPath)
	s.NotEmpty(s.artifacts.saved[*app.AdmitCardPath])
}

func (s *AdmitCardSuite) TestUnknownApplication() {
	_, err := s.svc.ScheduleInterview(s.ctx, 99, s.tomorrow())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"admitflow/internal/application/models"
	"admitflow/pkg/sentinel"
	"admitflow/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Postgres
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.GetPostgres(s.T())
	s.Require().NoError(s.pg.Migrate(s.ctx, Schema))
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "applications"))
}

func (s *PostgresStoreSuite) create(app *models.Application) int64 {
	id, err := s.store.Create(s.ctx, app)
	s.Require().NoError(err)
	return id
}

func (s *PostgresStoreSuite) TestCreateAndFindRoundTrip() {
	id := s.create(&models.Application{
		StudentName: "Asha Rao",
		Email:       "asha@example.com",
		CourseID:    1,
		Preferences: []int64{1, 2, 3},
		ExamRank:    "45",
	})

	app, err := s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("Asha Rao", app.StudentName)
	s.Equal([]int64{1, 2, 3}, app.Preferences)
	s.Equal(models.StatusPending, app.Status)
	s.Equal(models.PaymentPending, app.PaymentStatus)
}

func (s *PostgresStoreSuite) TestLookupDoesNotLeakExistence() {
	id := s.create(&models.Application{Email: "asha@example.com"})

	_, wrongEmail := s.store.FindByIDAndEmail(s.ctx, id, "other@example.com")
	_, unknownID := s.store.FindByIDAndEmail(s.ctx, id+1, "asha@example.com")
	s.ErrorIs(wrongEmail, sentinel.ErrNotFound)
	s.ErrorIs(unknownID, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestExecuteSerializesAndRecomputes() {
	id := s.create(&models.Application{Email: "asha@example.com"})

	_, err := s.store.Execute(s.ctx, id, nil, func(a *models.Application) {
		a.AdminVerified = true
	})
	s.Require().NoError(err)

	app, err := s.store.Execute(s.ctx, id, nil, func(a *models.Application) {
		a.FacultyVerified = true
	})
	s.Require().NoError(err)
	s.True(app.DocumentsVerified)
}

func (s *PostgresStoreSuite) TestExecuteValidateErrorRollsBack() {
	id := s.create(&models.Application{Email: "asha@example.com"})

	_, err := s.store.Execute(s.ctx, id,
		func(*models.Application) error { return sentinel.ErrInvalidState },
		func(a *models.Application) { a.StudentName = "mutated" },
	)
	s.ErrorIs(err, sentinel.ErrInvalidState)

	app, err := s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(app.StudentName)
}

func (s *PostgresStoreSuite) TestListSubmittedFilters() {
	s.create(&models.Application{Email: "a@example.com", CourseID: 1})
	s.create(&models.Application{Email: "b@example.com", CourseID: 2})
	s.create(&models.Application{Email: "c@example.com", CourseID: 1, IsDraft: true})

	apps, err := s.store.ListSubmitted(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Len(apps, 2)

	courseID := int64(1)
	apps, err = s.store.ListSubmitted(s.ctx, models.Filter{CourseID: &courseID})
	s.Require().NoError(err)
	s.Len(apps, 1)
}
